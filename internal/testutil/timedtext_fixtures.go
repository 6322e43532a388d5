package testutil

// Timed-text payloads shaped like the ones served by the captions endpoint.
const (
	// EnglishTranscript has three complete entries, one of them with escaped markup.
	EnglishTranscript = `<?xml version="1.0" encoding="utf-8" ?><transcript>
<text start="0" dur="1.5">Never gonna give you up</text>
<text start="1.5" dur="2.25">Never gonna let you down</text>
<text start="3.75" dur="1">&amp;lt;music&amp;gt; &amp;amp; dance</text>
</transcript>`

	// FrenchTranscript has two complete entries.
	FrenchTranscript = `<?xml version="1.0" encoding="utf-8" ?><transcript>
<text start="0.5" dur="2">Je ne vais jamais t&amp;#39;abandonner</text>
<text start="2.5" dur="2">Jamais te laisser tomber</text>
</transcript>`

	// TranscriptWithGaps has five entries of which two lack a duration or text.
	TranscriptWithGaps = `<?xml version="1.0" encoding="utf-8" ?><transcript>
<text start="1" dur="1">first</text>
<text start="2">no duration</text>
<text start="3" dur="1">second</text>
<text start="4" dur="1"/>
<text start="5" dur="1">third</text>
</transcript>`
)
