package parser

import (
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Belphemur/CaptionExport/internal/config"
	"github.com/Belphemur/CaptionExport/internal/models"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// TimedTextResult holds the cues produced from a payload and the number of entries
// that were dropped because a required field was missing or unusable.
type TimedTextResult struct {
	Cues    []models.Cue
	Skipped int
}

// entryFormat describes how one flavour of timed-text markup stores its timing.
type entryFormat struct {
	tag       string
	startKey  string
	durKey    string
	perSecond float64 // attribute units per second
}

var (
	// <text start="1.2" dur="3.4">…</text>, timing in seconds
	legacyFormat = entryFormat{tag: "text", startKey: "start", durKey: "dur", perSecond: 1}
	// srv3: <p t="1200" d="3400">…</p>, timing in milliseconds
	srv3Format = entryFormat{tag: "p", startKey: "t", durKey: "d", perSecond: 1000}

	// selfClosingEntry matches <text …/> and <p …/>. The HTML parser ignores the
	// self-closing flag on these tags, so they are expanded before parsing.
	selfClosingEntry = regexp.MustCompile(`<(text|p)(\s[^>]*?)?\s*/>`)

	// leadingNumber is the decimal prefix read from a timing attribute, so
	// "1.5s" is 1.5 and "abc" has no value.
	leadingNumber = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)
)

// TimedTextParser turns a raw timed-text payload into an ordered cue sequence.
//
// Entries are read in payload order and never re-sorted. An entry lacking a start,
// a duration or inner text is skipped without affecting its neighbours; cue indices
// only count produced cues. Parsing never fails: malformed input yields fewer cues.
type TimedTextParser struct{}

// NewTimedTextParser creates a new timed-text parser instance
func NewTimedTextParser() *TimedTextParser {
	return &TimedTextParser{}
}

// Parse parses a payload held in memory. Go strings are UTF-8, so no charset detection happens.
func (p *TimedTextParser) Parse(raw string) TimedTextResult {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(expandSelfClosing(raw)))
	if err != nil {
		return TimedTextResult{}
	}
	return p.parseDocument(doc)
}

// ParseReader parses a payload from body, converting it to UTF-8 first using the
// charset announced by contentType (may be empty). The only error returned is a
// failure to read body.
func (p *TimedTextParser) ParseReader(body io.Reader, contentType string) (TimedTextResult, error) {
	utf8Body, err := NewUTF8Reader(body, contentType)
	if err != nil {
		return TimedTextResult{}, err
	}

	raw, err := io.ReadAll(utf8Body)
	if err != nil {
		return TimedTextResult{}, err
	}
	return p.Parse(string(raw)), nil
}

func expandSelfClosing(raw string) string {
	return selfClosingEntry.ReplaceAllString(raw, "<$1$2></$1>")
}

func (p *TimedTextParser) parseDocument(doc *goquery.Document) TimedTextResult {
	logger := config.GetLogger()

	format := legacyFormat
	entries := doc.Find(legacyFormat.tag)
	if entries.Length() == 0 {
		format = srv3Format
		entries = doc.Find(srv3Format.tag)
	}

	result := TimedTextResult{Cues: make([]models.Cue, 0, entries.Length())}
	entries.Each(func(i int, entry *goquery.Selection) {
		cue, ok := format.extract(entry)
		if !ok {
			result.Skipped++
			logger.Debug().Int("entry", i).Str("tag", format.tag).Msg("Skipping incomplete timed-text entry")
			return
		}
		cue.Index = len(result.Cues) + 1
		result.Cues = append(result.Cues, cue)
	})

	logger.Debug().
		Int("cues", len(result.Cues)).
		Int("skipped", result.Skipped).
		Str("tag", format.tag).
		Msg("Completed timed-text parsing")

	return result
}

// extract reads one entry. ok is false when any of the three fields is missing.
func (f entryFormat) extract(entry *goquery.Selection) (models.Cue, bool) {
	start, ok := parseSeconds(entry, f.startKey, f.perSecond)
	if !ok {
		return models.Cue{}, false
	}
	dur, ok := parseSeconds(entry, f.durKey, f.perSecond)
	if !ok {
		return models.Cue{}, false
	}

	text := ownText(entry, f.tag)
	if text == "" {
		return models.Cue{}, false
	}
	// Upstream payloads escape twice (&amp;#39;); the HTML parser already removed one level.
	if strings.Contains(text, "&") {
		text = html.UnescapeString(text)
	}

	return models.Cue{
		StartSeconds: start,
		EndSeconds:   start + dur,
		Text:         strings.TrimSpace(text),
	}, true
}

func parseSeconds(entry *goquery.Selection, key string, perSecond float64) (float64, bool) {
	raw, exists := entry.Attr(key)
	if !exists {
		return 0, false
	}
	num := leadingNumber.FindString(strings.TrimSpace(raw))
	if num == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil || v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v / perSecond, true
}

// ownText concatenates the text below entry. Line breaks become newlines and
// nested entries are not part of their parent.
func ownText(entry *goquery.Selection, tag string) string {
	var b strings.Builder
	var walk func(*goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, child *goquery.Selection) {
			node := child.Get(0)
			switch {
			case node.Type == html.TextNode:
				b.WriteString(node.Data)
			case node.Type == html.ElementNode && node.Data == "br":
				b.WriteString("\n")
			case node.Type == html.ElementNode && node.Data != tag:
				walk(child)
			}
		})
	}
	walk(entry)
	return b.String()
}
