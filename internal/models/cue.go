package models

// Cue is one timed subtitle entry. Index starts at 1 and only counts produced cues.
type Cue struct {
	Index        int
	StartSeconds float64
	EndSeconds   float64
	Text         string
}

// RenderedSubtitle is a cue sequence rendered into one output format.
type RenderedSubtitle struct {
	Format   Format
	Language string
	Content  string
}
