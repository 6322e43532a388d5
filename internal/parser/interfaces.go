package parser

import "io"

// CueParser turns a raw caption payload into cues
type CueParser interface {
	Parse(raw string) TimedTextResult
	ParseReader(body io.Reader, contentType string) (TimedTextResult, error)
}

var _ CueParser = (*TimedTextParser)(nil)
