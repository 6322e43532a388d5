package models

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/Belphemur/CaptionExport/internal/apperrors"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ExtractVideoID accepts a bare 11 character video ID or a youtube.com/youtu.be
// URL (watch, embed, shorts, live) and returns the video ID.
func ExtractVideoID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if videoIDPattern.MatchString(input) {
		return input, nil
	}

	raw := input
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", apperrors.NewValidationError("video", "could not extract video ID from "+input)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")

	var candidate string
	switch {
	case host == "youtu.be":
		candidate = segments[0]
	case host == "youtube.com" || host == "music.youtube.com" || host == "youtube-nocookie.com":
		if v := u.Query().Get("v"); v != "" {
			candidate = v
		} else if len(segments) == 2 && (segments[0] == "embed" || segments[0] == "shorts" || segments[0] == "live" || segments[0] == "v") {
			candidate = segments[1]
		}
	}

	if !videoIDPattern.MatchString(candidate) {
		return "", apperrors.NewValidationError("video", "could not extract video ID from "+input)
	}
	return candidate, nil
}
