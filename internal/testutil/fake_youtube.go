package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// FakeCaption is one caption track served by FakeYouTubeAPI.
type FakeCaption struct {
	ID        string
	Language  string
	Name      string
	TrackKind string
	Payload   string
	// Status, when non-zero, is returned instead of the payload.
	Status int
}

// FakeVideo is one video served by FakeYouTubeAPI.
type FakeVideo struct {
	ID          string
	Title       string
	Description string
	Captions    []FakeCaption
}

// FakeYouTubeAPI is an httptest server implementing the videos, captions and
// caption download endpoints of the YouTube Data API.
type FakeYouTubeAPI struct {
	Server *httptest.Server
	APIKey string

	mu       sync.Mutex
	videos   map[string]FakeVideo
	requests map[string]int
}

// NewFakeYouTubeAPI starts a fake API serving videos. The server is closed when the test ends.
func NewFakeYouTubeAPI(t testing.TB, apiKey string, videos ...FakeVideo) *FakeYouTubeAPI {
	t.Helper()
	f := &FakeYouTubeAPI{
		APIKey:   apiKey,
		videos:   make(map[string]FakeVideo, len(videos)),
		requests: make(map[string]int),
	}
	for _, v := range videos {
		f.videos[v.ID] = v
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the base URL to configure as youtube_api_base_url.
func (f *FakeYouTubeAPI) URL() string {
	return f.Server.URL
}

// Requests returns how many requests hit path (e.g. "/videos", "/captions/cap1").
func (f *FakeYouTubeAPI) Requests(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[path]
}

func (f *FakeYouTubeAPI) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests[r.URL.Path]++
	f.mu.Unlock()

	if r.URL.Query().Get("key") != f.APIKey {
		writeAPIError(w, http.StatusForbidden, "API key not valid. Please pass a valid API key.")
		return
	}

	switch {
	case r.URL.Path == "/videos":
		f.serveVideos(w, r.URL.Query().Get("id"))
	case r.URL.Path == "/captions":
		f.serveCaptionList(w, r.URL.Query().Get("videoId"))
	case strings.HasPrefix(r.URL.Path, "/captions/"):
		if r.Header.Get("Authorization") != "Bearer "+f.APIKey {
			writeAPIError(w, http.StatusUnauthorized, "Login Required.")
			return
		}
		f.servePayload(w, strings.TrimPrefix(r.URL.Path, "/captions/"))
	default:
		writeAPIError(w, http.StatusNotFound, "Not Found")
	}
}

func (f *FakeYouTubeAPI) serveVideos(w http.ResponseWriter, id string) {
	items := []map[string]any{}
	if v, ok := f.videos[id]; ok {
		items = append(items, map[string]any{
			"id":      v.ID,
			"snippet": map[string]any{"title": v.Title, "description": v.Description},
		})
	}
	writeJSON(w, map[string]any{"kind": "youtube#videoListResponse", "items": items})
}

func (f *FakeYouTubeAPI) serveCaptionList(w http.ResponseWriter, videoID string) {
	items := []map[string]any{}
	for _, c := range f.videos[videoID].Captions {
		items = append(items, map[string]any{
			"id": c.ID,
			"snippet": map[string]any{
				"videoId":   videoID,
				"language":  c.Language,
				"name":      c.Name,
				"trackKind": c.TrackKind,
			},
		})
	}
	writeJSON(w, map[string]any{"kind": "youtube#captionListResponse", "items": items})
}

func (f *FakeYouTubeAPI) servePayload(w http.ResponseWriter, captionID string) {
	for _, v := range f.videos {
		for _, c := range v.Captions {
			if c.ID != captionID {
				continue
			}
			if c.Status != 0 {
				writeAPIError(w, c.Status, "caption unavailable")
				return
			}
			w.Header().Set("Content-Type", "text/xml; charset=utf-8")
			_, _ = w.Write([]byte(c.Payload))
			return
		}
	}
	writeAPIError(w, http.StatusNotFound, "The caption track could not be found.")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": status, "message": message},
	})
}

// RickrollVideo is a video with an English manual track and a French auto-generated one.
func RickrollVideo() FakeVideo {
	return FakeVideo{
		ID:          "dQw4w9WgXcQ",
		Title:       "Rick Astley - Never Gonna Give You Up (Official Video)",
		Description: "The official video",
		Captions: []FakeCaption{
			{ID: "cap-fr", Language: "fr", Name: "", TrackKind: "asr", Payload: FrenchTranscript},
			{ID: "cap-en", Language: "en", Name: "English", TrackKind: "standard", Payload: EnglishTranscript},
		},
	}
}
