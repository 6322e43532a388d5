package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Belphemur/CaptionExport/internal/apperrors"
	"github.com/Belphemur/CaptionExport/internal/cache"
	"github.com/Belphemur/CaptionExport/internal/config"
	"github.com/Belphemur/CaptionExport/internal/models"
	"github.com/Belphemur/CaptionExport/internal/parser"
)

// maxErrorBody caps how much of a failed response is read for its error message.
const maxErrorBody = 64 << 10

type videoListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"snippet"`
	} `json:"items"`
}

type captionListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Language  string `json:"language"`
			Name      string `json:"name"`
			TrackKind string `json:"trackKind"`
		} `json:"snippet"`
	} `json:"items"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// FetchVideo returns the title and description of a video.
func (c *client) FetchVideo(ctx context.Context, videoID string) (*models.Video, error) {
	logger := config.GetLogger()

	if video, ok := cache.GetJSON[models.Video](c.videoCache, videoID); ok {
		logger.Debug().Str("videoID", videoID).Msg("Video metadata served from cache")
		return &video, nil
	}

	logger.Info().Str("videoID", videoID).Msg("Fetching video metadata")

	query := url.Values{}
	query.Set("id", videoID)
	query.Set("part", "snippet")

	var body videoListResponse
	if err := c.getJSON(ctx, "/videos", query, &body); err != nil {
		return nil, fmt.Errorf("failed to fetch video %s: %w", videoID, err)
	}
	if len(body.Items) == 0 {
		return nil, apperrors.NewNotFoundError("video", videoID)
	}

	item := body.Items[0]
	video := models.Video{
		ID:          item.ID,
		Title:       item.Snippet.Title,
		Description: item.Snippet.Description,
	}
	if video.ID == "" {
		video.ID = videoID
	}

	if err := cache.SetJSON(c.videoCache, videoID, video); err != nil {
		logger.Warn().Err(err).Str("videoID", videoID).Msg("Failed to cache video metadata")
	}

	logger.Info().Str("videoID", videoID).Str("title", video.Title).Msg("Fetched video metadata")
	return &video, nil
}

// FetchCaptionList returns the caption tracks of a video in API order.
// Tracks of kind "asr" are flagged as auto-generated.
func (c *client) FetchCaptionList(ctx context.Context, videoID string) ([]models.CaptionDescriptor, error) {
	logger := config.GetLogger()

	if captions, ok := cache.GetJSON[[]models.CaptionDescriptor](c.captionsCache, videoID); ok && len(captions) > 0 {
		logger.Debug().Str("videoID", videoID).Int("captions", len(captions)).Msg("Caption list served from cache")
		return captions, nil
	}

	logger.Info().Str("videoID", videoID).Msg("Fetching caption list")

	query := url.Values{}
	query.Set("part", "snippet")
	query.Set("videoId", videoID)

	var body captionListResponse
	if err := c.getJSON(ctx, "/captions", query, &body); err != nil {
		return nil, fmt.Errorf("failed to fetch captions of %s: %w", videoID, err)
	}
	if len(body.Items) == 0 {
		return nil, apperrors.NewCaptionsNotFoundError(videoID)
	}

	captions := make([]models.CaptionDescriptor, 0, len(body.Items))
	for _, item := range body.Items {
		name := strings.TrimSpace(item.Snippet.Name)
		if name == "" {
			name = models.LanguageDisplayName(item.Snippet.Language)
		}
		captions = append(captions, models.CaptionDescriptor{
			ID:              item.ID,
			Language:        item.Snippet.Language,
			DisplayName:     name,
			IsAutoGenerated: strings.EqualFold(item.Snippet.TrackKind, "asr"),
		})
	}

	if err := cache.SetJSON(c.captionsCache, videoID, captions); err != nil {
		logger.Warn().Err(err).Str("videoID", videoID).Msg("Failed to cache caption list")
	}

	logger.Info().Str("videoID", videoID).Int("captions", len(captions)).Msg("Fetched caption list")
	return captions, nil
}

// FetchCaptionPayload downloads one caption track. Payloads are not cached.
func (c *client) FetchCaptionPayload(ctx context.Context, videoID, captionID string) (string, error) {
	logger := config.GetLogger()
	logger.Info().Str("videoID", videoID).Str("captionID", captionID).Msg("Downloading caption payload")

	path := "/captions/" + url.PathEscape(captionID)
	resp, err := c.do(ctx, path, url.Values{}, true)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	utf8Body, err := parser.NewUTF8Reader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("failed to decode caption %s: %w", captionID, err)
	}
	payload, err := io.ReadAll(utf8Body)
	if err != nil {
		return "", &apperrors.ErrNetwork{URL: c.displayURL(path), Err: err}
	}

	logger.Debug().Str("captionID", captionID).Int("size", len(payload)).Msg("Downloaded caption payload")
	return string(payload), nil
}

func (c *client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := c.do(ctx, path, query, false)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode JSON response: %w", err)
	}
	return nil
}

// do issues a GET and turns transport failures and non-2xx answers into
// ErrNetwork. The caller closes the body of a returned response.
func (c *client) do(ctx context.Context, path string, query url.Values, bearer bool) (*http.Response, error) {
	query.Set("key", c.apiKey)
	endpoint := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", config.GetUserAgent())
	if bearer {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &apperrors.ErrNetwork{URL: c.displayURL(path), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		netErr := &apperrors.ErrNetwork{URL: c.displayURL(path), StatusCode: resp.StatusCode}
		if msg := readAPIError(resp.Body); msg != "" {
			logger := config.GetLogger()
			logger.Warn().Int("status", resp.StatusCode).Str("path", path).Str("message", msg).Msg("YouTube API returned an error")
			return nil, fmt.Errorf("%s: %w", msg, netErr)
		}
		return nil, netErr
	}

	return resp, nil
}

// displayURL is the request URL without its query, so the API key never ends up in errors or logs.
func (c *client) displayURL(path string) string {
	return c.baseURL + path
}

func readAPIError(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var apiErr apiErrorResponse
	if err := json.Unmarshal(raw, &apiErr); err != nil {
		return ""
	}
	return apiErr.Error.Message
}
