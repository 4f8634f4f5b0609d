package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	defaultHost = "yt-api.p.rapidapi.com"
	// maxTranscriptBytes bounds a subtitle track download.
	maxTranscriptBytes = 8 << 20
)

// ErrNoSubtitles is returned when a video has no subtitle track.
var ErrNoSubtitles = errors.New("video has no subtitles")

// Client calls the RapidAPI YouTube endpoints and downloads subtitle tracks.
// Outbound calls share one rate limiter.
type Client struct {
	apiKey  string
	host    string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// Config configures the RapidAPI client. BaseURL overrides https://<Host>.
type Config struct {
	APIKey        string
	Host          string
	BaseURL       string
	RatePerSecond float64
	Timeout       time.Duration
}

func NewClient(cfg Config, logger zerolog.Logger) *Client {
	host := cfg.Host
	if host == "" {
		host = defaultHost
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://" + host
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	perSecond := cfg.RatePerSecond
	if perSecond <= 0 {
		perSecond = 5
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		apiKey:  cfg.APIKey,
		host:    host,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		logger:  logger.With().Str("service", "YouTubeClient").Logger(),
	}
}

// VideoInfo fetches the video's metadata.
func (c *Client) VideoInfo(ctx context.Context, videoID string) (*VideoDetails, error) {
	var out VideoDetails
	if err := c.getJSON(ctx, "video/info", videoID, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Subtitles lists the video's subtitle tracks.
func (c *Client) Subtitles(ctx context.Context, videoID string) (*SubtitlesResponse, error) {
	var out SubtitlesResponse
	if err := c.getJSON(ctx, "subtitles", videoID, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchTranscript downloads the raw XML of a subtitle track.
func (c *Client) FetchTranscript(ctx context.Context, videoID string, track Subtitle) ([]byte, error) {
	if track.URL == "" {
		return nil, fmt.Errorf("subtitle track %q of %s has no url", track.LanguageCode, videoID)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, track.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTranscriptBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcript download for %s returned %d", videoID, resp.StatusCode)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("empty transcript for %s", videoID)
	}
	return body, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint, videoID string, out interface{}) error {
	if videoID == "" {
		return ErrNoVideoID
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	u := c.baseURL + "/" + endpoint + "?" + url.Values{"id": {videoID}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", c.host)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn().Str("endpoint", endpoint).Str("video_id", videoID).Int("status", resp.StatusCode).
			Msg("YouTube API returned non-200")
		return fmt.Errorf("%s returned %d", endpoint, resp.StatusCode)
	}
	if len(body) == 0 || string(body) == "null" {
		return fmt.Errorf("%s returned no data", endpoint)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}
