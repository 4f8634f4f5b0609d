package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{APIKey: "rapid-key", Host: "yt-api.p.rapidapi.com", BaseURL: srv.URL, RatePerSecond: 100}, zerolog.Nop())
}

func TestVideoInfo(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/video/info", r.URL.Path)
		assert.Equal(t, "dQw4w9WgXcQ", r.URL.Query().Get("id"))
		assert.Equal(t, "rapid-key", r.Header.Get("x-rapidapi-key"))
		assert.Equal(t, "yt-api.p.rapidapi.com", r.Header.Get("x-rapidapi-host"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"dQw4w9WgXcQ","title":"Never Gonna","lengthSeconds":"213","channelTitle":"Rick"}`))
	})

	info, err := c.VideoInfo(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "Never Gonna", info.Title)
	assert.Equal(t, "213", info.LengthSeconds)
}

func TestSubtitlesAndFirstTrack(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/subtitles", r.URL.Path)
		_, _ = w.Write([]byte(`{"subtitles":[{"languageName":"English","languageCode":"en","isTranslatable":true,"url":"https://example.test/en.xml"},{"languageCode":"de","url":"https://example.test/de.xml"}],"format":"srv1"}`))
	})

	subs, err := c.Subtitles(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	track, err := subs.FirstTrack()
	require.NoError(t, err)
	assert.Equal(t, "en", track.LanguageCode)

	_, err = (&SubtitlesResponse{}).FirstTrack()
	assert.ErrorIs(t, err, ErrNoSubtitles)
}

func TestGetJSONFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		payload string
	}{
		{"server error", http.StatusInternalServerError, `{"message":"boom"}`},
		{"quota", http.StatusTooManyRequests, `{}`},
		{"null body", http.StatusOK, `null`},
		{"broken json", http.StatusOK, `{"title":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.payload))
			})
			_, err := c.VideoInfo(context.Background(), "dQw4w9WgXcQ")
			assert.Error(t, err)
		})
	}
}

func TestFetchTranscript(t *testing.T) {
	var srvURL string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("x-rapidapi-key"))
		if r.URL.Path == "/missing.xml" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(classicXML))
	})
	srvURL = c.baseURL

	body, err := c.FetchTranscript(context.Background(), "dQw4w9WgXcQ", Subtitle{LanguageCode: "en", URL: srvURL + "/en.xml"})
	require.NoError(t, err)
	assert.Equal(t, classicXML, string(body))

	_, err = c.FetchTranscript(context.Background(), "dQw4w9WgXcQ", Subtitle{LanguageCode: "en", URL: srvURL + "/missing.xml"})
	assert.Error(t, err)

	_, err = c.FetchTranscript(context.Background(), "dQw4w9WgXcQ", Subtitle{LanguageCode: "en"})
	assert.Error(t, err)
}

func TestRateLimiterHonoursContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.VideoInfo(ctx, "dQw4w9WgXcQ")
	assert.Error(t, err)
}
