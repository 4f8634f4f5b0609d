package transcriptcache

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ManuelReschke/ChapterFox/internal/pkg/config"
)

// Config holds S3 transcript cache configuration
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
	Enabled         bool
}

// FromSettings maps the typed settings onto the cache configuration.
func FromSettings(s config.TranscriptCacheSettings) (*Config, error) {
	cfg := &Config{
		AccessKeyID:     s.AccessKey,
		SecretAccessKey: s.SecretKey,
		Region:          s.Region,
		BucketName:      s.Bucket,
		EndpointURL:     s.Endpoint,
		Enabled:         s.Enabled,
	}

	if cfg.Enabled {
		if cfg.BucketName == "" {
			return nil, errors.New("TRANSCRIPT_CACHE_BUCKET is required when the transcript cache is enabled")
		}
		if (cfg.AccessKeyID == "") != (cfg.SecretAccessKey == "") {
			return nil, errors.New("TRANSCRIPT_CACHE_ACCESS_KEY and TRANSCRIPT_CACHE_SECRET_KEY must be set together")
		}
	}

	return cfg, nil
}

// IsEnabled returns true if the transcript cache is enabled
func (c *Config) IsEnabled() bool {
	return c.Enabled
}

// ObjectKey builds the object key of a cached subtitle track.
// Format: transcripts/<videoID>/<lang>.xml
func ObjectKey(videoID, lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		lang = "default"
	}
	return fmt.Sprintf("transcripts/%s/%s.xml", videoID, lang)
}
