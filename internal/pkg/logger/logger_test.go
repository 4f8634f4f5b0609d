package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewLevel(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, New("prod", "").GetLevel())
	assert.Equal(t, zerolog.DebugLevel, New("prod", "DEBUG").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New("prod", "nonsense").GetLevel())
}

func TestForTagsService(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	l := For(base, "quota")
	l.Info().Msg("hello")

	assert.Contains(t, buf.String(), `"service":"quota"`)
}
