package chapters

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ManuelReschke/ChapterFox/internal/pkg/youtube"
	"github.com/rs/zerolog"
)

// ErrEmptyResult is returned when the model produced no chapter lines.
var ErrEmptyResult = errors.New("no chapters generated")

// chapterLine matches "0:00 Title", "12:34 - Title" and "1:02:03 Title".
var chapterLine = regexp.MustCompile(`^\s*(?:[-*]\s*)?\(?((?:\d{1,2}:)?\d{1,2}:\d{2})\)?\s*[-–:]?\s*(\S.*)$`)

const systemPrompt = `You write YouTube video chapters from a transcript.
Return one chapter per line in the form "m:ss Title" (use h:mm:ss past one hour).
The first chapter must start at 0:00. Titles are short and descriptive.
Return only the chapter lines, nothing else.`

// Completer sends a chat request and returns the reply text.
type Completer interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// Synthesizer turns a transcript into chapter lines.
type Synthesizer struct {
	completer Completer
	logger    zerolog.Logger
}

func NewSynthesizer(completer Completer, logger zerolog.Logger) *Synthesizer {
	return &Synthesizer{
		completer: completer,
		logger:    logger.With().Str("service", "ChapterSynthesizer").Logger(),
	}
}

// Generate asks the model for chapters and returns the normalized lines.
func (s *Synthesizer) Generate(ctx context.Context, title string, lengthSeconds int, transcript youtube.Transcript) ([]string, error) {
	if len(transcript) == 0 {
		return nil, youtube.ErrEmptyTranscript
	}

	user := fmt.Sprintf("Title: %s\nLength: %s\n\nTranscript:\n%s",
		title, youtube.Timestamp(time.Duration(lengthSeconds)*time.Second), transcript.String())

	reply, err := s.completer.Complete(ctx, ChatRequest{
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: user},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("chapter completion: %w", err)
	}

	lines := ParseChapters(reply)
	if len(lines) == 0 {
		s.logger.Warn().Str("title", title).Int("reply_len", len(reply)).Msg("Model reply contained no chapter lines")
		return nil, ErrEmptyResult
	}
	return lines, nil
}

// ParseChapters extracts "timestamp title" lines from free text. Lines
// without a leading timestamp are dropped.
func ParseChapters(text string) []string {
	var out []string
	for _, raw := range strings.Split(text, "\n") {
		m := chapterLine.FindStringSubmatch(strings.TrimSpace(raw))
		if m == nil {
			continue
		}
		title := strings.TrimSpace(strings.Trim(m[2], "*"))
		if title == "" {
			continue
		}
		out = append(out, m[1]+" "+title)
	}
	return out
}
