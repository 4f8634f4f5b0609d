package youtube

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"
)

// ErrEmptyTranscript is returned when a track parses but holds no text.
var ErrEmptyTranscript = errors.New("transcript has no text")

// Segment is one caption line.
type Segment struct {
	Start    time.Duration
	Duration time.Duration
	Text     string
}

// Transcript is the parsed caption track in playback order.
type Transcript []Segment

// classic timedtext: <transcript><text start="1.2" dur="3.4">...</text></transcript>
type classicDoc struct {
	XMLName xml.Name      `xml:"transcript"`
	Texts   []classicText `xml:"text"`
}

type classicText struct {
	Start string `xml:"start,attr"`
	Dur   string `xml:"dur,attr"`
	Body  string `xml:",chardata"`
}

// format 3: <timedtext format="3"><body><p t="1200" d="3400">...<s>..</s></p></body></timedtext>
type format3Doc struct {
	XMLName xml.Name `xml:"timedtext"`
	Body    struct {
		Paragraphs []format3Paragraph `xml:"p"`
	} `xml:"body"`
}

type format3Paragraph struct {
	T     string `xml:"t,attr"`
	D     string `xml:"d,attr"`
	Text  string `xml:",chardata"`
	Spans []struct {
		Text string `xml:",chardata"`
	} `xml:"s"`
}

// ParseTranscript decodes a subtitle track in either YouTube XML format.
func ParseTranscript(data []byte) (Transcript, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrEmptyTranscript
	}

	var (
		out Transcript
		err error
	)
	if bytes.Contains(trimmed, []byte("<timedtext")) {
		out, err = parseFormat3(trimmed)
	} else {
		out, err = parseClassic(trimmed)
	}
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrEmptyTranscript
	}
	return out, nil
}

func parseClassic(data []byte) (Transcript, error) {
	var doc classicDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	out := make(Transcript, 0, len(doc.Texts))
	for _, t := range doc.Texts {
		text := cleanText(t.Body)
		if text == "" {
			continue
		}
		start, err := parseSeconds(t.Start)
		if err != nil {
			return nil, fmt.Errorf("decode transcript: start %q: %w", t.Start, err)
		}
		dur, _ := parseSeconds(t.Dur)
		out = append(out, Segment{Start: start, Duration: dur, Text: text})
	}
	return out, nil
}

func parseFormat3(data []byte) (Transcript, error) {
	var doc format3Doc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	out := make(Transcript, 0, len(doc.Body.Paragraphs))
	for _, p := range doc.Body.Paragraphs {
		raw := p.Text
		for _, s := range p.Spans {
			raw += s.Text
		}
		text := cleanText(raw)
		if text == "" {
			continue
		}
		start, err := parseMillis(p.T)
		if err != nil {
			return nil, fmt.Errorf("decode transcript: t %q: %w", p.T, err)
		}
		dur, _ := parseMillis(p.D)
		out = append(out, Segment{Start: start, Duration: dur, Text: text})
	}
	return out, nil
}

// cleanText undoes the second level of escaping YouTube applies and folds
// whitespace.
func cleanText(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(s)), " ")
}

func parseSeconds(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(f * float64(time.Second)), nil
}

func parseMillis(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// Timestamp formats d as m:ss, or h:mm:ss from one hour on.
func Timestamp(d time.Duration) string {
	total := int(d / time.Second)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// String renders one "timestamp text" line per segment.
func (t Transcript) String() string {
	var b strings.Builder
	for _, seg := range t {
		b.WriteString(Timestamp(seg.Start))
		b.WriteByte(' ')
		b.WriteString(seg.Text)
		b.WriteByte('\n')
	}
	return b.String()
}
