package youtube

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// linkPattern is the accepted link shape. The whole string must match.
var linkPattern = regexp.MustCompile(`^(https?://)?(www\.)?(youtube\.com/watch\?v=|youtu\.be/)([\w-]{11})(\S*)?$`)

var videoIDPattern = regexp.MustCompile(`^[\w-]{11}$`)

// ErrNoVideoID is returned when a link carries no usable video id.
var ErrNoVideoID = errors.New("no video id in link")

// ValidateLink reports whether link has the accepted YouTube shape.
func ValidateLink(link string) bool {
	return linkPattern.MatchString(link)
}

// ExtractVideoID resolves the video id independently of ValidateLink: the v
// query parameter for youtube.com links, the first path segment for youtu.be
// links. The id must be exactly 11 characters of [A-Za-z0-9_-].
func ExtractVideoID(link string) (string, error) {
	raw := strings.TrimSpace(link)
	if raw == "" {
		return "", ErrNoVideoID
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrNoVideoID
	}

	var id string
	switch strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.") {
	case "youtu.be":
		id = strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)[0]
	case "youtube.com", "m.youtube.com":
		id = u.Query().Get("v")
	default:
		return "", ErrNoVideoID
	}

	if !videoIDPattern.MatchString(id) {
		return "", ErrNoVideoID
	}
	return id, nil
}
