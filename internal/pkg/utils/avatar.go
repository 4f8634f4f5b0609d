package utils

import (
	"crypto/md5"
	"fmt"
	"strings"
)

// AvatarURL returns providerURL when the OAuth provider sent one, otherwise a
// Gravatar URL for email that falls back to the "mystery person" image.
func AvatarURL(providerURL, email string, size int) string {
	if u := strings.TrimSpace(providerURL); u != "" {
		return u
	}
	if size <= 0 {
		size = 200
	}

	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?s=%d&d=mp", sum, size)
}
