package oauth

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/middleware/session"
	redisstorage "github.com/gofiber/storage/redis"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/discord"
	"github.com/markbates/goth/providers/github"
	"github.com/markbates/goth/providers/google"
	gothfiber "github.com/shareed2k/goth_fiber"

	"github.com/ManuelReschke/ChapterFox/internal/pkg/cache"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/env"
)

// CallbackURL is the provider callback for base.
func CallbackURL(base, provider string) string {
	return strings.TrimRight(base, "/") + "/auth/" + provider + "/callback"
}

// Setup registers the Goth providers for which credentials are configured and
// puts the OAuth state in Redis. It is safe to call multiple times.
func Setup(publicDomain string) {
	base := strings.TrimRight(publicDomain, "/")
	if base == "" {
		base = "http://localhost:" + env.GetEnv("APP_PORT", "4000")
	}

	var providers []goth.Provider
	if key := env.GetEnv("GOOGLE_KEY", ""); key != "" {
		providers = append(providers, google.New(key, env.GetEnv("GOOGLE_SECRET", ""),
			CallbackURL(base, "google"), "email", "profile"))
	}
	if key := env.GetEnv("GITHUB_KEY", ""); key != "" {
		providers = append(providers, github.New(key, env.GetEnv("GITHUB_SECRET", ""),
			CallbackURL(base, "github"), "user:email"))
	}
	if key := env.GetEnv("DISCORD_KEY", ""); key != "" {
		providers = append(providers, discord.New(key, env.GetEnv("DISCORD_SECRET", ""),
			CallbackURL(base, "discord"), discord.ScopeIdentify, discord.ScopeEmail))
	}
	goth.UseProviders(providers...)

	// OAuth state via Redis, using same connection as app sessions (separate DB)
	cacheOpts := cache.GetClient().Options()
	host, port := "127.0.0.1", 6379
	if cacheOpts != nil && cacheOpts.Addr != "" {
		if h, p, err := net.SplitHostPort(cacheOpts.Addr); err == nil {
			host = h
			if parsed, e := strconv.Atoi(p); e == nil {
				port = parsed
			}
		} else {
			host = cacheOpts.Addr
		}
	}

	gothfiber.SessionStore = session.New(session.Config{
		Storage: redisstorage.New(redisstorage.Config{
			Host:     host,
			Port:     port,
			Username: cacheOpts.Username,
			Password: cacheOpts.Password,
			Database: 2,
			Reset:    false,
		}),
		KeyLookup:      "cookie:" + gothic.SessionName,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		CookieSecure:   !env.IsDev(),
		Expiration:     time.Hour,
	})
}
