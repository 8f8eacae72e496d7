package config

import (
	"os"
	"strings"
)

type Mode string

const (
	ModeDev  Mode = "dev"
	ModeProd Mode = "prod"
)

type Config struct {
	Mode     Mode
	HTTPAddr string

	// Base URL of the course API, including its /api prefix.
	APIBaseURL string

	CORSOrigins []string

	// Cookie attributes for the session and theme cookies.
	CookieSecure bool
	DefaultTheme string // dark|light
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode != ModeProd {
		mode = ModeDev
	}
	theme := os.Getenv("DEFAULT_THEME")
	if theme != "light" {
		theme = "dark"
	}
	return Config{
		Mode:         mode,
		HTTPAddr:     envOr("HTTP_ADDR", ":3000"),
		APIBaseURL:   envOr("API_BASE_URL", "http://127.0.0.1:8000/api"),
		CORSOrigins:  csvOr("CORS_ORIGINS", "http://localhost:3000"),
		CookieSecure: envBool("COOKIE_SECURE", mode == ModeProd),
		DefaultTheme: theme,
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
