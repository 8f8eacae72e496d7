package main

import (
	"net/http"

	"github.com/joho/godotenv"

	"github.com/ai-academy/academy-web/internal/academy"
	"github.com/ai-academy/academy-web/internal/config"
	"github.com/ai-academy/academy-web/internal/logging"
	"github.com/ai-academy/academy-web/internal/progress"
	"github.com/ai-academy/academy-web/internal/session"
	"github.com/ai-academy/academy-web/internal/web"
)

func main() {
	// Optional .env for local dev; real deployments set the environment.
	_ = godotenv.Load()

	cfg := config.FromEnv()

	log, err := logging.New(string(cfg.Mode))
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// No client timeout: course generation holds the request open until
	// the backend finishes. Cancellation rides on the request context.
	api := academy.NewClient(cfg.APIBaseURL, &http.Client{})

	sessions := session.NewStore(cfg.CookieSecure, cfg.DefaultTheme)
	store := progress.NewMemoryStore()

	srv, err := web.NewServer(api, sessions, store, log, cfg.CORSOrigins)
	if err != nil {
		log.Fatal("server init", "err", err)
	}

	log.Info("listening", "addr", cfg.HTTPAddr, "api", cfg.APIBaseURL, "mode", cfg.Mode)
	if err := http.ListenAndServe(cfg.HTTPAddr, srv.Router()); err != nil {
		log.Fatal("http server", "err", err)
	}
}
