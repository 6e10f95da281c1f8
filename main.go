package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/toptendaily/go-server/internal/catalog"
	"github.com/toptendaily/go-server/internal/httpserver"
	"github.com/toptendaily/go-server/internal/store"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := catalog.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to load category catalog")
	}

	db, err := openDB(getEnv("DB_PATH", "./data/topten.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	if err := migrate(db); err != nil {
		log.Fatal().Err(err).Msg("apply migrations")
	}

	sessions := store.NewSQLStore(db)
	srv := httpserver.New(sessions, catalog.Default(), db)
	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Int("categories", len(catalog.Default())).Msg("starting topten-go")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
