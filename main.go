package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/worduel/internal/config"
	"github.com/robalobadob/worduel/internal/game"
	"github.com/robalobadob/worduel/internal/httpserver"
	"github.com/robalobadob/worduel/internal/service"
	"github.com/robalobadob/worduel/internal/store"
	"github.com/robalobadob/worduel/internal/words"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	// worduel token <playerId> prints a signed dev token.
	if len(os.Args) == 3 && os.Args[1] == "token" {
		tok, _, err := httpserver.SignToken(cfg.JWTSecret, os.Args[2], 14*24*time.Hour)
		if err != nil {
			log.Fatal().Err(err).Msg("sign token")
		}
		fmt.Println(tok)
		return
	}

	dict, err := words.Load(cfg.WordsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word list")
	}

	st, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open store")
	}
	defer st.Close()

	engine := game.NewEngine(dict, nil)
	svc := service.New(st, engine, dict, service.Options{
		DefaultRounds: cfg.DefaultRounds,
		InviteTTL:     cfg.InviteTTL,
	})
	srv := httpserver.New(svc, httpserver.Options{
		JWTSecret:      cfg.JWTSecret,
		CookieName:     cfg.CookieName,
		ClientOrigin:   cfg.ClientOrigin,
		RequestTimeout: cfg.RequestTimeout,
	})

	log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Int("words", dict.Len()).Msg("starting worduel")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func openStore(cfg config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		return store.OpenSQLite(cfg.DatabasePath)
	case config.DriverRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return store.OpenRedis(ctx, cfg.RedisURL)
	default:
		return store.NewMemoryStore(), nil
	}
}
