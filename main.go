package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/ghostfleet/bcserver/config"
	"github.com/ghostfleet/bcserver/game"
	"github.com/ghostfleet/bcserver/server"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := newLogger(cfg)

	classes, err := loadClasses(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("loading ship class registry")
	}

	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: cfg.Port})
	if err != nil {
		log.Fatal().Err(err).Int("port", cfg.Port).Msg("binding game socket")
	}
	defer conn.Close()

	ctx := server.NewContext(cfg, log, classes)
	ctx.Conn = conn

	if cfg.MetricsPort > 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", ctx.Stats.Handler())
		addr := ":" + strconv.Itoa(cfg.MetricsPort)
		go func() {
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	log.Info().Int("port", cfg.Port).Str("name", cfg.Name).Msg("server listening")
	ctx.Run()
	log.Info().Msg("server stopped")
}

func loadClasses(cfg *config.Config) ([]*game.ShipClass, error) {
	if cfg.ShipClassPath == "" {
		return game.DefaultClasses(), nil
	}
	return game.LoadClasses(cfg.ShipClassPath)
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	var log zerolog.Logger
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			log = zerolog.New(writer).With().Timestamp().Logger().Level(level)
			log.Warn().Err(err).Str("path", cfg.LogFile).Msg("could not open log file")
			return log
		}
		log = zerolog.New(zerolog.MultiLevelWriter(writer, f)).With().Timestamp().Logger().Level(level)
		return log
	}
	return zerolog.New(writer).With().Timestamp().Logger().Level(level)
}
