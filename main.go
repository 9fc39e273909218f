package main

import (
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/maxx-dev16/Maxx-OS/bot"
	"github.com/maxx-dev16/Maxx-OS/config"
	"github.com/maxx-dev16/Maxx-OS/logging"
	"github.com/maxx-dev16/Maxx-OS/panel"
	"github.com/maxx-dev16/Maxx-OS/store/sqlite"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default config.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.New("info").Fatal().Err(err).Msg("invalid configuration")
	}
	log := logging.New(cfg.LogLevel)

	st, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
	}
	defer st.Close()

	b, err := bot.NewBot(cfg, st, *log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create bot")
	}
	if err := b.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to discord")
	}

	handlers := panel.NewHandlers(st, b, *log)
	srv := &http.Server{
		Addr:    cfg.PanelAddr,
		Handler: panel.NewRouter(handlers),
	}
	go func() {
		log.Info().Str("addr", cfg.PanelAddr).Msg("panel listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("panel server stopped")
		}
	}()

	log.Info().Msg("bot is running, SIGINT or SIGTERM to exit")
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	log.Info().Msg("shutting down")
	srv.Close()
	b.Stop()
}
