package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/simoamogit/progetto-scuola/internal/config"
	"github.com/simoamogit/progetto-scuola/internal/logger"
	"github.com/simoamogit/progetto-scuola/internal/metrics"
	"github.com/simoamogit/progetto-scuola/internal/reminder"
	"github.com/simoamogit/progetto-scuola/internal/storage"
	"github.com/simoamogit/progetto-scuola/internal/storage/memory"
	spg "github.com/simoamogit/progetto-scuola/internal/storage/postgres"
	"github.com/simoamogit/progetto-scuola/internal/transport"
	transporthttp "github.com/simoamogit/progetto-scuola/internal/transport/http"
	"github.com/simoamogit/progetto-scuola/internal/transport/twilio"
)

func main() {
	configPath := flag.String("config", "", "path to optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.New("error").Error("load config", "err", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)
	log.Info("config loaded", "port", cfg.Port, "store", cfg.StoreBackend,
		"reminder_interval", cfg.ReminderInterval.String(), "twilio", cfg.TwilioConfigured())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var (
		store storage.EventStore
		ready func(context.Context) error
	)
	switch cfg.StoreBackend {
	case "postgres":
		db, err := spg.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Error("db connect", "err", err)
			os.Exit(1)
		}
		defer db.Close()

		mig := filepath.Join("migrations", "0001_init.sql")
		if err := db.RunMigration(ctx, mig); err != nil {
			log.Error("migration", "err", err)
			os.Exit(1)
		}
		log.Info("db ready", "migration", mig)
		store = spg.NewStore(db)
		ready = db.Ready
	case "memory":
		store = memory.NewStore()
		log.Warn("using in-memory store, events are lost on restart")
	}

	var sender transport.Sender
	if cfg.TwilioConfigured() {
		sender = twilio.NewClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFrom, cfg.TransportTimeout)
	} else {
		sender = transport.LogSender{Logger: log}
		log.Warn("twilio not configured, reminders go to the log only")
	}

	m := metrics.New()

	dispatcher := reminder.NewDispatcher(sender, cfg.RecipientAddress, log, m)
	scheduler := reminder.NewScheduler(store, dispatcher, cfg.ReminderInterval, log, m)
	if err := scheduler.Start(ctx); err != nil {
		log.Error("scheduler start", "err", err)
		os.Exit(1)
	}

	deps := &transporthttp.ServerDeps{
		Cfg:     cfg,
		Store:   store,
		Logger:  log,
		Metrics: m,
		Ready:   ready,
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           deps.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel2 := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel2()
	_ = srv.Shutdown(shutdownCtx)
	scheduler.Stop()
}
