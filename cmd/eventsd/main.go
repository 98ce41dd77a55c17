package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lomoval/eventstore/internal/app"
	"github.com/lomoval/eventstore/internal/logger"
	"github.com/lomoval/eventstore/internal/rabbit"
	internalhttp "github.com/lomoval/eventstore/internal/server/http"
	"github.com/lomoval/eventstore/internal/storagebuilder"
	log "github.com/sirupsen/logrus"
)

var configFile string

func init() {
	flag.StringVar(&configFile, "config", "", "Path to configuration file")
	log.SetFormatter(&log.TextFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.WarnLevel)
}

func main() {
	flag.Parse()

	config, err := NewConfig(configFile)
	if err != nil {
		log.Errorf("failed to start %v", err)
		os.Exit(1)
	}
	err = logger.PrepareLogger(config.Logger)
	if err != nil {
		log.Errorf("failed to start %v", err)
		os.Exit(1)
	}
	stor, err := storagebuilder.New(config.Storage)
	if err != nil {
		log.Errorf("failed to start %v", err)
		os.Exit(1)
	}

	var (
		notifier app.Notifier
		provider *rabbit.Provider
	)
	if config.Rabbit.Enabled {
		provider = rabbit.New(config.Rabbit)
		if err := provider.Connect(); err != nil {
			log.Errorf("failed to start %v", err)
			closeStorage(stor)
			os.Exit(1)
		}
		notifier = provider
	}

	events := app.New(stor, notifier)
	server := internalhttp.NewServer(config.HTTPServer, events)

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	go func() {
		<-ctx.Done()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
		defer cancel()

		if err := server.Stop(ctx); err != nil {
			log.Error("failed to stop http server: " + err.Error())
		}
	}()

	log.Info("events server is running...")

	if err := server.Start(ctx); err != nil {
		log.Error("failed to start http server: " + err.Error())
		cancel()
		closeRabbit(provider)
		closeStorage(stor)
		os.Exit(1) //nolint:gocritic
	}
	closeRabbit(provider)
	closeStorage(stor)
}

func closeRabbit(p *rabbit.Provider) {
	if p == nil {
		return
	}
	if err := p.Close(); err != nil {
		log.Errorf("failed to close rabbit connection: %v", err)
	}
}

type closer interface {
	Close(ctx context.Context) error
}

func closeStorage(stor closer) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()
	if err := stor.Close(ctx); err != nil {
		log.Errorf("failed to close storage: %v", err)
	}
}
