package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/thetronjohnson/layrr/internal/infrastructure/config"
	"github.com/thetronjohnson/layrr/internal/infrastructure/logging"
	"github.com/thetronjohnson/layrr/internal/server"
)

func main() {
	port := flag.String("port", "", "server port (overrides PORT)")
	dev := flag.Bool("dev", false, "development logging")
	flag.Parse()

	cfg := config.LoadOrDefault()
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stdout"},
	})
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}

	srv := server.NewServer(cfg, logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Run(cfg.Server.Host + ":" + cfg.Server.Port)
	}()

	select {
	case <-sigChan:
		logger.Info("shutting down")
		if err := srv.Close(); err != nil {
			logger.Warn("shutdown flush failed")
		}
	case err := <-errChan:
		logger.Fatal("server error: " + err.Error())
	}
}
