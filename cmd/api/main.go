// @title           Document Vector Search API
// @version         1.0
// @description     Chunks, embeds and indexes user documents and serves per-user semantic search.
// @termsOfService  http://swagger.io/terms/

// @contact.name    API Support

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/akolanti/docvector/internal/app"
	"github.com/akolanti/docvector/internal/config"
	"github.com/akolanti/docvector/internal/server"
	"github.com/akolanti/docvector/pkg/logger_i"
)

var (
	configPath string
	listenAddr string
)

func main() {
	flag.StringVar(&configPath, "config", "", "path to a YAML config file")
	flag.StringVar(&listenAddr, "listen-addr", "", "server listen address, overrides the config")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		logger_i.NewLogger("main").Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if listenAddr != "" {
		cfg.Server.ListenAddr = listenAddr
	}

	logger_i.Init(cfg.Log)
	var logger = logger_i.NewLogger("main")

	services, err := app.New(context.Background(), cfg)
	if err != nil {
		logger.Error("One or more external services failed to initialize. Shutting down.", "error", err)
		os.Exit(1)
	}

	httpServer, err := server.CreateServer(cfg, services.Service)
	if err != nil {
		logger.Error("Could not build the HTTP server", "error", err)
		_ = services.Close()
		os.Exit(1)
	}

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		CloseServices:    services.Close,
	}
	go httpServer.ShutDownHandler(shutdownParams)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil {
			gracefulShutdown <- syscall.SIGTERM
		}
	}()

	<-stopExecution
	logger.Info("Server stopped")
}
