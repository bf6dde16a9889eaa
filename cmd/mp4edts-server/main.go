package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/ugparu/mp4edts/server"
	"github.com/ugparu/mp4edts/utils/logger"
)

func main() {
	cfg := server.ConfigFromEnv()
	logger.Init(cfg.LogLevel)

	srv := server.New(cfg)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go srv.Start()

	select {
	case sig := <-sigChan:
		logger.Infof(srv, "Received %s, shutting down", sig)
	case <-srv.Dead():
	}
	srv.Close()
}
