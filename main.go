package main

import (
	"context"
	"flag"

	"github.com/sirupsen/logrus"

	"github.com/studiohub/instructions-server/server"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "Path to configuration file")
	flag.Parse()

	config, err := server.LoadConfig(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	srv, err := server.NewServer(context.Background(), config)
	if err != nil {
		logrus.Fatalf("Failed to create server: %v", err)
	}

	logrus.Info("Starting studio instructions server")
	if err := srv.Run(); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}
}
