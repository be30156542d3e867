package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/tnqbao/gau-attachment-service/config"
	"github.com/tnqbao/gau-attachment-service/consumer/worker"
	infraPkg "github.com/tnqbao/gau-attachment-service/infra"
	"github.com/tnqbao/gau-attachment-service/repository"
)

func main() {
	err := godotenv.Load("../staging.env")
	if err != nil {
		log.Println("No .env file found, continuing with environment variables")
	}

	cfg := config.NewConfig()
	infra := infraPkg.InitInfra(cfg)
	repo := repository.InitRepository(infra, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer infra.Telemetry.Shutdown(context.Background())

	thumbnailConsumer := worker.NewThumbnailConsumer(infra.RabbitMQ.Channel, infra, repo)
	if err := thumbnailConsumer.Start(ctx); err != nil {
		infra.Logger.ErrorWithContextf(ctx, err, "Failed to start thumbnail consumer: %v", err)
		log.Fatalf("Failed to start thumbnail consumer: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	infra.Logger.InfoWithContextf(ctx, "Shutting down consumer...")
	cancel()

	infra.Logger.InfoWithContextf(ctx, "Consumer exited properly")
}
