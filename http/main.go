package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/tnqbao/gau-attachment-service/config"
	"github.com/tnqbao/gau-attachment-service/http/controller"
	routes "github.com/tnqbao/gau-attachment-service/http/route"
	infraPkg "github.com/tnqbao/gau-attachment-service/infra"
	"github.com/tnqbao/gau-attachment-service/repository"
)

func main() {
	err := godotenv.Load("staging.env")
	if err != nil {
		log.Println("No .env file found, continuing with environment variables")
	}

	cfg := config.NewConfig()
	infra := infraPkg.InitInfra(cfg)
	repo := repository.InitRepository(infra, cfg)

	ctx := context.Background()
	defer infra.Telemetry.Shutdown(ctx)
	if err := infra.Storage.EnsureBucket(ctx, cfg.EnvConfig.Storage.Bucket); err != nil {
		log.Fatalf("Failed to ensure attachment bucket: %v", err)
	}
	if err := infra.Storage.EnsureBucket(ctx, cfg.EnvConfig.Storage.StagingBucket); err != nil {
		log.Fatalf("Failed to ensure staging bucket: %v", err)
	}

	ctrl := controller.NewController(cfg, infra, repo)

	router := routes.SetupRouter(ctrl)

	log.Println("HTTP Server started on :8080")
	if err := router.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
