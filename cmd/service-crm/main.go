package main

import (
	"log"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"service-crm/internal/api"
	"service-crm/internal/config"
	"service-crm/internal/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using the environment")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalln(err)
	}

	zl, err := logger.New(cfg.LoggerConfig())
	if err != nil {
		log.Fatalf("Cannot initialize logger: %v", err)
	}
	zap.ReplaceGlobals(zl.Zap())

	serverApi := api.NewApi(cfg, zl)
	if err := serverApi.Start(); err != nil {
		zl.Fatal("%v", err)
	}
}
