package main

import (
	"context"
	"log"

	"github.com/dprokopov/autofilterbot/internal/bot"
	"github.com/dprokopov/autofilterbot/internal/bot/config"
	"github.com/joho/godotenv"
)

func main() {

	ctx := context.Background()

	// Local development convenience; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := bot.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
