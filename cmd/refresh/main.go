// Command refresh publishes a budget-refreshed event, telling running
// dashboard instances to drop cached data for a user. Meant to be run
// by the sync proxy after it finishes pulling budgeting-service data.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/philgetzen/my-finance-dashboard-sub003/internal/amqp"
	"github.com/philgetzen/my-finance-dashboard-sub003/internal/config"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	userID := flag.String("user", "", "user to refresh (defaults to USER_ID)")
	flag.Parse()

	cfg := config.Load()
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required")
		os.Exit(1)
	}
	if *userID == "" {
		*userID = cfg.UserID
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.PublishBudgetRefreshed(ctx, *userID); err != nil {
		logger.Error("Failed to publish refresh event", "error", err, "user_id", *userID)
		os.Exit(1)
	}
}
