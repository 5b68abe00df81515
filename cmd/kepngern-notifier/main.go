package main

import (
	"context"
	"errors"

	"kepngern/internal/amqp"
	"kepngern/internal/cli"
	"kepngern/internal/config"
	"kepngern/internal/delivery"
	"kepngern/internal/log"
)

func main() {
	cfg, logger, err := cli.Bootstrap((*config.Config).ValidateNotifier)
	if err != nil {
		cli.Fatal(nil, "Startup failed", err)
	}

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

	logger.Info("Starting kepngern-notifier", log.FieldOperation, log.OpStartup)

	var sender delivery.Sender
	if cfg.TelegramEnabled() {
		sender = delivery.NewTelegramSender(cfg.TelegramBotToken, cfg.TelegramChatID, logger)
		logger.Info("Telegram delivery enabled")
	} else {
		sender = delivery.NewLogSender(logger)
		logger.Info("Telegram disabled - notifications will be logged only")
	}
	handler := delivery.NewHandler(sender, delivery.DefaultConfig(), logger)

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}
	defer client.Close()

	if err := client.ConsumeNotifications(ctx, handler.Handle); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Notification consumption failed", log.FieldError, err)
		return
	}
	logger.Info("Notifier stopped", log.FieldOperation, log.OpShutdown)
}
