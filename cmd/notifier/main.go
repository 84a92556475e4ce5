package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Saatvik786/TaskSphere/internal/config"
	"github.com/Saatvik786/TaskSphere/internal/log"
	"github.com/Saatvik786/TaskSphere/internal/mail"
	"github.com/Saatvik786/TaskSphere/internal/queue"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadNotifier()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	l, err := log.Init(cfg.Env == config.EnvProduction)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer l.Sync()

	cons, err := queue.NewConsumer(cfg.RabbitURL, cfg.Exchange, cfg.Queue, cfg.BindKeys, cfg.Prefetch)
	if err != nil {
		l.Fatal("rabbit consumer init failed", zap.Error(err))
	}
	defer cons.Close()

	n := &mail.Notifier{Sender: &mail.LogSender{L: l}, L: l}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l.Info("notifier up",
		zap.String("exchange", cfg.Exchange),
		zap.String("queue", cfg.Queue),
		zap.String("keys", cfg.BindKeys),
		zap.Int("workers", cfg.Concurrency),
	)
	if err := cons.Consume(ctx, cfg.Concurrency, n.Handle); err != nil {
		l.Fatal("consumer stopped", zap.Error(err))
	}
}
