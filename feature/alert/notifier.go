package alert

import (
	"context"
	"fmt"

	"calendar-sync/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// New returns the notifier for cfg.
func New(cfg Config, logger *zap.Logger) reconcile.Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.WebhookURL == "" {
		return &LogNotifier{logger: logger}
	}
	return &Webhook{url: cfg.WebhookURL, cfg: cfg, logger: logger}
}

// LogNotifier writes alerts to the log.
type LogNotifier struct {
	logger *zap.Logger
}

func (n *LogNotifier) Notify(_ context.Context, message string) {
	n.logger.Error("Alert", zap.String("message", message))
}

// Webhook posts alerts to an incoming webhook. Failures are logged, never returned.
type Webhook struct {
	url    string
	cfg    Config
	logger *zap.Logger
}

type payload struct {
	Text string `json:"text"`
}

func (w *Webhook) Notify(ctx context.Context, message string) {
	if err := ctx.Err(); err != nil {
		w.logger.Warn("Alert dropped", zap.String("message", message), zap.Error(err))
		return
	}
	if err := w.send(message); err != nil {
		w.logger.Error("Alert delivery failed",
			zap.String("message", message),
			zap.Error(err))
		return
	}
	w.logger.Info("Alert delivered")
}

func (w *Webhook) send(message string) error {
	agent := fiber.Post(w.url).
		JSON(payload{Text: message}).
		Timeout(w.cfg.Timeout())

	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return errs[0]
	}
	if status < fiber.StatusOK || status >= fiber.StatusMultipleChoices {
		return fmt.Errorf("webhook returned %d: %s", status, truncate(string(body), 200))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
