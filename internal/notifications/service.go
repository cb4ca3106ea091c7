package notifications

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"transmute/internal/config"
)

// Service defines the desktop notification surface exposed to the
// conversion runner and batch orchestrator.
type Service interface {
	NotifyConversionCompleted(ctx context.Context, file, targetFormat string) error
	NotifyConversionFailed(ctx context.Context, file, reason string) error
	NotifyBatchCompleted(ctx context.Context, succeeded, failed int) error
	NotifyBatchCancelled(ctx context.Context, completed, total int) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by notify-send when
// notifications are enabled and the binary exists. A noop
// implementation is returned otherwise.
func NewService(cfg *config.Config) Service {
	if cfg == nil || !cfg.Notifications.Enabled {
		return noopService{}
	}
	binary := cfg.NotifySendBinary()
	if _, err := exec.LookPath(binary); err != nil {
		return noopService{}
	}
	return &notifySendService{binary: binary}
}

type notifySendService struct {
	binary string
}

func (n *notifySendService) NotifyConversionCompleted(ctx context.Context, file, targetFormat string) error {
	return n.send(ctx, "File converted",
		fmt.Sprintf("%s converted to %s", file, targetFormat), "normal")
}

func (n *notifySendService) NotifyConversionFailed(ctx context.Context, file, reason string) error {
	msg := fmt.Sprintf("Converting %s failed", file)
	if reason = strings.TrimSpace(reason); reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, reason)
	}
	return n.send(ctx, "Conversion failed", msg, "critical")
}

func (n *notifySendService) NotifyBatchCompleted(ctx context.Context, succeeded, failed int) error {
	if failed > 0 {
		return n.send(ctx, "Batch conversion finished",
			fmt.Sprintf("%d files converted, %d failed", succeeded, failed), "critical")
	}
	return n.send(ctx, "Batch conversion finished",
		fmt.Sprintf("%d files converted", succeeded), "normal")
}

func (n *notifySendService) NotifyBatchCancelled(ctx context.Context, completed, total int) error {
	return n.send(ctx, "Batch conversion cancelled",
		fmt.Sprintf("stopped after %d of %d files", completed, total), "normal")
}

func (n *notifySendService) TestNotification(ctx context.Context) error {
	return n.send(ctx, "Transmute", "Notifications are working", "normal")
}

func (n *notifySendService) send(ctx context.Context, title, body, urgency string) error {
	cmd := exec.CommandContext(ctx, n.binary,
		"--app-name=transmute",
		"--urgency="+urgency,
		title, body)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("notify-send: %w", err)
	}
	return nil
}

type noopService struct{}

func (noopService) NotifyConversionCompleted(context.Context, string, string) error { return nil }
func (noopService) NotifyConversionFailed(context.Context, string, string) error    { return nil }
func (noopService) NotifyBatchCompleted(context.Context, int, int) error            { return nil }
func (noopService) NotifyBatchCancelled(context.Context, int, int) error            { return nil }
func (noopService) TestNotification(context.Context) error                          { return nil }
