package telemetry

import (
	"fmt"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
)

var sentryEnabled bool

// InitSentry enables error reporting when dsn is non-empty.
func InitSentry(dsn, env string) error {
	if strings.TrimSpace(dsn) == "" {
		return nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: env,
	}); err != nil {
		return fmt.Errorf("init sentry: %w", err)
	}
	sentryEnabled = true
	return nil
}

// CaptureError reports err to Sentry with the given tags. No-op when disabled.
func CaptureError(err error, tags map[string]string) {
	if !sentryEnabled || err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		sentry.CaptureException(err)
	})
}

// CapturePanic reports a recovered panic value with the given tags.
func CapturePanic(rec any, tags map[string]string) {
	if !sentryEnabled || rec == nil {
		return
	}
	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
	})
	hub.Recover(rec)
}

// Flush waits for buffered Sentry events.
func Flush() {
	if !sentryEnabled {
		return
	}
	sentry.Flush(2 * time.Second)
}
