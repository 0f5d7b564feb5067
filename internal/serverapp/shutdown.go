package serverapp

import (
	"context"
	"log/slog"
	"slices"

	"github.com/tanglisha/text-pair/internal/logging"
)

// cleanupStep pairs a resource name with its release function.
type cleanupStep struct {
	name  string
	close func(context.Context) error
}

// cleanupStack releases resources in reverse order of acquisition.
type cleanupStack struct {
	items []cleanupStep
}

func (s *cleanupStack) push(name string, fn func(context.Context) error) {
	s.items = append(s.items, cleanupStep{name: name, close: fn})
}

// run releases every step, newest first, logging and continuing past errors.
func (s *cleanupStack) run(ctx context.Context, logger *logging.Logger) {
	for _, step := range slices.Backward(s.items) {
		if logger != nil {
			logger.Info("shutting down " + step.name)
		}
		if err := step.close(ctx); err != nil && logger != nil {
			logger.Warn("cleanup error",
				slog.String("component", step.name),
				slog.String("error", err.Error()),
			)
		}
	}
}

// Shutdown releases everything Init acquired. Safe to call more than once;
// only the first call runs the stack.
func (a *App) Shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	a.shutdownOnce.Do(func() {
		a.stateMu.Lock()
		cleanup := a.cleanup
		a.started = false
		a.stateMu.Unlock()

		cleanup.run(ctx, a.logger)
	})

	return nil
}
