package serverapp

import (
	"fmt"
	"log/slog"
	"os"
)

// Start launches the HTTP server goroutine. It requires Init to have
// completed. Calling Start again returns the existing error channel.
func (a *App) Start() (<-chan error, error) {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()

	if !a.initialized {
		return nil, fmt.Errorf("app is not initialized")
	}
	if a.started {
		return a.serverErrors, nil
	}

	a.serverErrors = startServer(a.cfg, a.logger, a.srv, a.serverAddr)
	a.started = true
	return a.serverErrors, nil
}

// WaitForStop blocks until an OS signal arrives or the server fails, and
// reports which one ended the wait.
func (a *App) WaitForStop(stop <-chan os.Signal, serverErrors <-chan error) (reason string, err error) {
	if serverErrors == nil {
		a.stateMu.Lock()
		serverErrors = a.serverErrors
		a.stateMu.Unlock()
	}

	switch {
	case stop == nil && serverErrors == nil:
		return "", fmt.Errorf("both stop and serverErrors channels are nil")
	case stop == nil:
		return a.stopForServerError(<-serverErrors)
	case serverErrors == nil:
		return a.stopForSignal(<-stop)
	}

	select {
	case err := <-serverErrors:
		return a.stopForServerError(err)
	case sig := <-stop:
		return a.stopForSignal(sig)
	}
}

// A closed error channel means the server goroutine exited without
// reporting; that still counts as a failure.
func (a *App) stopForServerError(err error) (string, error) {
	if err == nil {
		return "server_error", fmt.Errorf("server stopped unexpectedly")
	}
	return "server_error", fmt.Errorf("server failed: %w", err)
}

func (a *App) stopForSignal(sig os.Signal) (string, error) {
	if a.logger != nil {
		a.logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}
	return "signal", nil
}
