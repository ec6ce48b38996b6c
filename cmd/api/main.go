// Command api runs the ReadLoop HTTP server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/readloopapp/readloop-server/internal/di"
	"github.com/readloopapp/readloop-server/internal/di/providers"
	"github.com/readloopapp/readloop-server/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	injector := di.NewContainer()
	if err := di.Bootstrap(injector); err != nil {
		return err
	}

	log := do.MustInvoke[*logger.Logger](injector)

	// Block until SIGINT or SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("Shutting down server gracefully...")

	// The container shuts services down in reverse dependency order.
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	// The store and search index sit behind handle types, so their
	// resources get closed explicitly after everything that uses them.
	closeHandle(log, "database", func() (shutdownable, error) {
		return do.Invoke[*providers.StoreHandle](injector)
	})
	closeHandle(log, "search index", func() (shutdownable, error) {
		return do.Invoke[*providers.SearchIndexHandle](injector)
	})

	log.Info("Goodbye, happy reading...")
	return nil
}

type shutdownable interface {
	Shutdown() error
}

func closeHandle(log *logger.Logger, name string, invoke func() (shutdownable, error)) {
	handle, err := invoke()
	if err != nil {
		return
	}
	log.Info("Closing " + name + "...")
	if err := handle.Shutdown(); err != nil {
		log.Error("Failed to close "+name, "error", err)
		return
	}
	log.Info("Closed " + name)
}
