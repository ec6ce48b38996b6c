package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/readloopapp/readloop-server/internal/config"
	"github.com/readloopapp/readloop-server/internal/logger"
	"github.com/readloopapp/readloop-server/internal/sse"
	"github.com/readloopapp/readloop-server/internal/store"
)

// shutdownGrace bounds graceful shutdown of long-lived components.
const shutdownGrace = 30 * time.Second

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Logger)

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the database store, wired to broadcast change
// events through the SSE manager.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	dbPath := cfg.DatabasePath()
	db, err := store.Open(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	db.SetEventEmitter(sseHandle.Manager)

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}
