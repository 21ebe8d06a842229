package shutdown

import (
	"context"
	"sync"

	"github.com/bridgebot/gowatch/pkg/logger"
)

// Handler is a shutdown callback. It should return once its component has
// released its resources, or when ctx expires.
type Handler func(ctx context.Context)

// Manager runs registered shutdown callbacks concurrently with a deadline.
type Manager struct {
	mu        sync.Mutex
	callbacks []Handler
}

// NewManager creates an empty shutdown manager.
func NewManager() *Manager {
	return &Manager{}
}

// OnShutdown registers a callback to run during Shutdown.
func (m *Manager) OnShutdown(handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, handler)
}

// Shutdown runs all callbacks and blocks until they finish or ctx expires.
// ctx should carry a timeout so a stuck component cannot wedge the exit.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	callbacks := m.callbacks
	m.mu.Unlock()

	if len(callbacks) == 0 {
		return
	}

	logger.Infof("[shutdown] running %d callbacks", len(callbacks))

	var wg sync.WaitGroup
	wg.Add(len(callbacks))
	for _, cb := range callbacks {
		go func(handler Handler) {
			defer wg.Done()
			handler(ctx)
		}(cb)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("[shutdown] all callbacks finished")
	case <-ctx.Done():
		logger.Warnf("[shutdown] timed out: %v", ctx.Err())
	}
}
