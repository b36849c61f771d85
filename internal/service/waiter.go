// FILE: internal/service/waiter.go
package service

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	// WaitTimeout is the maximum time a client can wait for notifications
	WaitTimeout = 25 * time.Second

	// WaitChannelBuffer size for notification channels
	WaitChannelBuffer = 1
)

// WaitRegistry parks long-polling and websocket clients until the move count
// of the game they watch changes
type WaitRegistry struct {
	mu       sync.RWMutex
	waiters  map[string][]*WaitRequest // gameID → waiting clients
	shutdown chan struct{}
	closed   bool
	wg       sync.WaitGroup
}

// WaitRequest represents a single client waiting for game updates
type WaitRequest struct {
	MoveCount int           // Last known move count
	Notify    chan struct{} // Buffered channel for notifications
	Timer     *time.Timer   // Timeout timer
	GameID    string
	done      chan struct{}
	once      sync.Once
}

func NewWaitRegistry() *WaitRegistry {
	return &WaitRegistry{
		waiters:  make(map[string][]*WaitRequest),
		shutdown: make(chan struct{}),
	}
}

// RegisterWait returns a channel that fires once when the game's move count
// differs from moveCount, on timeout, or when the game is removed. The
// channel is closed on shutdown.
func (w *WaitRegistry) RegisterWait(ctx context.Context, gameID string, moveCount int) <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()

	req := &WaitRequest{
		MoveCount: moveCount,
		Notify:    make(chan struct{}, WaitChannelBuffer),
		GameID:    gameID,
		done:      make(chan struct{}),
	}

	if w.closed {
		close(req.Notify)
		return req.Notify
	}

	req.Timer = time.AfterFunc(WaitTimeout, func() {
		w.removeWaiter(gameID, req)
		w.signal(req)
	})

	w.waiters[gameID] = append(w.waiters[gameID], req)

	// Watch for disconnect or shutdown; delivery removes the request itself
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		select {
		case <-ctx.Done():
			w.removeWaiter(gameID, req)
		case <-req.done:
		case <-w.shutdown:
			req.Timer.Stop()
			close(req.Notify)
		}
	}()

	return req.Notify
}

// NotifyGame wakes every waiter of a game whose known move count is stale
func (w *WaitRegistry) NotifyGame(gameID string, currentMoveCount int) {
	w.mu.Lock()
	waitList := w.waiters[gameID]
	var remaining []*WaitRequest
	var wake []*WaitRequest
	for _, req := range waitList {
		if req.MoveCount != currentMoveCount {
			wake = append(wake, req)
		} else {
			remaining = append(remaining, req)
		}
	}
	if len(remaining) == 0 {
		delete(w.waiters, gameID)
	} else {
		w.waiters[gameID] = remaining
	}
	w.mu.Unlock()

	for _, req := range wake {
		w.signal(req)
	}
}

// RemoveGame wakes and forgets all waiters of a deleted game
func (w *WaitRegistry) RemoveGame(gameID string) {
	w.mu.Lock()
	waitList := w.waiters[gameID]
	delete(w.waiters, gameID)
	w.mu.Unlock()

	for _, req := range waitList {
		w.signal(req)
	}
}

// Pending returns the number of clients waiting on a game
func (w *WaitRegistry) Pending(gameID string) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.waiters[gameID])
}

// Shutdown releases all waiters and waits for their watchers to exit
func (w *WaitRegistry) Shutdown(timeout time.Duration) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.waiters = make(map[string][]*WaitRequest)
	close(w.shutdown)
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("wait registry shutdown timed out")
	}
}

// signal delivers a single wake-up and releases the request's watcher
func (w *WaitRegistry) signal(req *WaitRequest) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return
	}
	req.once.Do(func() {
		req.Timer.Stop()
		req.Notify <- struct{}{}
		close(req.done)
	})
}

func (w *WaitRegistry) removeWaiter(gameID string, req *WaitRequest) {
	w.mu.Lock()
	defer w.mu.Unlock()

	waitList := w.waiters[gameID]
	for i, waiter := range waitList {
		if waiter == req {
			w.waiters[gameID] = append(waitList[:i], waitList[i+1:]...)
			break
		}
	}

	if len(w.waiters[gameID]) == 0 {
		delete(w.waiters, gameID)
	}

	req.Timer.Stop()
}
