// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"context"
	"sync"
)

var _ Reporter = (*ChannelReporter)(nil)

// ChannelReporter implements Reporter using a buffered Go channel.
// It never drops an event while open: when the buffer is full Report blocks
// until the listener catches up.
type ChannelReporter struct {
	ch     chan Event
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
	mutex  sync.RWMutex
	closed bool
}

// NewChannelReporter creates a new ChannelReporter with the specified buffer size.
// The reporter is closed automatically when ctx is cancelled.
func NewChannelReporter(ctx context.Context, bufferSize int) *ChannelReporter {
	reporterCtx, cancel := context.WithCancel(ctx)

	return &ChannelReporter{
		ch:     make(chan Event, bufferSize),
		ctx:    reporterCtx,
		cancel: cancel,
	}
}

// Report implements Reporter.Report.
// It blocks while the buffer is full and returns without sending once the
// reporter has been closed.
func (cr *ChannelReporter) Report(event Event) {
	cr.mutex.RLock()
	defer cr.mutex.RUnlock()

	if cr.closed {
		return
	}

	select {
	case cr.ch <- event:
	case <-cr.ctx.Done():
	}
}

// Close implements Reporter.Close.
// Events already queued are still delivered to a running listener; Close
// returns once the listener has drained them.
func (cr *ChannelReporter) Close() {
	cr.once.Do(func() {
		// unblock any Report waiting on a full buffer before taking the write lock
		cr.cancel()
		cr.mutex.Lock()
		cr.closed = true
		close(cr.ch)
		cr.mutex.Unlock()
		cr.wg.Wait()
	})
}

// Listen starts a goroutine that forwards every event to listener in order.
// The goroutine is the sink's owner; it exits when the reporter is closed.
func (cr *ChannelReporter) Listen(listener Listener) {
	cr.wg.Add(1)

	go func() {
		defer cr.wg.Done()

		for event := range cr.ch {
			listener.OnEvent(event)
		}
	}()
}

// Events returns a read-only channel of events.
// Useful when the caller wants to own the sink loop itself instead of using Listen.
func (cr *ChannelReporter) Events() <-chan Event {
	return cr.ch
}

// Context returns the reporter's context.
// The context is cancelled when the reporter is closed.
func (cr *ChannelReporter) Context() context.Context {
	return cr.ctx
}
