package storage

import (
	"context"
	"log"
	"sync"
	"time"
)

// DefaultSaveDelay is how long the Debouncer waits for mutations to stop.
const DefaultSaveDelay = time.Second

// Debouncer coalesces bursts of snapshots into one write. Only the latest
// pending snapshot is kept; it is written once no new snapshot has arrived
// for the delay. Writes happen on their own goroutine.
type Debouncer struct {
	save func(ctx context.Context, data []byte) error

	mu      sync.Mutex
	delay   time.Duration
	pending []byte
	seq     uint64 // of the pending snapshot
	timer   *time.Timer
	closed  bool
	onError func(error)

	writeMu sync.Mutex
	written uint64 // newest snapshot already written
}

// NewDebouncer returns a debouncer writing through save.
func NewDebouncer(delay time.Duration, save func(ctx context.Context, data []byte) error) *Debouncer {
	if delay <= 0 {
		delay = DefaultSaveDelay
	}
	return &Debouncer{save: save, delay: delay}
}

// OnError registers a callback for failed background writes.
func (d *Debouncer) OnError(fn func(error)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onError = fn
}

// SetDelay changes the quiescence window for the next snapshot.
func (d *Debouncer) SetDelay(delay time.Duration) {
	if delay <= 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.delay = delay
}

// Schedule replaces the pending snapshot and restarts the window. Calls after
// Close are ignored.
func (d *Debouncer) Schedule(data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	d.pending = data
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

// Pending reports whether a snapshot is waiting to be written.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Flush writes the pending snapshot now and waits for any write in flight.
func (d *Debouncer) Flush(ctx context.Context) error {
	data, seq := d.take()
	return d.write(ctx, data, seq)
}

// Close flushes and stops accepting snapshots.
func (d *Debouncer) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return d.Flush(ctx)
}

func (d *Debouncer) fire() {
	data, seq := d.take()
	if data == nil {
		return
	}
	if err := d.write(context.Background(), data, seq); err != nil {
		log.Printf("Error saving state: %v", err)
		d.mu.Lock()
		fn := d.onError
		d.mu.Unlock()
		if fn != nil {
			fn(err)
		}
	}
}

// take empties the pending slot.
func (d *Debouncer) take() ([]byte, uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	data, seq := d.pending, d.seq
	d.pending = nil
	return data, seq
}

// write saves data unless a newer snapshot was already written. Holding
// writeMu keeps writes ordered.
func (d *Debouncer) write(ctx context.Context, data []byte, seq uint64) error {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()
	if data == nil || seq <= d.written {
		return nil
	}
	if err := d.save(ctx, data); err != nil {
		return err
	}
	d.written = seq
	return nil
}
