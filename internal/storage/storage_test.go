package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func testStores(t *testing.T) map[string]BlobStore {
	stores := map[string]BlobStore{
		"memory": NewMemoryStore(),
		"file":   NewFileStore(filepath.Join(t.TempDir(), "nested", "save.json")),
	}
	if dsn := os.Getenv("PIXELPET_TEST_DSN"); dsn != "" {
		pg, err := OpenPostgres(context.Background(), dsn, "test_"+t.Name())
		if err != nil {
			t.Fatalf("OpenPostgres: %v", err)
		}
		t.Cleanup(func() { pg.Clear(context.Background()); pg.Close() })
		stores["postgres"] = pg
	}
	return stores
}

func TestBlobStores(t *testing.T) {
	ctx := context.Background()
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Load(ctx); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Load on empty store: expected ErrNotFound, got %v", err)
			}

			if err := store.Save(ctx, []byte(`{"v":1}`)); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			if err := store.Save(ctx, []byte(`{"v":2}`)); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			data, err := store.Load(ctx)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if string(data) != `{"v":2}` {
				t.Errorf("Expected latest save, got %s", data)
			}

			if err := store.Clear(ctx); err != nil {
				t.Fatalf("Clear failed: %v", err)
			}
			if _, err := store.Load(ctx); !errors.Is(err, ErrNotFound) {
				t.Errorf("Load after Clear: expected ErrNotFound, got %v", err)
			}
			if err := store.Clear(ctx); err != nil {
				t.Errorf("Clear on empty store failed: %v", err)
			}
		})
	}
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "save.json"))
	for i := 0; i < 3; i++ {
		if err := store.Save(context.Background(), []byte("data")); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "save.json" {
		t.Errorf("Expected only save.json, got %v", entries)
	}
}

func TestMemoryStoreFailure(t *testing.T) {
	store := NewMemoryStore()
	boom := errors.New("disk full")
	store.FailWith(boom)
	if err := store.Save(context.Background(), []byte("x")); !errors.Is(err, boom) {
		t.Errorf("Expected injected error, got %v", err)
	}
	store.FailWith(nil)
	if err := store.Save(context.Background(), []byte("x")); err != nil {
		t.Errorf("Expected save to recover, got %v", err)
	}
	if store.Saves() != 1 {
		t.Errorf("Expected 1 save, got %d", store.Saves())
	}
}

// recorder collects writes made by a Debouncer.
type recorder struct {
	mu     sync.Mutex
	writes []string
	got    chan string
	err    error
}

func newRecorder() *recorder {
	return &recorder{got: make(chan string, 16)}
}

func (r *recorder) save(ctx context.Context, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.writes = append(r.writes, string(data))
	r.got <- string(data)
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.writes)
}

func TestDebouncerCoalesces(t *testing.T) {
	rec := newRecorder()
	d := NewDebouncer(50*time.Millisecond, rec.save)

	d.Schedule([]byte("a"))
	d.Schedule([]byte("b"))
	d.Schedule([]byte("c"))

	select {
	case got := <-rec.got:
		if got != "c" {
			t.Errorf("Expected latest snapshot c, got %s", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Debounced save never happened")
	}

	select {
	case extra := <-rec.got:
		t.Errorf("Unexpected second write %s", extra)
	case <-time.After(200 * time.Millisecond):
	}
	if d.Pending() {
		t.Error("Expected nothing pending after the write")
	}
}

func TestDebouncerFlush(t *testing.T) {
	rec := newRecorder()
	d := NewDebouncer(time.Hour, rec.save)

	if err := d.Flush(context.Background()); err != nil {
		t.Errorf("Flush with nothing pending: %v", err)
	}
	if rec.count() != 0 {
		t.Error("Flush with nothing pending must not write")
	}

	d.Schedule([]byte("snapshot"))
	if !d.Pending() {
		t.Error("Expected pending snapshot")
	}
	if err := d.Flush(context.Background()); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if rec.count() != 1 || rec.writes[0] != "snapshot" {
		t.Errorf("Expected one write of snapshot, got %v", rec.writes)
	}
}

func TestDebouncerClose(t *testing.T) {
	rec := newRecorder()
	d := NewDebouncer(time.Hour, rec.save)

	d.Schedule([]byte("last"))
	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	d.Schedule([]byte("ignored"))
	if d.Pending() {
		t.Error("Schedule after Close must be ignored")
	}
	if rec.count() != 1 {
		t.Errorf("Expected exactly the flushed write, got %v", rec.writes)
	}
}

func TestDebouncerReportsErrors(t *testing.T) {
	rec := newRecorder()
	rec.err = errors.New("offline")
	d := NewDebouncer(10*time.Millisecond, rec.save)

	errs := make(chan error, 1)
	d.OnError(func(err error) { errs <- err })
	d.Schedule([]byte("x"))

	select {
	case err := <-errs:
		if !errors.Is(err, rec.err) {
			t.Errorf("Expected offline error, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Error callback never fired")
	}

	d.Schedule([]byte("y"))
	if err := d.Flush(context.Background()); !errors.Is(err, rec.err) {
		t.Errorf("Expected Flush to return the save error, got %v", err)
	}
}

func TestDebouncerSetDelay(t *testing.T) {
	rec := newRecorder()
	d := NewDebouncer(time.Hour, rec.save)
	d.SetDelay(10 * time.Millisecond)
	d.SetDelay(0) // ignored

	d.Schedule([]byte("soon"))
	select {
	case <-rec.got:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected the shorter delay to apply")
	}
}
