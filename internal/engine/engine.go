// Package engine owns the single game state. Every command runs to
// completion under one lock, and each change is handed to a debounced
// writer so saving never blocks play.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"pixelpet/internal/ai"
	"pixelpet/internal/clock"
	"pixelpet/internal/pet"
	"pixelpet/internal/storage"
	"pixelpet/internal/vocab"
)

// ErrInvalidSave is returned by Import for text that is not a usable save.
var ErrInvalidSave = pet.ErrInvalidSave

// Engine is the controller for one pet.
type Engine struct {
	mu    sync.Mutex
	state *pet.GameState
	gen   *ai.Generator
	now   func() time.Time

	store storage.BlobStore
	saver *storage.Debouncer

	statusMu    sync.Mutex
	status      string
	onSaveError func(error)
}

// Option configures an Engine.
type Option func(*options)

type options struct {
	rand      ai.Rand
	phrases   *ai.Phrases
	now       func() time.Time
	saveDelay time.Duration
}

// WithRand sets the random source used for replies.
func WithRand(r ai.Rand) Option {
	return func(o *options) { o.rand = r }
}

// WithPhrases replaces the built-in phrase set.
func WithPhrases(p *ai.Phrases) Option {
	return func(o *options) { o.phrases = p }
}

// WithClock sets the time source. The default is pet.TimeNow.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithSaveDelay sets how long the engine waits for commands to stop before
// saving.
func WithSaveDelay(d time.Duration) Option {
	return func(o *options) { o.saveDelay = d }
}

// New returns an engine holding a fresh pet. Call Load to pick up a saved
// game.
func New(store storage.BlobStore, opts ...Option) *Engine {
	o := options{
		now:       func() time.Time { return pet.TimeNow() },
		saveDelay: storage.DefaultSaveDelay,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.phrases == nil {
		o.phrases = ai.DefaultPhrases()
	}

	e := &Engine{
		gen:   ai.NewWithPhrases(o.phrases, o.rand),
		now:   o.now,
		store: store,
	}
	e.state = pet.NewGameState(e.now())
	e.saver = storage.NewDebouncer(o.saveDelay, e.write)
	e.saver.OnError(func(err error) {
		e.statusMu.Lock()
		fn := e.onSaveError
		e.statusMu.Unlock()
		if fn != nil {
			fn(err)
		}
	})
	return e
}

// Load replaces the state with the saved game, brought up to now. A missing
// or unreadable save leaves a fresh pet. Only storage failures are returned;
// the fresh pet is usable either way.
func (e *Engine) Load(ctx context.Context) error {
	data, err := e.store.Load(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.now()

	switch {
	case errors.Is(err, storage.ErrNotFound):
		log.Printf("No saved game, starting fresh")
		e.state = pet.NewGameState(now)
		return nil
	case err != nil:
		log.Printf("Error loading state: %v", err)
		e.state = pet.NewGameState(now)
		e.setStatus("Could not load saved game")
		return fmt.Errorf("load game: %w", err)
	}

	gs, err := pet.Restore(data, now)
	if err != nil {
		log.Printf("Discarding saved game: %v", err)
		e.state = pet.NewGameState(now)
		e.setStatus("Saved game was unreadable, starting fresh")
		return nil
	}
	e.state = gs
	log.Printf("Loaded %s (mood %s)", gs.Pet.Name, gs.Pet.Mood)
	return nil
}

// Snapshot returns a deep copy of the current state.
func (e *Engine) Snapshot() *pet.GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Relationship returns the current affinity score.
func (e *Engine) Relationship() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Relationship(e.now())
}

// Tick applies decay up to now.
func (e *Engine) Tick() {
	e.mutate(func(gs *pet.GameState, now time.Time) ai.Response {
		gs.Tick(now)
		return ai.Response{}
	})
}

// Feed gives the pet amount of food. The food's name may be empty.
func (e *Engine) Feed(amount int, food string) ai.Response {
	return e.mutate(func(gs *pet.GameState, now time.Time) ai.Response {
		gs.Feed(now, amount, food)
		return e.gen.Feed(gs, food)
	})
}

// Play plays a game worth amount happiness. The game's name may be empty.
func (e *Engine) Play(amount int, game string) ai.Response {
	return e.mutate(func(gs *pet.GameState, now time.Time) ai.Response {
		gs.Play(now, amount, game)
		return e.gen.Play(gs, game)
	})
}

// Pet pats the pet.
func (e *Engine) Pet() ai.Response {
	return e.mutate(func(gs *pet.GameState, now time.Time) ai.Response {
		gs.Pat(now)
		return e.gen.Pet(gs)
	})
}

// Clean bathes the pet.
func (e *Engine) Clean() ai.Response {
	return e.mutate(func(gs *pet.GameState, now time.Time) ai.Response {
		gs.Clean(now)
		return e.gen.Action(gs, "clean")
	})
}

// ToggleSleep puts the pet to bed or wakes it.
func (e *Engine) ToggleSleep() ai.Response {
	return e.mutate(func(gs *pet.GameState, now time.Time) ai.Response {
		if gs.ToggleSleep(now) {
			return e.gen.Action(gs, "sleep")
		}
		return e.gen.Action(gs, "wake")
	})
}

// GiveMedicine heals the pet whether or not it is sick.
func (e *Engine) GiveMedicine() ai.Response {
	return e.mutate(func(gs *pet.GameState, now time.Time) ai.Response {
		gs.GiveMedicine(now)
		return e.gen.Action(gs, "medicine")
	})
}

// Rename changes the pet's name. Blank names change nothing and report
// false.
func (e *Engine) Rename(name string) (ai.Response, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.state.Rename(name) {
		return ai.Response{Mood: e.state.Pet.Mood}, false
	}
	e.scheduleSave(e.now())
	return e.gen.Renamed(e.state), true
}

// AddItem puts a new item in the inventory.
func (e *Engine) AddItem(t pet.ItemTemplate) (pet.CustomItem, ai.Response) {
	var item pet.CustomItem
	resp := e.mutate(func(gs *pet.GameState, now time.Time) ai.Response {
		item = gs.AddItem(t)
		return e.gen.ItemAdded(gs, item)
	})
	return item, resp
}

// UseItem applies the inventory item with the given id or name. Unknown
// items change nothing and report false.
func (e *Engine) UseItem(key string) (ai.Response, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.now()

	found, ok := e.state.FindItem(key)
	if !ok {
		return ai.Response{Mood: e.state.Pet.Mood}, false
	}
	item, _ := e.state.UseItem(now, found.ID)
	e.scheduleSave(now)
	return e.gen.ItemUsed(e.state, item), true
}

// Talk handles one utterance from the owner. learned lists words a caller
// already detected in it; they are merged with the words the pet learns
// here. Blank input is ignored.
func (e *Engine) Talk(input string, learned []string) ai.Response {
	input = strings.TrimSpace(input)
	if input == "" {
		e.mu.Lock()
		defer e.mu.Unlock()
		return ai.Response{Mood: e.state.Pet.Mood}
	}

	return e.mutate(func(gs *pet.GameState, now time.Time) ai.Response {
		gs.AddConversation(now, pet.SpeakerUser, input)
		words := union(learned, gs.LearnWords(now, input, vocab.DefaultContext))
		if name, ok := vocab.ExtractName(input); ok {
			gs.Memory.Vocabulary.SetUserName(name)
			log.Printf("Owner introduced themselves as %q", name)
		}

		resp := e.gen.Reply(gs, input, words)
		gs.AddConversation(now, pet.SpeakerPet, resp.Message)
		gs.GameStats.ConversationsHad++
		gs.AddInteraction(now, pet.InteractionTalk, nil, input)
		return resp
	})
}

// Greeting is what the pet says when the owner comes back.
func (e *Engine) Greeting() ai.Response {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gen.Greeting(e.state, e.now())
}

// RandomThought is something the pet says unprompted.
func (e *Engine) RandomThought() ai.Response {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gen.RandomThought(e.state, e.now())
}

// Describe has the pet say how it is doing.
func (e *Engine) Describe() ai.Response {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gen.Status(e.state)
}

// Export returns the whole game as text.
func (e *Engine) Export() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return pet.Export(e.state)
}

// Import replaces the whole game with an exported one. Invalid text leaves
// the current game untouched. No time is applied to the imported game until
// the next tick.
func (e *Engine) Import(text string) error {
	gs, err := pet.Decode([]byte(text))
	if err != nil {
		log.Printf("Import rejected: %v", err)
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = gs
	e.scheduleSave(e.now())
	log.Printf("Imported %s", gs.Pet.Name)
	return nil
}

// Reset starts over with a fresh pet and deletes the saved game.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	e.state = pet.NewGameState(e.now())
	e.scheduleSave(e.now())
	e.mu.Unlock()

	// Write the fresh state first so no older pending snapshot can land
	// after the clear.
	if err := e.saver.Flush(ctx); err != nil {
		return err
	}
	if err := e.store.Clear(ctx); err != nil {
		e.setStatus("Failed to clear saved game")
		return fmt.Errorf("clear saved game: %w", err)
	}
	log.Printf("Game reset")
	return nil
}

// SetSaveDelay changes the save quiescence window.
func (e *Engine) SetSaveDelay(d time.Duration) {
	e.saver.SetDelay(d)
}

// OnSaveError registers a callback for failed background saves.
func (e *Engine) OnSaveError(fn func(error)) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.onSaveError = fn
}

// Status is a short message about persistence, empty when all is well.
func (e *Engine) Status() string {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	return e.status
}

// Flush writes any pending save now.
func (e *Engine) Flush(ctx context.Context) error {
	return e.saver.Flush(ctx)
}

// Close flushes and stops saving.
func (e *Engine) Close(ctx context.Context) error {
	return e.saver.Close(ctx)
}

// mutate runs fn on the state under the lock and schedules a save.
func (e *Engine) mutate(fn func(gs *pet.GameState, now time.Time) ai.Response) ai.Response {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.now()
	resp := fn(e.state, now)
	e.scheduleSave(now)
	return resp
}

// scheduleSave stamps and encodes the state. Callers hold mu.
func (e *Engine) scheduleSave(now time.Time) {
	e.state.GameStats.LastSave = clock.At(now)
	data, err := pet.Encode(e.state)
	if err != nil {
		log.Printf("Error encoding state: %v", err)
		e.setStatus("Failed to save")
		return
	}
	e.saver.Schedule(data)
}

func (e *Engine) write(ctx context.Context, data []byte) error {
	if err := e.store.Save(ctx, data); err != nil {
		e.setStatus("Failed to save")
		return fmt.Errorf("save game: %w", err)
	}
	e.setStatus("")
	return nil
}

func (e *Engine) setStatus(msg string) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.status = msg
}

// union appends the words of b missing from a.
func union(a, b []string) []string {
	if len(a) == 0 {
		return b
	}
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, w := range list {
			w = strings.ToLower(w)
			if !seen[w] {
				seen[w] = true
				out = append(out, w)
			}
		}
	}
	return out
}
