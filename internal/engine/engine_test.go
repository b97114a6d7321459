package engine

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"pixelpet/internal/pet"
	"pixelpet/internal/storage"
)

// testClock is a settable time source.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestEngine(t *testing.T, store storage.BlobStore, opts ...Option) (*Engine, *testClock) {
	clk := &testClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	if store == nil {
		store = storage.NewMemoryStore()
	}
	opts = append([]Option{
		WithClock(clk.Now),
		WithRand(rand.New(rand.NewSource(1))),
		WithSaveDelay(time.Hour),
	}, opts...)
	e := New(store, opts...)
	t.Cleanup(func() { e.Close(context.Background()) })
	return e, clk
}

func TestFeed(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	resp := e.Feed(25, "")
	gs := e.Snapshot()

	if gs.Pet.Hunger != 100 {
		t.Errorf("Expected hunger 100, got %d", gs.Pet.Hunger)
	}
	if gs.Pet.Health != pet.DefaultHealth+2 {
		t.Errorf("Expected health %d, got %d", pet.DefaultHealth+2, gs.Pet.Health)
	}
	if len(gs.Memory.Interactions) != 1 {
		t.Fatalf("Expected 1 interaction, got %d", len(gs.Memory.Interactions))
	}
	in := gs.Memory.Interactions[0]
	if in.Type != pet.InteractionFeed || in.Value == nil || *in.Value != 25 {
		t.Errorf("Expected feed interaction with value 25, got %+v", in)
	}
	if gs.Pet.Mood != pet.MoodOf(gs.Pet) {
		t.Errorf("Expected mood %s, got %s", pet.MoodOf(gs.Pet), gs.Pet.Mood)
	}
	if resp.Message == "" || resp.Mood != gs.Pet.Mood {
		t.Errorf("Expected a reply in the current mood, got %+v", resp)
	}
}

func TestGiveMedicine(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	gs := e.Snapshot()
	gs.Pet.Health = 50
	gs.Pet.IsSick = true
	text, err := pet.Export(gs)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Import(text); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	resp := e.GiveMedicine()
	got := e.Snapshot()
	if got.Pet.Health != 80 {
		t.Errorf("Expected health 80, got %d", got.Pet.Health)
	}
	if got.Pet.IsSick {
		t.Error("Expected pet to be cured")
	}
	if n := len(got.Memory.Interactions); n != 1 || got.Memory.Interactions[0].Type != pet.InteractionMedicine {
		t.Errorf("Expected one medicine interaction, got %+v", got.Memory.Interactions)
	}
	if resp.Message != "Thank you... I'm starting to feel better..." {
		t.Errorf("Unexpected medicine reply %q", resp.Message)
	}

	// Medicine is not gated on sickness.
	e.GiveMedicine()
	if got := e.Snapshot(); got.Pet.Health != 100 {
		t.Errorf("Expected health 100 after second dose, got %d", got.Pet.Health)
	}
}

func TestImportRejectsInvalidText(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"not json", "hello"},
		{"missing memory", `{"pet":{"name":"Bob"}}`},
		{"missing pet", `{"memory":{}}`},
		{"pet not an object", `{"pet":3,"memory":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t, nil)
			e.Feed(10, "Kibble")
			before, _ := e.Export()

			err := e.Import(tt.text)
			if !errors.Is(err, ErrInvalidSave) {
				t.Errorf("Expected ErrInvalidSave, got %v", err)
			}
			if after, _ := e.Export(); after != before {
				t.Error("Expected state to be unchanged after a rejected import")
			}
		})
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	a, _ := newTestEngine(t, nil)
	a.Feed(25, "Pizza")
	a.Play(20, "Fetch")
	a.Talk("call me Alex, you are awesome", nil)
	a.AddItem(pet.PresetItems[0])
	a.UseItem(pet.PresetItems[0].Name)

	text, err := a.Export()
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	b, _ := newTestEngine(t, nil)
	if err := b.Import(text); err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	again, err := b.Export()
	if err != nil {
		t.Fatal(err)
	}
	if again != text {
		t.Errorf("Expected identical export after import\nfirst:\n%s\nsecond:\n%s", text, again)
	}
}

func TestImportForcesAdultMale(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	text, _ := e.Export()
	text = strings.Replace(text, `"stage": "adult"`, `"stage": "baby"`, 1)
	text = strings.Replace(text, `"gender": "male"`, `"gender": "female"`, 1)

	if err := e.Import(text); err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	gs := e.Snapshot()
	if gs.Pet.Stage != pet.StageAdult || gs.Pet.Gender != pet.GenderMale {
		t.Errorf("Expected adult/male, got %s/%s", gs.Pet.Stage, gs.Pet.Gender)
	}
}

func TestInteractionLogEvictsOldest(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	for i := 0; i < pet.MaxInteractions; i++ {
		e.Pet()
	}
	second := e.Snapshot().Memory.Interactions[1].ID

	e.Pet()
	gs := e.Snapshot()
	if len(gs.Memory.Interactions) != pet.MaxInteractions {
		t.Errorf("Expected %d interactions, got %d", pet.MaxInteractions, len(gs.Memory.Interactions))
	}
	if gs.Memory.Interactions[0].ID != second {
		t.Error("Expected the oldest interaction to be evicted")
	}
	if gs.GameStats.TotalInteractions != pet.MaxInteractions+1 {
		t.Errorf("Expected %d total interactions, got %d", pet.MaxInteractions+1, gs.GameStats.TotalInteractions)
	}
}

func TestTalk(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	resp := e.Talk("my name is Sam and I love pizza", nil)
	gs := e.Snapshot()

	if gs.Memory.Vocabulary.UserName != "Sam" {
		t.Errorf("Expected user name Sam, got %q", gs.Memory.Vocabulary.UserName)
	}
	if len(resp.LearnedWords) != 7 {
		t.Errorf("Expected 7 learned words, got %v", resp.LearnedWords)
	}
	if gs.GameStats.WordsLearned != 7 || gs.Memory.Vocabulary.TotalWordsLearned != 7 {
		t.Errorf("Expected 7 words counted, got %d/%d", gs.GameStats.WordsLearned, gs.Memory.Vocabulary.TotalWordsLearned)
	}

	history := gs.Memory.ConversationHistory
	if len(history) != 2 {
		t.Fatalf("Expected 2 conversation entries, got %d", len(history))
	}
	if history[0].Speaker != pet.SpeakerUser || history[1].Speaker != pet.SpeakerPet {
		t.Errorf("Expected user then pet, got %s then %s", history[0].Speaker, history[1].Speaker)
	}
	if history[1].Message != resp.Message {
		t.Errorf("Expected pet entry %q, got %q", resp.Message, history[1].Message)
	}
	if gs.GameStats.ConversationsHad != 1 {
		t.Errorf("Expected 1 conversation, got %d", gs.GameStats.ConversationsHad)
	}
	if last, _ := gs.Memory.LastInteraction(); last.Type != pet.InteractionTalk {
		t.Errorf("Expected a talk interaction, got %s", last.Type)
	}

	// Repeating the utterance learns nothing new.
	resp = e.Talk("my name is Sam and I love pizza", nil)
	if len(resp.LearnedWords) != 0 {
		t.Errorf("Expected no new words, got %v", resp.LearnedWords)
	}
	if got := e.Snapshot().Memory.Vocabulary.TotalWordsLearned; got != 7 {
		t.Errorf("Expected total words to stay 7, got %d", got)
	}
}

func TestTalkMergesCallerWords(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	resp := e.Talk("hello friend", []string{"Hello", "Banana"})
	want := []string{"hello", "banana", "friend"}
	if len(resp.LearnedWords) != len(want) {
		t.Fatalf("Expected %v, got %v", want, resp.LearnedWords)
	}
	for i, w := range want {
		if resp.LearnedWords[i] != w {
			t.Errorf("Expected %v, got %v", want, resp.LearnedWords)
			break
		}
	}
}

func TestTalkIgnoresBlankInput(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	e.Talk("   ", nil)
	gs := e.Snapshot()
	if len(gs.Memory.ConversationHistory) != 0 || gs.GameStats.ConversationsHad != 0 {
		t.Error("Expected blank input to be ignored")
	}
}

func TestInvalidArgumentsAreNoOps(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	before, _ := e.Export()

	if _, ok := e.Rename("   "); ok {
		t.Error("Expected blank rename to fail")
	}
	if _, ok := e.UseItem("no-such-item"); ok {
		t.Error("Expected unknown item to fail")
	}
	if after, _ := e.Export(); after != before {
		t.Error("Expected state to be unchanged")
	}
}

func TestRenameAndItems(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	resp, ok := e.Rename("  Sir Barksalot III  ")
	if !ok {
		t.Fatal("Expected rename to succeed")
	}
	if name := e.Snapshot().Pet.Name; name != "Sir Barksalo" {
		t.Errorf("Expected truncated name, got %q", name)
	}
	if resp.Message != "My name is Sir Barksalo! Nice to meet you!" {
		t.Errorf("Unexpected rename reply %q", resp.Message)
	}

	apple, ok := pet.FindPreset("golden apple")
	if !ok {
		t.Fatal("Expected the Golden Apple preset")
	}
	item, _ := e.AddItem(apple)
	if _, ok := e.UseItem("GOLDEN APPLE"); !ok {
		t.Fatal("Expected item lookup by name")
	}
	if _, ok := e.UseItem(item.ID); !ok {
		t.Fatal("Expected item lookup by id")
	}
	gs := e.Snapshot()
	if gs.Inventory[0].UseCount != 2 {
		t.Errorf("Expected use count 2, got %d", gs.Inventory[0].UseCount)
	}
	if gs.GameStats.ItemsCollected != 1 {
		t.Errorf("Expected 1 item collected, got %d", gs.GameStats.ItemsCollected)
	}
}

func TestTickDecays(t *testing.T) {
	e, clk := newTestEngine(t, nil)
	clk.Advance(2 * time.Hour)
	e.Tick()

	gs := e.Snapshot()
	if want := pet.DefaultHunger - 6; gs.Pet.Hunger != want {
		t.Errorf("Expected hunger %d, got %d", want, gs.Pet.Hunger)
	}

	// A second tick at the same instant changes nothing.
	e.Tick()
	if again := e.Snapshot(); again.Pet.PetStats != gs.Pet.PetStats {
		t.Errorf("Expected no further decay, got %+v", again.Pet.PetStats)
	}
}

func TestDebouncedSave(t *testing.T) {
	store := storage.NewMemoryStore()
	e, _ := newTestEngine(t, store, WithSaveDelay(20*time.Millisecond))

	e.Feed(25, "")
	e.Play(20, "")
	e.Pet()

	deadline := time.Now().Add(2 * time.Second)
	for store.Saves() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(100 * time.Millisecond)
	if store.Saves() != 1 {
		t.Fatalf("Expected one coalesced save, got %d", store.Saves())
	}

	data, err := store.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	gs, err := pet.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(gs.Memory.Interactions) != 3 {
		t.Errorf("Expected the latest snapshot with 3 interactions, got %d", len(gs.Memory.Interactions))
	}
}

func TestLoad(t *testing.T) {
	t.Run("saved game", func(t *testing.T) {
		store := storage.NewMemoryStore()
		first, _ := newTestEngine(t, store)
		first.Rename("Biscuit")
		first.Feed(25, "Pizza")
		if err := first.Flush(context.Background()); err != nil {
			t.Fatal(err)
		}

		second, _ := newTestEngine(t, store)
		if err := second.Load(context.Background()); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		gs := second.Snapshot()
		if gs.Pet.Name != "Biscuit" || gs.Pet.Hunger != 100 {
			t.Errorf("Expected Biscuit at hunger 100, got %s at %d", gs.Pet.Name, gs.Pet.Hunger)
		}
	})

	t.Run("nothing saved", func(t *testing.T) {
		e, _ := newTestEngine(t, nil)
		if err := e.Load(context.Background()); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if gs := e.Snapshot(); gs.Pet.Name != pet.DefaultPetName {
			t.Errorf("Expected a fresh pet, got %s", gs.Pet.Name)
		}
	})

	t.Run("corrupt save", func(t *testing.T) {
		store := storage.NewMemoryStore()
		store.Save(context.Background(), []byte(`{"pet":`))
		e, _ := newTestEngine(t, store)
		e.Feed(10, "")

		if err := e.Load(context.Background()); err != nil {
			t.Fatalf("Expected corrupt save to be discarded, got %v", err)
		}
		gs := e.Snapshot()
		if gs.Pet.Hunger != pet.DefaultHunger || len(gs.Memory.Interactions) != 0 {
			t.Error("Expected a fresh game after a corrupt save")
		}
		if e.Status() == "" {
			t.Error("Expected a status message about the discarded save")
		}
	})

	t.Run("storage failure", func(t *testing.T) {
		boom := errors.New("connection refused")
		e, _ := newTestEngine(t, failingLoad{boom})
		if err := e.Load(context.Background()); !errors.Is(err, boom) {
			t.Errorf("Expected load error, got %v", err)
		}
		if gs := e.Snapshot(); gs.Pet.Name != pet.DefaultPetName {
			t.Error("Expected a usable fresh pet")
		}
	})
}

type failingLoad struct{ err error }

func (f failingLoad) Load(context.Context) ([]byte, error) { return nil, f.err }
func (f failingLoad) Save(context.Context, []byte) error   { return nil }
func (f failingLoad) Clear(context.Context) error          { return nil }

func TestSaveFailureStatus(t *testing.T) {
	store := storage.NewMemoryStore()
	e, _ := newTestEngine(t, store)
	boom := errors.New("disk full")
	store.FailWith(boom)

	e.Feed(10, "")
	if err := e.Flush(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Expected flush to report the save error, got %v", err)
	}
	if e.Status() == "" {
		t.Error("Expected a save failure status")
	}
	if got := e.Snapshot().Pet.Hunger; got != 90 {
		t.Errorf("Expected in-memory state to stay authoritative, got hunger %d", got)
	}

	store.FailWith(nil)
	e.Feed(10, "")
	if err := e.Flush(context.Background()); err != nil {
		t.Fatalf("Expected save to recover, got %v", err)
	}
	if e.Status() != "" {
		t.Errorf("Expected status to clear, got %q", e.Status())
	}
}

func TestOnSaveError(t *testing.T) {
	store := storage.NewMemoryStore()
	store.FailWith(errors.New("offline"))
	e, _ := newTestEngine(t, store, WithSaveDelay(10*time.Millisecond))

	errs := make(chan error, 1)
	e.OnSaveError(func(err error) {
		select {
		case errs <- err:
		default:
		}
	})
	e.Pet()

	select {
	case <-errs:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected the save error callback")
	}
}

func TestReset(t *testing.T) {
	store := storage.NewMemoryStore()
	e, _ := newTestEngine(t, store)
	e.Feed(25, "Pizza")
	e.Talk("hello there", nil)
	if err := e.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := e.Reset(context.Background()); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if _, err := store.Load(context.Background()); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected saved game to be cleared, got %v", err)
	}
	gs := e.Snapshot()
	if len(gs.Memory.Interactions) != 0 || len(gs.Memory.Vocabulary.Words) != 0 {
		t.Error("Expected a fresh game after reset")
	}
}

func TestSnapshotIsIsolated(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	e.Feed(10, "Pizza")

	gs := e.Snapshot()
	gs.Pet.Hunger = 0
	gs.Memory.FavoriteFoods[0] = "Mud"

	again := e.Snapshot()
	if again.Pet.Hunger == 0 || again.Memory.FavoriteFoods[0] != "Pizza" {
		t.Error("Expected snapshot changes not to leak into the engine")
	}
}

func TestConcurrentCommands(t *testing.T) {
	e, clk := newTestEngine(t, nil, WithSaveDelay(time.Millisecond))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				switch (i + j) % 5 {
				case 0:
					e.Feed(5, "Kibble")
				case 1:
					clk.Advance(time.Minute)
					e.Tick()
				case 2:
					e.Talk("good boy", nil)
				case 3:
					e.Snapshot()
				case 4:
					e.RandomThought()
				}
			}
		}(i)
	}
	wg.Wait()

	gs := e.Snapshot()
	for _, v := range []int{gs.Pet.Hunger, gs.Pet.Happiness, gs.Pet.Health, gs.Pet.Energy, gs.Pet.Hygiene} {
		if v < pet.MinStat || v > pet.MaxStat {
			t.Errorf("Stat out of bounds: %+v", gs.Pet.PetStats)
		}
	}
	if len(gs.Memory.Interactions) > pet.MaxInteractions {
		t.Errorf("Interaction log over cap: %d", len(gs.Memory.Interactions))
	}
}
