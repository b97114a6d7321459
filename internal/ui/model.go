package ui

import (
	"math/rand"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"pixelpet/internal/ai"
	"pixelpet/internal/config"
	"pixelpet/internal/engine"
	"pixelpet/internal/pet"
)

const (
	speechDuration  = 5 * time.Second
	messageDuration = 3 * time.Second
	maxInputLength  = 200
)

// Mode is what the keyboard currently drives.
type Mode int

const (
	ModeMenu Mode = iota
	ModeTalk
	ModeRename
	ModeItems
)

// Menu entries, in display order.
const (
	ChoiceFeed = iota
	ChoicePlay
	ChoicePet
	ChoiceClean
	ChoiceSleep
	ChoiceMedicine
	ChoiceTalk
	ChoiceItems
	ChoiceRename
	ChoiceQuit
)

var menuChoices = []string{"Feed", "Play", "Pet", "Clean", "Sleep", "Medicine", "Talk", "Items", "Rename", "Quit"}

// Settings are the timers that drive the pet between key presses.
type Settings struct {
	TickInterval    time.Duration
	ThoughtInterval time.Duration
	ThoughtChance   float64
	Rand            ai.Rand
}

// SettingsFrom takes the timer settings from a config.
func SettingsFrom(cfg config.Config, r ai.Rand) Settings {
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return Settings{
		TickInterval:    cfg.TickInterval.Duration,
		ThoughtInterval: cfg.ThoughtInterval.Duration,
		ThoughtChance:   cfg.ThoughtChance,
		Rand:            r,
	}
}

// Model is the main game screen.
type Model struct {
	Engine   *engine.Engine
	Settings Settings

	State          *pet.GameState
	Mode           Mode
	Choice         int
	ItemChoice     int
	Input          string
	Speech         ai.Response
	SpeechExpires  time.Time
	Message        string
	MessageExpires time.Time
	Animation      Animation
	Quitting       bool
}

type tickMsg time.Time
type thoughtMsg time.Time
type animTickMsg struct {
	started time.Time
}

// ConfigMsg carries a reloaded config into a running program.
type ConfigMsg config.Config

// SaveErrorMsg reports a failed background save.
type SaveErrorMsg struct {
	Err error
}

// NewModel creates the game screen. The pet greets the owner straight away.
func NewModel(e *engine.Engine, s Settings) Model {
	m := Model{Engine: e, Settings: s}
	m.refresh()
	m.say(e.Greeting())
	return m
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(m.Settings.TickInterval), thought(m.Settings.ThoughtInterval))
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func thought(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return thoughtMsg(t)
	})
}

func animTick(start time.Time) tea.Cmd {
	return tea.Tick(AnimationFrameDuration, func(t time.Time) tea.Msg {
		return animTickMsg{started: start}
	})
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m.quit()
		}
		// While an animation is playing, ignore inputs except quit keys
		if m.Animation.Type != AnimNone {
			if m.Mode == ModeMenu && msg.String() == "q" {
				return m.quit()
			}
			return m, nil
		}
		switch m.Mode {
		case ModeTalk, ModeRename:
			return m.updateInput(msg)
		case ModeItems:
			return m.updateItems(msg)
		}
		return m.updateMenu(msg)

	case tickMsg:
		m.Engine.Tick()
		m.refresh()
		if status := m.Engine.Status(); status != "" {
			m.setMessage("⚠️ " + status)
		}
		return m, tick(m.Settings.TickInterval)

	case thoughtMsg:
		var cmd tea.Cmd
		if !m.State.Pet.IsSleeping && !m.speaking() && m.Settings.Rand.Float64() < m.Settings.ThoughtChance {
			cmd = m.say(m.Engine.RandomThought())
		}
		return m, tea.Batch(cmd, thought(m.Settings.ThoughtInterval))

	case ConfigMsg:
		cfg := config.Config(msg)
		m.Engine.SetSaveDelay(cfg.SaveDelay.Duration)
		m.Settings.TickInterval = cfg.TickInterval.Duration
		m.Settings.ThoughtInterval = cfg.ThoughtInterval.Duration
		m.Settings.ThoughtChance = cfg.ThoughtChance
		m.setMessage("⚙️ Settings reloaded")
		return m, nil

	case SaveErrorMsg:
		m.setMessage("⚠️ Failed to save")
		return m, nil

	case animTickMsg:
		// Drop ticks that belong to an older animation
		if m.Animation.Type == AnimNone || !m.Animation.StartTime.Equal(msg.started) {
			return m, nil
		}
		m.Animation.Frame++
		if IsAnimationComplete(m.Animation) {
			m.Animation = Animation{}
			return m, nil
		}
		return m, animTick(m.Animation.StartTime)
	}

	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.Quitting = true
	return m, tea.Quit
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m.quit()
	case "up", "k":
		if m.Choice > 0 {
			m.Choice--
		}
	case "down", "j":
		if m.Choice < len(menuChoices)-1 {
			m.Choice++
		}
	case "t":
		m.Mode, m.Input = ModeTalk, ""
	case "enter", " ":
		return m.choose()
	}
	return m, nil
}

// choose runs the selected menu entry. Eligibility checks live here; the
// engine itself accepts every action.
func (m Model) choose() (tea.Model, tea.Cmd) {
	p := m.State.Pet
	asleep := p.IsSleeping && m.Choice != ChoiceSleep && m.Choice != ChoiceQuit

	var cmd tea.Cmd
	switch {
	case asleep:
		m.setMessage("💤 Shh... " + p.Name + " is sleeping")
	case m.Choice == ChoiceFeed:
		cmd = m.say(m.Engine.Feed(pet.DefaultFeedAmount, pet.DefaultFeedName))
	case m.Choice == ChoicePlay:
		cmd = m.say(m.Engine.Play(pet.DefaultPlayAmount, pet.DefaultPlayName))
	case m.Choice == ChoicePet:
		cmd = m.say(m.Engine.Pet())
	case m.Choice == ChoiceClean:
		cmd = m.sayWith(m.Engine.Clean(), AnimClean)
	case m.Choice == ChoiceSleep:
		resp := m.Engine.ToggleSleep()
		anim := AnimNone
		if !p.IsSleeping {
			anim = AnimSleep
		}
		cmd = m.sayWith(resp, anim)
	case m.Choice == ChoiceMedicine:
		if !p.IsSick {
			m.setMessage("💊 " + p.Name + " isn't sick!")
			break
		}
		cmd = m.sayWith(m.Engine.GiveMedicine(), AnimMedicine)
	case m.Choice == ChoiceTalk:
		m.Mode, m.Input = ModeTalk, ""
	case m.Choice == ChoiceItems:
		m.Mode, m.ItemChoice = ModeItems, 0
	case m.Choice == ChoiceRename:
		m.Mode, m.Input = ModeRename, ""
	case m.Choice == ChoiceQuit:
		return m.quit()
	}
	m.refresh()
	return m, cmd
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.Mode, m.Input = ModeMenu, ""
	case tea.KeyBackspace:
		if r := []rune(m.Input); len(r) > 0 {
			m.Input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.appendInput(" ")
	case tea.KeyRunes:
		m.appendInput(string(msg.Runes))
	case tea.KeyEnter:
		return m.submitInput()
	}
	return m, nil
}

func (m *Model) appendInput(s string) {
	if len([]rune(m.Input))+len([]rune(s)) <= maxInputLength {
		m.Input += s
	}
}

func (m Model) submitInput() (tea.Model, tea.Cmd) {
	input := m.Input
	mode := m.Mode
	m.Mode, m.Input = ModeMenu, ""

	var cmd tea.Cmd
	switch mode {
	case ModeTalk:
		if input != "" {
			cmd = m.say(m.Engine.Talk(input, nil))
		}
	case ModeRename:
		if resp, ok := m.Engine.Rename(input); ok {
			cmd = m.say(resp)
		} else {
			m.setMessage("✏️ A name can't be blank")
		}
	}
	m.refresh()
	return m, cmd
}

// itemEntries lists the inventory followed by presets that can be added.
func (m Model) itemEntries() []itemEntry {
	var entries []itemEntry
	for _, item := range m.State.Inventory {
		entries = append(entries, itemEntry{owned: true, id: item.ID, label: item.Name, effect: item.Effect.String(), uses: item.UseCount})
	}
	for _, t := range pet.PresetItems {
		entries = append(entries, itemEntry{template: t, label: "Add " + t.Name, effect: t.Effect.String()})
	}
	return entries
}

type itemEntry struct {
	owned    bool
	id       string
	template pet.ItemTemplate
	label    string
	effect   string
	uses     int
}

func (m Model) updateItems(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := m.itemEntries()
	switch msg.String() {
	case "esc", "q":
		m.Mode = ModeMenu
	case "up", "k":
		if m.ItemChoice > 0 {
			m.ItemChoice--
		}
	case "down", "j":
		if m.ItemChoice < len(entries)-1 {
			m.ItemChoice++
		}
	case "enter", " ":
		if m.ItemChoice >= len(entries) {
			return m, nil
		}
		entry := entries[m.ItemChoice]
		var cmd tea.Cmd
		if entry.owned {
			if resp, ok := m.Engine.UseItem(entry.id); ok {
				cmd = m.say(resp)
			}
		} else {
			_, resp := m.Engine.AddItem(entry.template)
			cmd = m.say(resp)
		}
		m.Mode = ModeMenu
		m.refresh()
		return m, cmd
	}
	return m, nil
}

func (m *Model) refresh() {
	m.State = m.Engine.Snapshot()
}

// say shows a response and starts the animation its hint asks for.
func (m *Model) say(resp ai.Response) tea.Cmd {
	return m.sayWith(resp, AnimationFor(resp.Animation))
}

func (m *Model) sayWith(resp ai.Response, anim AnimationType) tea.Cmd {
	m.refresh()
	if resp.Message == "" {
		return nil
	}
	m.Speech = resp
	m.SpeechExpires = pet.TimeNow().Add(speechDuration)
	if anim == AnimNone {
		return nil
	}
	m.Animation = Animation{
		Type:      anim,
		StartTime: pet.TimeNow(),
		Face:      resp.Mood.Emoji(),
	}
	return animTick(m.Animation.StartTime)
}

func (m Model) speaking() bool {
	return m.Speech.Message != "" && pet.TimeNow().Before(m.SpeechExpires)
}

func (m *Model) setMessage(msg string) {
	m.Message = msg
	m.MessageExpires = pet.TimeNow().Add(messageDuration)
}
