// Package chase is a short full-screen mini-game: the pet runs after a
// target and the owner watches. A catch counts as a play session.
package chase

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"pixelpet/internal/pet"
)

const (
	tickInterval   = 70 * time.Millisecond
	minVisibleRows = 6

	// CatchReward is the happiness a successful chase is worth.
	CatchReward = pet.DefaultPlayAmount
)

// Outcome is how a chase ended.
type Outcome int

const (
	Running Outcome = iota
	Caught
	Escaped
	Abandoned
)

func (o Outcome) String() string {
	switch o {
	case Caught:
		return "caught"
	case Escaped:
		return "escaped"
	case Abandoned:
		return "abandoned"
	}
	return "running"
}

// Target defines what the pet can chase.
type Target struct {
	Emoji string
	Name  string
	Speed int // frames per step
}

// Targets are the things the pet knows how to chase.
var Targets = map[string]Target{
	"butterfly": {Emoji: "🦋", Name: "Butterfly", Speed: 3},
	"ball":      {Emoji: "⚽", Name: "Ball", Speed: 4},
	"mouse":     {Emoji: "🐁", Name: "Mouse", Speed: 2},
	"frisbee":   {Emoji: "🥏", Name: "Frisbee", Speed: 3},
}

// TargetNames lists the keys of Targets in order.
func TargetNames() []string {
	names := make([]string, 0, len(Targets))
	for name := range Targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup finds a target by key, ignoring case.
func Lookup(name string) (Target, error) {
	t, ok := Targets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Target{}, fmt.Errorf("unknown target %q (try %s)", name, strings.Join(TargetNames(), ", "))
	}
	return t, nil
}

// chaseEmoji picks the pet's face from how close it is and how it feels.
func chaseEmoji(p pet.PetState, distX, distY int) string {
	switch {
	case absInt(distX) <= 2 && absInt(distY) <= 1:
		return "🤩"
	case p.IsSick:
		return "🤒"
	case p.Energy < pet.LowStatThreshold:
		return "😴"
	case p.Hunger < pet.LowStatThreshold:
		return "😋"
	case p.Happiness < pet.LowStatThreshold:
		return "😢"
	case p.Energy > pet.HighStatThreshold:
		return "🐕"
	}
	return "🐶"
}

// Pos is a cell on the field. X grows to the right, Y downwards.
type Pos struct {
	X, Y int
}

// Model is the Bubble Tea model for one chase.
type Model struct {
	Pet      pet.PetState
	Target   Target
	Width    int
	Height   int
	PetAt    Pos
	TargetAt Pos
	Frame    int
	Outcome  Outcome
}

type animTickMsg time.Time

// NewModel starts a chase of target a few cells ahead of the pet.
func NewModel(p pet.PetState, target Target) Model {
	return Model{
		Pet:      p,
		Target:   target,
		TargetAt: Pos{X: 5},
	}
}

// Run plays a chase in the alternate screen and reports how it ended.
func Run(p pet.PetState, target Target) (Outcome, error) {
	program := tea.NewProgram(NewModel(p, target), tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		return Abandoned, fmt.Errorf("chase: %w", err)
	}
	return final.(Model).Outcome, nil
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return animTickMsg(t)
	})
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tick()
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.Outcome = Abandoned
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.keepInside()
		return m, nil

	case animTickMsg:
		m.Frame++
		if !m.sized() {
			return m, tick()
		}
		if m.Outcome = m.step(); m.Outcome != Running {
			return m, tea.Quit
		}
		return m, tick()
	}

	return m, nil
}

// step advances the chase by one frame. The target moves every Speed
// frames, the pet every stride frames.
func (m *Model) step() Outcome {
	if m.Frame%m.Target.Speed == 0 && !m.fly() {
		return Escaped
	}
	if m.Frame%m.stride() == 0 {
		m.pursue()
	}
	if d := m.gap(); absInt(d.X) <= 1 && d.Y == 0 {
		return Caught
	}
	return Running
}

// fly moves the target one cell right along a sine wave. It reports false
// once the target reaches the right edge.
func (m *Model) fly() bool {
	m.TargetAt.X++
	if m.TargetAt.X >= m.maxX() {
		return false
	}
	rows := float64(m.visibleRows())
	m.TargetAt.Y = int(rows/2 + rows/3*math.Sin(float64(m.TargetAt.X)*0.2))
	m.keepInside()
	return true
}

// pursue moves the pet toward the target, staying a few cells behind it
// horizontally.
func (m *Model) pursue() {
	d := m.gap()
	if d.X > 3 {
		m.PetAt.X++
	}
	switch {
	case d.Y > 1:
		m.PetAt.Y++
	case d.Y < -1:
		m.PetAt.Y--
	}
	m.keepInside()
}

// stride is how many frames pass between pet moves. A tired pet is slower.
func (m Model) stride() int {
	if m.Pet.Energy < pet.LowStatThreshold {
		return 4
	}
	return 2
}

func (m Model) gap() Pos {
	return Pos{X: m.TargetAt.X - m.PetAt.X, Y: m.TargetAt.Y - m.PetAt.Y}
}

func (m Model) sized() bool {
	return m.Width > 0 && m.Height > 0
}

// View implements tea.Model
func (m Model) View() string {
	if !m.sized() {
		return "Initializing..."
	}

	d := m.gap()
	field := newCanvas(m.Width, m.visibleRows()-1)
	field.stamp(m.TargetAt, m.Target.Emoji, m.maxX())
	field.stamp(m.PetAt, chaseEmoji(m.Pet, d.X, d.Y), m.maxX())

	return field.String() + fmt.Sprintf("\n%s is chasing the %s! Press any key to stop",
		m.Pet.Name, strings.ToLower(m.Target.Name))
}

// canvas is a grid of cells, one rune each.
type canvas [][]rune

func newCanvas(width, height int) canvas {
	c := make(canvas, height)
	for y := range c {
		c[y] = []rune(strings.Repeat(" ", width))
	}
	return c
}

// stamp writes s starting at p. Sprites starting at or beyond limit, or off
// the grid, are skipped.
func (c canvas) stamp(p Pos, s string, limit int) {
	if p.Y < 0 || p.Y >= len(c) || p.X < 0 || p.X >= limit {
		return
	}
	row := c[p.Y]
	for i, r := range []rune(s) {
		if p.X+i < len(row) {
			row[p.X+i] = r
		}
	}
}

func (c canvas) String() string {
	var b strings.Builder
	for _, row := range c {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func (m *Model) keepInside() {
	rows := m.visibleRows()
	if rows < 1 {
		return
	}
	for _, p := range []*Pos{&m.PetAt, &m.TargetAt} {
		p.X = clamp(p.X, 0, m.maxX())
		p.Y = clamp(p.Y, 0, rows-1)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// visibleRows leaves room for the caption but never drops below
// minVisibleRows.
func (m Model) visibleRows() int {
	if m.Height <= 0 {
		return 0
	}
	return max(m.Height-2, minVisibleRows)
}

func (m Model) maxX() int {
	if m.Width <= 2 {
		return 0
	}
	return m.Width - 2
}
