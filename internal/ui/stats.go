package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"pixelpet/internal/pet"
)

// StatsModel is a simple Bubble Tea model for displaying stats
type StatsModel struct {
	State        *pet.GameState
	Relationship float64
	Now          time.Time
}

// Init implements tea.Model
func (m StatsModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m StatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, tea.Quit
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress {
			return m, tea.Quit
		}
	}
	return m, nil
}

// View implements tea.Model
func (m StatsModel) View() string {
	return RenderCard(m.State, m.Relationship, m.Now) + "\nPress ESC, click, or any key to close..."
}

// RenderCard draws the pet's stats card.
func RenderCard(gs *pet.GameState, relationship float64, now time.Time) string {
	p := gs.Pet
	row := func(label, value string) string {
		return fmt.Sprintf("║  %-11s %-25s║\n", label, value)
	}
	bar := func(value int) string {
		return fmt.Sprintf("[%s] %3d%%", statBar(value), value)
	}

	age := now.Sub(p.BirthDate.Time)
	favorite := "-"
	if len(gs.Memory.FavoriteFoods) > 0 {
		favorite = gs.Memory.FavoriteFoods[len(gs.Memory.FavoriteFoods)-1]
	}
	owner := gs.Memory.Vocabulary.UserName
	if owner == "" {
		owner = "-"
	}

	var s strings.Builder
	s.WriteString("╔════════════════════════════════════════╗\n")
	s.WriteString(fmt.Sprintf("║  %-38s║\n", p.Mood.Emoji()+" "+p.Name))
	s.WriteString("╠════════════════════════════════════════╣\n")
	s.WriteString(row("Status:", pet.GetStatusWithLabel(p)))
	s.WriteString(row("Bond:", fmt.Sprintf("%s (%.0f)", pet.RelationshipDescription(relationship), relationship)))
	s.WriteString(row("Age:", fmt.Sprintf("%d hours", int(age.Hours()))))
	s.WriteString(row("Owner:", owner))
	s.WriteString("║                                        ║\n")
	s.WriteString(row("Hunger:", bar(p.Hunger)))
	s.WriteString(row("Happiness:", bar(p.Happiness)))
	s.WriteString(row("Health:", bar(p.Health)))
	s.WriteString(row("Energy:", bar(p.Energy)))
	s.WriteString(row("Hygiene:", bar(p.Hygiene)))
	s.WriteString("║                                        ║\n")
	s.WriteString(row("Words:", fmt.Sprintf("%d learned", gs.Memory.Vocabulary.TotalWordsLearned)))
	s.WriteString(row("Favorite:", favorite))
	s.WriteString(row("Talks:", fmt.Sprintf("%d", gs.GameStats.ConversationsHad)))
	s.WriteString(row("Items:", fmt.Sprintf("%d", len(gs.Inventory))))
	s.WriteString("╚════════════════════════════════════════╝\n")
	return s.String()
}

// DisplayStats shows the stats card until a key is pressed.
func DisplayStats(gs *pet.GameState, relationship float64) error {
	model := StatsModel{State: gs, Relationship: relationship, Now: pet.TimeNow()}
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("stats display: %w", err)
	}
	return nil
}
