package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"pixelpet/internal/pet"
)

var gameStyles = struct {
	title   lipgloss.Style
	status  lipgloss.Style
	menu    lipgloss.Style
	menuBox lipgloss.Style
	stats   lipgloss.Style
	bubble  lipgloss.Style
	input   lipgloss.Style
	warn    lipgloss.Style
}{
	title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF75B5")).
		Padding(0, 1),

	status: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF75B5")).
		Width(40),

	stats: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF75B5")).
		Width(40),

	menu: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF75B5")),

	menuBox: lipgloss.NewStyle().
		Padding(0, 2),

	bubble: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Width(40),

	input: lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#FF75B5")).
		Padding(0, 1).
		Width(40),

	warn: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFB020")),
}

// moodColors tint the speech bubble border.
var moodColors = map[pet.Mood]lipgloss.Color{
	pet.MoodEcstatic: "#FFD700",
	pet.MoodHappy:    "#7CFC00",
	pet.MoodContent:  "#87CEEB",
	pet.MoodNeutral:  "#C0C0C0",
	pet.MoodSad:      "#6495ED",
	pet.MoodAngry:    "#FF4500",
	pet.MoodSick:     "#9ACD32",
	pet.MoodSleepy:   "#9370DB",
	pet.MoodHungry:   "#FFA500",
}

// View implements tea.Model
func (m Model) View() string {
	if m.Quitting {
		return "Thanks for playing!\n"
	}
	if m.Animation.Type != AnimNone {
		return m.renderAnimation()
	}

	sections := []string{
		m.renderTitle(),
		"",
		m.renderStats(),
		"",
		m.renderStatus(),
	}
	if bubble := m.renderSpeech(); bubble != "" {
		sections = append(sections, "", bubble)
	}
	if m.messageActive() {
		sections = append(sections, "", gameStyles.warn.Render(m.Message))
	}

	var body, help string
	switch m.Mode {
	case ModeTalk:
		body = m.renderInput("Say something to " + m.State.Pet.Name + ":")
		help = "enter to send • esc to cancel"
	case ModeRename:
		body = m.renderInput("New name:")
		help = "enter to rename • esc to cancel"
	case ModeItems:
		body = m.renderItems()
		help = "arrows to move • enter to use • esc to go back"
	default:
		body = m.renderMenu()
		help = "arrows to move • enter to select • t to talk • q to quit"
	}
	sections = append(sections, "", body, "", gameStyles.status.Render(help))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTitle() string {
	face := m.State.Pet.Mood.Emoji()
	return gameStyles.title.Render(face + " " + m.State.Pet.Name + " " + face)
}

// statBar draws a ten-cell bar for a stat in [0, 100].
func statBar(value int) string {
	filled := (value + 5) / 10
	if filled > 10 {
		filled = 10
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
}

func (m Model) renderStats() string {
	p := m.State.Pet
	stats := []struct {
		name  string
		value int
	}{
		{"Hunger", p.Hunger},
		{"Happiness", p.Happiness},
		{"Health", p.Health},
		{"Energy", p.Energy},
		{"Hygiene", p.Hygiene},
	}

	lines := []string{fmt.Sprintf("%-10s %s", "Mood:", p.Mood.Label())}
	for _, stat := range stats {
		line := fmt.Sprintf("%-10s %s %3d%%", stat.name+":", statBar(stat.value), stat.value)
		if stat.value < pet.LowStatThreshold {
			line = gameStyles.warn.Render(line)
		}
		lines = append(lines, line)
	}
	lines = append(lines, fmt.Sprintf("%-10s %d", "Words:", len(m.State.Memory.Vocabulary.Words)))

	return gameStyles.stats.Render(strings.Join(lines, "\n"))
}

func (m Model) renderStatus() string {
	return gameStyles.status.Render(fmt.Sprintf("Status: %s", pet.GetStatusWithLabel(m.State.Pet)))
}

func (m Model) renderSpeech() string {
	if !m.speaking() {
		return ""
	}
	color, ok := moodColors[m.Speech.Mood]
	if !ok {
		color = "#FF75B5"
	}
	text := m.Speech.Message
	if len(m.Speech.LearnedWords) > 0 {
		text += "\n📚 learned: " + strings.Join(m.Speech.LearnedWords, ", ")
	}
	return gameStyles.bubble.BorderForeground(color).Render(text)
}

func (m Model) renderMenu() string {
	var menuItems []string
	for i, choice := range menuChoices {
		if i == ChoiceSleep && m.State.Pet.IsSleeping {
			choice = "Wake"
		}
		cursor := " "
		if m.Choice == i {
			cursor = ">"
		}
		menuItems = append(menuItems, fmt.Sprintf("%s %s", cursor, choice))
	}
	return gameStyles.menuBox.Render(strings.Join(menuItems, "\n"))
}

func (m Model) renderInput(prompt string) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		gameStyles.menu.Render(prompt),
		gameStyles.input.Render(m.Input+"▏"),
	)
}

func (m Model) renderItems() string {
	var lines []string
	for i, entry := range m.itemEntries() {
		cursor := " "
		if m.ItemChoice == i {
			cursor = ">"
		}
		line := fmt.Sprintf("%s %-24s %s", cursor, entry.label, entry.effect)
		if entry.owned {
			line += fmt.Sprintf(" (used %d)", entry.uses)
		}
		lines = append(lines, line)
	}
	return gameStyles.menuBox.Render(strings.Join(lines, "\n"))
}

func (m Model) renderAnimation() string {
	animStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFD700")).
		Bold(true).
		Padding(1, 2)

	sections := []string{
		m.renderTitle(),
		"",
		animStyle.Render(GetAnimationFrame(m.Animation)),
	}
	if bubble := m.renderSpeech(); bubble != "" {
		sections = append(sections, "", bubble)
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) messageActive() bool {
	return m.Message != "" && pet.TimeNow().Before(m.MessageExpires)
}
