package pet

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ItemType is the kind of a custom item.
type ItemType string

const (
	ItemFood       ItemType = "food"
	ItemToy        ItemType = "toy"
	ItemAccessory  ItemType = "accessory"
	ItemBackground ItemType = "background"
	ItemDecoration ItemType = "decoration"
)

// MaxItemNameLength caps CustomItem.Name.
const MaxItemNameLength = 20

// ItemEffect is a partial map of stat deltas. Nil fields leave the stat alone.
type ItemEffect struct {
	Hunger    *int `json:"hunger,omitempty"`
	Happiness *int `json:"happiness,omitempty"`
	Health    *int `json:"health,omitempty"`
	Energy    *int `json:"energy,omitempty"`
	Hygiene   *int `json:"hygiene,omitempty"`
}

// Apply adds every present delta to stats, clamped to the stat range.
func (e ItemEffect) Apply(stats PetStats) PetStats {
	add := func(v int, d *int) int {
		if d == nil {
			return v
		}
		return clamp(v + *d)
	}
	return PetStats{
		Hunger:    add(stats.Hunger, e.Hunger),
		Happiness: add(stats.Happiness, e.Happiness),
		Health:    add(stats.Health, e.Health),
		Energy:    add(stats.Energy, e.Energy),
		Hygiene:   add(stats.Hygiene, e.Hygiene),
	}
}

// IsZero reports whether the effect changes nothing.
func (e ItemEffect) IsZero() bool {
	return e.Hunger == nil && e.Happiness == nil && e.Health == nil && e.Energy == nil && e.Hygiene == nil
}

// String renders the effect as "+50 hunger, -10 energy".
func (e ItemEffect) String() string {
	var parts []string
	for _, f := range []struct {
		name string
		d    *int
	}{
		{"hunger", e.Hunger},
		{"happiness", e.Happiness},
		{"health", e.Health},
		{"energy", e.Energy},
		{"hygiene", e.Hygiene},
	} {
		if f.d == nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("%+d %s", *f.d, f.name))
	}
	return strings.Join(parts, ", ")
}

func (e ItemEffect) clone() ItemEffect {
	cp := func(d *int) *int {
		if d == nil {
			return nil
		}
		v := *d
		return &v
	}
	return ItemEffect{
		Hunger:    cp(e.Hunger),
		Happiness: cp(e.Happiness),
		Health:    cp(e.Health),
		Energy:    cp(e.Energy),
		Hygiene:   cp(e.Hygiene),
	}
}

// CustomItem is an item in the inventory.
type CustomItem struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Type      ItemType   `json:"type"`
	PixelData string     `json:"pixelData"`
	Color     string     `json:"color"`
	Effect    ItemEffect `json:"effect"`
	Unlocked  bool       `json:"unlocked"`
	UseCount  int        `json:"useCount"`
}

func (c CustomItem) clone() CustomItem {
	c.Effect = c.Effect.clone()
	return c
}

// ItemTemplate describes an item before it is added to the inventory.
type ItemTemplate struct {
	Name      string
	Type      ItemType
	PixelData string
	Color     string
	Effect    ItemEffect
}

func delta(v int) *int { return &v }

// PresetItems are the items offered without an import.
var PresetItems = []ItemTemplate{
	{Name: "Golden Apple", Type: ItemFood, Color: "#FFD700", Effect: ItemEffect{Hunger: delta(50), Happiness: delta(20)}},
	{Name: "Magic Potion", Type: ItemFood, Color: "#9B59B6", Effect: ItemEffect{Health: delta(50), Energy: delta(30)}},
	{Name: "Pixel Ball", Type: ItemToy, Color: "#E74C3C", Effect: ItemEffect{Happiness: delta(40), Energy: delta(-10)}},
	{Name: "Crown", Type: ItemAccessory, Color: "#F1C40F", Effect: ItemEffect{Happiness: delta(30)}},
	{Name: "Sunglasses", Type: ItemAccessory, Color: "#2C3E50", Effect: ItemEffect{Happiness: delta(15)}},
	{Name: "Rainbow Background", Type: ItemBackground, Color: "#FF6B6B", Effect: ItemEffect{Happiness: delta(25)}},
}

// FindPreset looks up a preset by name, ignoring case.
func FindPreset(name string) (ItemTemplate, bool) {
	for _, t := range PresetItems {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return ItemTemplate{}, false
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
