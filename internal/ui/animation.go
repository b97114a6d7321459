package ui

import (
	"strings"
	"time"

	"pixelpet/internal/ai"
)

// AnimationType is the short scene played after an action.
type AnimationType int

const (
	AnimNone AnimationType = iota
	AnimEat
	AnimPlay
	AnimHappy
	AnimSleep
	AnimMedicine
	AnimClean
)

// AnimationFrameDuration is how long each frame displays
const AnimationFrameDuration = 200 * time.Millisecond

// defaultFace stands in for the pet when no mood face is known.
const defaultFace = "🐶"

// Animation holds the current animation state. Face is the pet's mood
// emoji when the animation started.
type Animation struct {
	Type      AnimationType
	Frame     int
	StartTime time.Time
	Face      string
}

// scene is one frame: a prop some distance from the pet, with an
// optional caption underneath. An empty pet is drawn with the mood face.
type scene struct {
	prop    string
	gap     int
	pet     string
	above   string
	caption string
}

func (s scene) render(face string) string {
	pet := s.pet
	if pet == "" {
		pet = face
	}
	var b strings.Builder
	b.WriteString("\n")
	if s.above != "" {
		b.WriteString("    " + s.above + "\n")
	}
	b.WriteString("  " + s.prop + strings.Repeat(" ", s.gap) + pet + "\n")
	if s.caption != "" {
		b.WriteString("    *" + s.caption + "*\n")
	}
	return b.String()
}

var animationScenes = map[AnimationType][]scene{
	AnimEat: {
		{prop: "🦴", gap: 8},
		{prop: "🦴", gap: 4},
		{prop: "🦴", gap: 1, caption: "sniff"},
		{gap: 3, caption: "chomp"},
		{gap: 3, pet: "😋", caption: "munch"},
	},
	AnimPlay: {
		{prop: "🎾", gap: 10},
		{prop: " 🎾", gap: 7, pet: "🐕"},
		{prop: "   🎾", gap: 4},
		{prop: "     🎾", gap: 1, pet: "🐕", caption: "boing"},
		{gap: 6, caption: "catch!"},
	},
	AnimHappy: {
		{gap: 3},
		{gap: 3, above: "💕"},
		{gap: 3, above: "💕 💕", pet: "🥰"},
		{gap: 3, above: "💕 💕 💕", pet: "🥰", caption: "wag wag"},
	},
	AnimSleep: {
		{gap: 3},
		{gap: 3, pet: "😪", above: "  z"},
		{gap: 3, pet: "😴", above: " z z"},
		{gap: 3, pet: "😴", above: "z z z", caption: "snore"},
	},
	AnimMedicine: {
		{prop: "💊", gap: 8, pet: "🤒"},
		{prop: "💊", gap: 4, pet: "🤒"},
		{prop: "💊", gap: 1, pet: "🤒", caption: "gulp"},
		{gap: 3, caption: "+30"},
		{gap: 3, pet: "😊", above: "✨ ✨", caption: "+30"},
	},
	AnimClean: {
		{gap: 3, caption: "~~~~"},
		{prop: "🫧", gap: 1, above: "🫧", caption: "~~~~"},
		{prop: "🧽", gap: 1, above: "🫧 🫧"},
		{gap: 3, above: "✨", caption: "sparkle"},
	},
}

// AnimationFor maps a response's animation hint to an animation.
func AnimationFor(hint string) AnimationType {
	switch hint {
	case ai.AnimationEat:
		return AnimEat
	case ai.AnimationPlay:
		return AnimPlay
	case ai.AnimationHappy:
		return AnimHappy
	}
	return AnimNone
}

// GetAnimationFrame draws the current frame. Past the end it keeps
// showing the last one.
func GetAnimationFrame(anim Animation) string {
	scenes := animationScenes[anim.Type]
	if len(scenes) == 0 {
		return ""
	}
	face := anim.Face
	if face == "" {
		face = defaultFace
	}
	i := anim.Frame
	if i >= len(scenes) {
		i = len(scenes) - 1
	}
	return scenes[i].render(face)
}

// IsAnimationComplete returns true if the animation has finished
func IsAnimationComplete(anim Animation) bool {
	return anim.Frame >= len(animationScenes[anim.Type])
}

// AnimationTotalFrames returns the number of frames for an animation type
func AnimationTotalFrames(animType AnimationType) int {
	return len(animationScenes[animType])
}
