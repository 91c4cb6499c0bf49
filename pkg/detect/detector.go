// Package detect maps trigger phrases in user text to UI control
// actions. Matching is case-insensitive substring containment against a
// fixed table; there is no language understanding here. The detector is
// isolated behind an interface so a structured tool-calling
// implementation can replace it without touching event emission.
package detect

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// ActionKind tags the kind of UI mutation an action requests.
type ActionKind string

const (
	ActionChangeTheme ActionKind = "change_theme"
	ActionAddButton   ActionKind = "add_button"
)

// Action is one UI mutation derived from the latest user message.
type Action struct {
	Kind  ActionKind
	Color string // hex value, change_theme only
	Label string // button label, add_button only

	// Ack is a system prompt telling the model the mutation already
	// happened, so it can acknowledge it in its reply.
	Ack string
}

// Detector inspects the latest user message and returns zero or more
// UI control actions. Implementations must be side-effect free.
type Detector interface {
	Detect(text string) []Action
}

// colorEntry maps a spoken color phrase to its theme hex value.
type colorEntry struct {
	keyword string
	hex     string
}

// Shaded phrases come before bare names so "light green" resolves to
// its own value instead of matching "green" first.
var colorTable = []colorEntry{
	{"light orange", "#FFB347"},
	{"light green", "#90EE90"},
	{"light blue", "#87CEEB"},
	{"light red", "#FF6B6B"},
	{"light purple", "#DDA0DD"},
	{"light pink", "#FFB6C1"},
	{"light yellow", "#FFFFE0"},
	{"dark green", "#006400"},
	{"dark blue", "#00008B"},
	{"dark red", "#8B0000"},
	{"dark purple", "#4B0082"},
	{"dark orange", "#FF8C00"},
	{"green", "#22c55e"},
	{"blue", "#646cff"},
	{"red", "#ef4444"},
	{"purple", "#a855f7"},
	{"orange", "#f97316"},
	{"pink", "#ec4899"},
	{"yellow", "#eab308"},
	{"cyan", "#06b6d4"},
	{"teal", "#14b8a6"},
}

// DefaultButtonLabel is used when no label can be extracted from the
// message.
const DefaultButtonLabel = "Test"

var (
	quotedLabelPattern = regexp.MustCompile(`["']([^"']+)["']`)
	namedLabelPattern  = regexp.MustCompile(`button (?:called|named) (\w+)`)
)

// KeywordDetector is the fixed-table substring implementation of
// Detector.
type KeywordDetector struct{}

func NewKeywordDetector() *KeywordDetector {
	return &KeywordDetector{}
}

// Detect returns the UI actions triggered by text. At most one theme
// change and one button add are returned, in that order. No match
// yields nil.
func (d *KeywordDetector) Detect(text string) []Action {
	lowered := strings.ToLower(text)

	var actions []Action

	if strings.Contains(lowered, "color") {
		for _, entry := range colorTable {
			if strings.Contains(lowered, entry.keyword) {
				actions = append(actions, Action{
					Kind:  ActionChangeTheme,
					Color: entry.hex,
					Ack: fmt.Sprintf(
						"[SYSTEM: You have successfully changed the UI color to %s. Acknowledge this change briefly and naturally in your response.]",
						entry.keyword),
				})
				break
			}
		}
	}

	if (strings.Contains(lowered, "add") || strings.Contains(lowered, "create")) && strings.Contains(lowered, "button") {
		label := extractButtonLabel(text, lowered)
		actions = append(actions, Action{
			Kind:  ActionAddButton,
			Label: label,
			Ack: fmt.Sprintf(
				"[SYSTEM: You have successfully added a '%s' button to the UI. Acknowledge this briefly in your response.]",
				label),
		})
	}

	return actions
}

// extractButtonLabel pulls a label out of the message: quoted text
// first, then "button called X" / "button named X", falling back to the
// default label.
func extractButtonLabel(original, lowered string) string {
	if match := quotedLabelPattern.FindStringSubmatch(original); match != nil {
		return match[1]
	}
	if match := namedLabelPattern.FindStringSubmatch(lowered); match != nil {
		return capitalize(match[1])
	}
	return DefaultButtonLabel
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	runes := []rune(word)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

var _ Detector = (*KeywordDetector)(nil)
