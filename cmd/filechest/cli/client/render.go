package client

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/viper"
)

// placeholder is shown for files that have never been annotated.
const placeholder = "Enter a new note!"

type styles struct {
	label lipgloss.Style
	tag   lipgloss.Style
	muted lipgloss.Style
}

func newStyles() styles {
	if viper.GetBool("log.no_color") {
		plain := lipgloss.NewStyle()
		return styles{label: plain, tag: plain, muted: plain}
	}

	return styles{
		label: lipgloss.NewStyle().Bold(true),
		tag:   lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		muted: lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true),
	}
}

func (s styles) tags(tags []string) string {
	if len(tags) == 0 {
		return s.muted.Render("-")
	}

	rendered := make([]string, 0, len(tags))
	for _, tag := range tags {
		rendered = append(rendered, s.tag.Render(tag))
	}
	return strings.Join(rendered, ", ")
}

// summarize returns the first line of a note, cut to max runes.
func summarize(note string, max int) string {
	line, _, _ := strings.Cut(strings.TrimSpace(note), "\n")
	if utf8.RuneCountInString(line) <= max {
		return line
	}

	runes := []rune(line)
	return string(runes[:max-1]) + "…"
}
