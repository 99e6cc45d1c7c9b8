package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/vega/internal/config"
)

func renderDiff(lines []diffLine) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	addStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	rmStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	rendered := make([]string, 0, len(lines))
	for _, dl := range lines {
		switch dl.kind {
		case diffAdded:
			rendered = append(rendered, addStyle.Render("+ "+dl.text))
		case diffRemoved:
			rendered = append(rendered, rmStyle.Render("- "+dl.text))
		}
	}

	content := titleStyle.Render("Pending Changes") + "\n\n" + strings.Join(rendered, "\n")
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2).
		Render(content)
}

func renderSummary(cfg *config.Config, path string) string {
	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")).
		Width(18).
		Align(lipgloss.Right).
		PaddingRight(2)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Bold(true)

	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value)
	}

	lines := []string{
		renderNotice("Config saved to " + path),
		"",
		row("Cycle Hotkey", cfg.CycleHotkey),
		row("Promote Hotkey", cfg.PromoteHotkey),
		row("Excluded Apps", displayOrDefault(strings.Join(cfg.ExcludedApps, ", "), "(none)")),
		row("Log Level", cfg.LogLevel),
		row("Poll Interval", strconv.Itoa(cfg.PollIntervalMs)+"ms"),
		row("State File", displayOrDefault(cfg.StatePath, "(runtime dir)")),
	}
	return strings.Join(lines, "\n")
}

func renderNotice(msg string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true).Render(msg)
}

func displayOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
