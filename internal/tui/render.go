package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jask/gomvi/internal/screens/choice"
	"github.com/jask/gomvi/internal/screens/counter"
	"github.com/jask/gomvi/internal/screens/details"
)

func renderChoice(s choice.ViewState, width, height int) string {
	body := lipgloss.JoinVertical(lipgloss.Center,
		cardStyle.Render("[t] Show toast"),
		cardStyle.Render("[1] Show details #1\n[2] Show details #2"),
		cardStyle.Render("[c] Go to counter"),
		cardStyle.Render(lipgloss.JoinVertical(lipgloss.Center,
			"[r] Draw a number",
			labelStyle.Render("Random number"),
			bigNumberStyle.Render(strconv.Itoa(s.RandomNumber)),
		)),
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body)
}

func renderCounter(s counter.ViewState, width, height int) string {
	body := lipgloss.JoinVertical(lipgloss.Center,
		labelStyle.Render("Counter"),
		bigNumberStyle.Render(strconv.Itoa(s.Count)),
		labelStyle.Render("[b] back"),
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body)
}

func renderDetails(s details.ViewState, width, height int) string {
	body := lipgloss.JoinVertical(lipgloss.Center,
		labelStyle.Render("Details"),
		bigNumberStyle.Render(s.Title),
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body)
}

func renderHeader(a *App) string {
	crumbs := make([]string, 0, a.stack.Len())
	for _, s := range a.stack.items {
		crumbs = append(crumbs, s.Title())
	}
	left := headerAppStyle.Render("gomvi")
	right := crumbStyle.Render(strings.Join(crumbs, " › "))
	line := left + "  " + right
	return renderBar(headerBarStyle, max(1, a.width), line)
}

func renderStatus(a *App) string {
	msg := strings.TrimSpace(a.status)
	if msg == "" {
		msg = "Ready"
	}
	if a.statusErr {
		return renderBar(statusErrBarStyle, max(1, a.width), msg)
	}
	return renderBar(statusBarStyle, max(1, a.width), msg)
}

func renderFooter(a *App) string {
	bindings := a.keys.Help(a.activeScope())
	space := lipgloss.NewStyle().Background(colorMantle).Render(" ")
	sep := lipgloss.NewStyle().Background(colorMantle).Render("  ")
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, keyStyle.Render(h.Key)+space+helpDescStyle.Render(h.Desc))
	}
	return renderBar(headerBarStyle, max(1, a.width), strings.Join(parts, sep))
}

func renderJump(j *jumpPrompt, width int) string {
	line := fmt.Sprintf("go to: %s▏", j.input)
	if hint := j.suggestion(); hint != "" && hint != j.input {
		line += labelStyle.Render("  → " + hint)
	}
	return jumpStyle.Width(max(10, width-4)).Render(ansi.Truncate(line, max(1, width-8), "…"))
}

func renderBar(style lipgloss.Style, width int, text string) string {
	line := ansi.Truncate(strings.ReplaceAll(text, "\n", " "), width, "")
	if w := ansi.StringWidth(line); w < width {
		line += strings.Repeat(" ", width-w)
	}
	return style.Render(line)
}

func fitHeight(s string, height int) string {
	if height <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
