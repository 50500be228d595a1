package tui

import (
	"strings"

	"github.com/agnivade/levenshtein"
	tea "github.com/charmbracelet/bubbletea"
)

// maxJumpDistance bounds how far a typed route may be from a known one.
const maxJumpDistance = 3

// jumpPrompt reads a route name and resolves typos to the closest route.
type jumpPrompt struct {
	active bool
	input  string
}

func (j *jumpPrompt) open() {
	j.active = true
	j.input = ""
}

func (j *jumpPrompt) close() {
	j.active = false
	j.input = ""
}

// edit applies a non-action key to the input.
func (j *jumpPrompt) edit(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyBackspace:
		if r := []rune(j.input); len(r) > 0 {
			j.input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		j.input += " "
	case tea.KeyRunes:
		j.input += string(msg.Runes)
	}
}

func (j *jumpPrompt) suggestion() string {
	route, _ := resolveRoute(j.input)
	return route
}

// resolveRoute maps input to a route. Input with a slash is a details route
// whose id is kept verbatim; other names match the closest static route.
func resolveRoute(input string) (string, bool) {
	in := strings.ToLower(strings.TrimSpace(input))
	if in == "" {
		return "", false
	}
	if name, id, ok := strings.Cut(in, "/"); ok {
		if id == "" || closest(name, []string{RouteDetails}) == "" {
			return "", false
		}
		return DetailsRoute(id), true
	}
	best := closest(in, []string{RouteChoice, RouteCounter})
	return best, best != ""
}

func closest(in string, candidates []string) string {
	best, bestDist := "", maxJumpDistance+1
	for _, c := range candidates {
		if strings.HasPrefix(c, in) {
			return c
		}
		if d := levenshtein.ComputeDistance(in, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
