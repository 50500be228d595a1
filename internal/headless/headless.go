// Package headless drives the example app without a terminal: a script of
// key presses is fed to the app and every resulting screen is logged.
package headless

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/jask/gomvi/internal/tui"
)

// DefaultQuiet is how long the runner waits for screens to settle after a
// step.
const DefaultQuiet = 100 * time.Millisecond

// ErrScript is returned for scripts that cannot be parsed.
var ErrScript = errors.New("headless: invalid script")

// Step is one scripted action: a key press or a pause.
type Step struct {
	Raw  string
	Key  tea.KeyMsg
	Wait time.Duration
}

var namedKeys = map[string]tea.KeyType{
	"esc":       tea.KeyEsc,
	"enter":     tea.KeyEnter,
	"space":     tea.KeySpace,
	"backspace": tea.KeyBackspace,
	"ctrl+c":    tea.KeyCtrlC,
	"tab":       tea.KeyTab,
}

// ParseScript splits a script such as "r t 1 esc wait:1.5s c b q" into
// steps. A token of one character is typed as is; "text:abc" types abc one
// rune at a time.
func ParseScript(script string) ([]Step, error) {
	var steps []Step
	for _, tok := range strings.FieldsFunc(script, func(r rune) bool { return r == ',' || r == ' ' || r == '\n' || r == '\t' }) {
		switch {
		case strings.HasPrefix(tok, "wait:"):
			d, err := time.ParseDuration(strings.TrimPrefix(tok, "wait:"))
			if err != nil || d < 0 {
				return nil, fmt.Errorf("%w: %q", ErrScript, tok)
			}
			steps = append(steps, Step{Raw: tok, Wait: d})
		case strings.HasPrefix(tok, "text:"):
			for _, r := range strings.TrimPrefix(tok, "text:") {
				steps = append(steps, Step{Raw: string(r), Key: tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}})
			}
		default:
			if kt, ok := namedKeys[tok]; ok {
				key := tea.KeyMsg{Type: kt}
				if kt == tea.KeySpace {
					key.Runes = []rune{' '}
				}
				steps = append(steps, Step{Raw: tok, Key: key})
				continue
			}
			if r := []rune(tok); len(r) == 1 {
				steps = append(steps, Step{Raw: tok, Key: tea.KeyMsg{Type: tea.KeyRunes, Runes: r}})
				continue
			}
			return nil, fmt.Errorf("%w: unknown key %q", ErrScript, tok)
		}
	}
	return steps, nil
}

// Runner feeds steps into an app.
type Runner struct {
	App    *tui.App
	Out    io.Writer
	Logger *slog.Logger
	Quiet  time.Duration
	// Views also prints the rendered screen without styling after each step.
	Views bool
}

// Run executes steps in order. It stops early when the app quits or ctx
// ends, and closes the app before returning.
func (r *Runner) Run(ctx context.Context, steps []Step) error {
	defer r.App.Close()
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	quiet := r.Quiet
	if quiet <= 0 {
		quiet = DefaultQuiet
	}

	r.App.Settle(ctx, quiet)
	r.report("start")
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if step.Wait > 0 {
			t := time.NewTimer(step.Wait)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		} else {
			r.App.Update(step.Key)
		}
		n := r.App.Settle(ctx, quiet)
		logger.Debug("headless: step", "step", step.Raw, "messages", n, "route", r.App.Route())
		r.report(step.Raw)
		if r.App.Route() == "" {
			return nil
		}
	}
	return nil
}

func (r *Runner) report(step string) {
	route := r.App.Route()
	if route == "" {
		route = "-"
	}
	fmt.Fprintf(r.Out, "%-8s %-12s %s\n", step, route, r.App.Status())
	if r.Views && route != "-" {
		for _, line := range strings.Split(ansi.Strip(r.App.View()), "\n") {
			if strings.TrimSpace(line) != "" {
				fmt.Fprintf(r.Out, "  | %s\n", strings.TrimRight(line, " "))
			}
		}
	}
}
