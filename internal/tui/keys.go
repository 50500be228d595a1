package tui

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type Action string

const (
	actionQuit     Action = "quit"
	actionJump     Action = "jump"
	actionBack     Action = "back"
	actionConfirm  Action = "confirm"
	actionCancel   Action = "cancel"
	actionToast    Action = "toast"
	actionDetails1 Action = "details_1"
	actionDetails2 Action = "details_2"
	actionCounter  Action = "counter"
	actionDraw     Action = "draw"
)

const (
	scopeGlobal  = "global"
	scopeChoice  = "choice"
	scopeCounter = "counter"
	scopeDetails = "details"
	scopeJump    = "jump"
)

type Binding struct {
	Action Action
	Scope  string
	Key    key.Binding
}

// KeyRegistry resolves key presses to actions. A binding of the active scope
// wins over a global one.
type KeyRegistry struct {
	bindings []*Binding
}

func NewKeyRegistry() *KeyRegistry {
	r := &KeyRegistry{}
	reg := func(scope string, action Action, keys []string, help string) {
		r.Register(scope, action, keys, help)
	}

	reg(scopeGlobal, actionQuit, []string{"q", "ctrl+c"}, "quit")
	reg(scopeGlobal, actionJump, []string{":"}, "jump")
	reg(scopeGlobal, actionBack, []string{"esc", "backspace"}, "back")

	reg(scopeChoice, actionToast, []string{"t"}, "toast")
	reg(scopeChoice, actionDetails1, []string{"1"}, "details #1")
	reg(scopeChoice, actionDetails2, []string{"2"}, "details #2")
	reg(scopeChoice, actionCounter, []string{"c"}, "counter")
	reg(scopeChoice, actionDraw, []string{"r", " "}, "draw")

	reg(scopeCounter, actionBack, []string{"esc", "b"}, "back")

	reg(scopeJump, actionConfirm, []string{"enter"}, "go")
	reg(scopeJump, actionCancel, []string{"esc"}, "cancel")
	return r
}

func (r *KeyRegistry) Register(scope string, action Action, keys []string, help string) {
	r.bindings = append(r.bindings, &Binding{
		Action: action,
		Scope:  scope,
		Key:    key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], help)),
	})
}

// Lookup returns the action bound to msg in scope, falling back to global
// bindings. The jump scope has no global fallback.
func (r *KeyRegistry) Lookup(msg tea.KeyMsg, scope string) (Action, bool) {
	for _, b := range r.bindings {
		if b.Scope == scope && key.Matches(msg, b.Key) {
			return b.Action, true
		}
	}
	if scope == scopeJump {
		return "", false
	}
	for _, b := range r.bindings {
		if b.Scope == scopeGlobal && key.Matches(msg, b.Key) {
			return b.Action, true
		}
	}
	return "", false
}

// Help returns the bindings shown in the footer for scope: scope bindings
// first, then global ones not shadowed by them.
func (r *KeyRegistry) Help(scope string) []key.Binding {
	var out []key.Binding
	seen := map[Action]bool{}
	for _, b := range r.bindings {
		if b.Scope == scope && b.Key.Enabled() {
			out = append(out, b.Key)
			seen[b.Action] = true
		}
	}
	if scope == scopeJump {
		return out
	}
	for _, b := range r.bindings {
		if b.Scope == scopeGlobal && !seen[b.Action] && b.Key.Enabled() {
			out = append(out, b.Key)
		}
	}
	return out
}

// keymapFile is the TOML layout of key overrides:
//
//	[[binding]]
//	scope = "choice"
//	action = "draw"
//	keys = ["n"]
type keymapFile struct {
	Bindings []keymapEntry `toml:"binding"`
}

type keymapEntry struct {
	Scope  string   `toml:"scope"`
	Action string   `toml:"action"`
	Keys   []string `toml:"keys"`
	Help   string   `toml:"help"`
}

// ErrUnknownBinding is returned for overrides naming no existing binding.
var ErrUnknownBinding = errors.New("tui: unknown key binding")

// LoadOverrides rebinds keys from a TOML file. A missing file is not an
// error. An entry with no keys disables the binding.
func (r *KeyRegistry) LoadOverrides(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read keymap: %w", err)
	}
	var file keymapFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse keymap %s: %w", path, err)
	}
	for _, e := range file.Bindings {
		idx := slices.IndexFunc(r.bindings, func(b *Binding) bool {
			return b.Scope == e.Scope && string(b.Action) == e.Action
		})
		if idx < 0 {
			return fmt.Errorf("%w: %s/%s", ErrUnknownBinding, e.Scope, e.Action)
		}
		b := r.bindings[idx]
		if len(e.Keys) == 0 {
			b.Key.SetEnabled(false)
			continue
		}
		help := e.Help
		if help == "" {
			help = b.Key.Help().Desc
		}
		b.Key.SetKeys(e.Keys...)
		b.Key.SetHelp(e.Keys[0], help)
		b.Key.SetEnabled(true)
	}
	return nil
}
