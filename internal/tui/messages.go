package tui

import tea "github.com/charmbracelet/bubbletea"

// appMsg marks messages produced by screen observers. The app listens for the
// next one after handling each.
type appMsg interface {
	tea.Msg
	appMsg()
}

// stateMsg carries a view state into the screen that rendered it.
type stateMsg struct {
	screen string
	apply  func()
}

// navigateMsg asks the app to move away from screen.
type navigateMsg struct {
	screen string
	nav    Navigation
}

type toastMsg struct {
	screen string
	text   string
}

func (stateMsg) appMsg()    {}
func (navigateMsg) appMsg() {}
func (toastMsg) appMsg()    {}

type toastExpiredMsg struct{ token int }

// StatusMsg sets the status line.
type StatusMsg struct {
	Text  string
	IsErr bool
}

// Navigation is the host-level meaning of a navigation effect.
type Navigation struct {
	Push string
	Back bool
}

func PushRoute(route string) Navigation { return Navigation{Push: route} }

func Back() Navigation { return Navigation{Back: true} }
