package tui

import (
	"context"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/gomvi/lifecycle"
)

// ToastDuration is how long a toast stays in the status line.
const ToastDuration = 2 * time.Second

// msgBuffer sizes the queue between screen observers and the app loop.
const msgBuffer = 64

// App hosts a stack of view-model screens in bubbletea.
type App struct {
	ctx     context.Context
	factory *Factory
	keys    *KeyRegistry
	logger  *slog.Logger
	msgs    chan tea.Msg

	stack     ScreenStack
	jump      jumpPrompt
	width     int
	height    int
	status    string
	statusErr bool
	toast     int
	quitting  bool
}

// New builds the app and pushes start. Cancelling ctx closes every screen's
// view-model.
func New(ctx context.Context, factory *Factory, keys *KeyRegistry, start string) (*App, error) {
	if keys == nil {
		keys = NewKeyRegistry()
	}
	logger := factory.Logger
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{
		ctx:     ctx,
		factory: factory,
		keys:    keys,
		logger:  logger,
		msgs:    make(chan tea.Msg, msgBuffer),
		width:   80,
		height:  24,
	}
	if start == "" {
		start = StartRoute
	}
	s, err := factory.Build(ctx, start)
	if err != nil {
		return nil, err
	}
	a.pushScreen(s)
	return a, nil
}

func (a *App) Init() tea.Cmd {
	return a.listen()
}

// listen waits for the next observer message.
func (a *App) listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-a.msgs:
			return msg
		case <-a.ctx.Done():
			return nil
		}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := a.update(msg)
	if _, ok := msg.(appMsg); ok {
		return a, tea.Batch(cmd, a.listen())
	}
	return a, cmd
}

func (a *App) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
	case tea.BlurMsg:
		if top := a.stack.Top(); top != nil {
			top.Owner().MoveTo(lifecycle.Started)
		}
	case tea.FocusMsg:
		if top := a.stack.Top(); top != nil {
			top.Owner().MoveTo(lifecycle.Resumed)
		}
	case StatusMsg:
		a.status, a.statusErr = msg.Text, msg.IsErr
	case stateMsg:
		if a.stack.find(msg.screen) != nil {
			msg.apply()
		}
	case navigateMsg:
		return a.navigate(msg)
	case toastMsg:
		if msg.text == "" {
			return nil
		}
		a.toast++
		token := a.toast
		a.status, a.statusErr = msg.text, false
		return tea.Tick(ToastDuration, func(time.Time) tea.Msg { return toastExpiredMsg{token: token} })
	case toastExpiredMsg:
		if msg.token == a.toast {
			a.status = ""
		}
	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return nil
}

func (a *App) navigate(msg navigateMsg) tea.Cmd {
	top := a.stack.Top()
	if top == nil || top.ID() != msg.screen {
		a.logger.Debug("tui: stale navigation ignored", "screen", msg.screen)
		return nil
	}
	switch {
	case msg.nav.Back:
		return a.back()
	case msg.nav.Push != "":
		return a.push(msg.nav.Push)
	}
	return nil
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return a.quit()
	}
	if a.jump.active {
		return a.handleJumpKey(msg)
	}
	action, ok := a.keys.Lookup(msg, a.activeScope())
	if !ok {
		return nil
	}
	if top := a.stack.Top(); top != nil && top.handle(action) {
		return nil
	}
	switch action {
	case actionQuit:
		return a.quit()
	case actionJump:
		a.jump.open()
	case actionBack:
		return a.back()
	}
	return nil
}

func (a *App) handleJumpKey(msg tea.KeyMsg) tea.Cmd {
	action, _ := a.keys.Lookup(msg, scopeJump)
	switch action {
	case actionCancel:
		a.jump.close()
	case actionConfirm:
		input := a.jump.input
		a.jump.close()
		route, ok := resolveRoute(input)
		if !ok {
			a.status, a.statusErr = "no route matches "+strings.TrimSpace(input), true
			return nil
		}
		return a.push(route)
	default:
		a.jump.edit(msg)
	}
	return nil
}

func (a *App) push(route string) tea.Cmd {
	s, err := a.factory.Build(a.ctx, route)
	if err != nil {
		a.status, a.statusErr = err.Error(), true
		return nil
	}
	a.pushScreen(s)
	a.status, a.statusErr = "", false
	return nil
}

func (a *App) pushScreen(s Screen) {
	s.start(a.ctx, a.msgs)
	a.stack.Push(s)
	a.logger.Debug("tui: pushed", "route", s.Route(), "depth", a.stack.Len())
}

// back pops the top screen. Leaving the last screen quits.
func (a *App) back() tea.Cmd {
	if a.stack.Len() <= 1 {
		return a.quit()
	}
	s := a.stack.Pop()
	s.close()
	a.logger.Debug("tui: popped", "route", s.Route(), "depth", a.stack.Len())
	return nil
}

func (a *App) quit() tea.Cmd {
	a.quitting = true
	a.Close()
	return tea.Quit
}

// Close tears down every screen, top first. It is safe to call twice.
func (a *App) Close() {
	for a.stack.Len() > 0 {
		a.stack.items[len(a.stack.items)-1].close()
		a.stack.items = a.stack.items[:len(a.stack.items)-1]
	}
}

func (a *App) activeScope() string {
	if a.jump.active {
		return scopeJump
	}
	if top := a.stack.Top(); top != nil {
		return top.Scope()
	}
	return scopeGlobal
}

// Route returns the route of the top screen.
func (a *App) Route() string {
	if top := a.stack.Top(); top != nil {
		return top.Route()
	}
	return ""
}

// Status returns the status line text.
func (a *App) Status() string { return a.status }

// Settle handles observer messages until none arrived for quiet or ctx ends.
// It lets callers without a bubbletea program drive the app. Commands
// returned by Update are not run.
func (a *App) Settle(ctx context.Context, quiet time.Duration) int {
	n := 0
	timer := time.NewTimer(quiet)
	defer timer.Stop()
	for {
		select {
		case msg := <-a.msgs:
			a.update(msg)
			n++
			timer.Reset(quiet)
		case <-timer.C:
			return n
		case <-ctx.Done():
			return n
		}
	}
}

func (a *App) View() string {
	if a.quitting {
		return "Bye\n"
	}
	header := renderHeader(a)
	status := renderStatus(a)
	footer := renderFooter(a)
	bodyHeight := max(0, a.height-lipgloss.Height(header)-lipgloss.Height(status)-lipgloss.Height(footer))

	var body string
	if top := a.stack.Top(); top != nil && bodyHeight > 0 {
		h := bodyHeight
		var prompt string
		if a.jump.active {
			prompt = renderJump(&a.jump, a.width)
			h = max(0, h-lipgloss.Height(prompt))
		}
		body = top.View(max(1, a.width), h)
		if prompt != "" {
			body = lipgloss.JoinVertical(lipgloss.Left, body, prompt)
		}
	}
	body = fitHeight(body, bodyHeight)
	view := strings.Join([]string{header, status, body, footer}, "\n")
	return appStyle.Width(max(1, a.width)).MaxWidth(max(1, a.width)).Render(fitHeight(view, max(1, a.height)))
}
