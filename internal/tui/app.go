// Package tui is the interactive task view. It follows the bubbletea model:
// store operations run as commands off the UI goroutine, their results come
// back as messages, and View renders from the store's current list.
package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"taskr/internal/auth"
	"taskr/internal/logging"
	"taskr/internal/service"
)

// screen is which view is active.
type screen int

const (
	screenLogin screen = iota
	screenTasks
)

// MsgSessionExpired is shown when the server rejects the session.
const MsgSessionExpired = "Your session has expired. Please log in again."

// Options wires the view to the rest of the application.
type Options struct {
	Gate *auth.Gate
	// RequiresLogin is false for backends without a login (local).
	RequiresLogin bool
	// OpenTasks builds a task store for the current session.
	OpenTasks func(ctx context.Context) (service.Service, error)
	// Prefs holds the privacy notice acknowledgment. May be nil.
	Prefs service.Preferences
	Log   *slog.Logger
}

type storeOpenedMsg struct {
	svc service.Service
	err error
}

type loadedMsg struct{ err error }

type mutatedMsg struct {
	op  string
	err error
}

type authDoneMsg struct {
	res auth.Result
	err error
}

type noticeMsg struct{ show bool }

// App is the root model.
type App struct {
	ctx  context.Context
	opts Options
	log  *slog.Logger

	screen screen
	login  *loginForm
	tasks  *taskView
	svc    service.Service

	status string
	busy   bool
}

// New returns the model. The task screen is shown straight away when the
// gate is open or the backend has no login.
func New(ctx context.Context, opts Options) *App {
	a := &App{
		ctx:   ctx,
		opts:  opts,
		log:   logging.OrDiscard(opts.Log),
		login: newLoginForm(),
		tasks: newTaskView(),
	}
	if a.loggedIn() {
		a.screen = screenTasks
	}
	return a
}

func (a *App) loggedIn() bool {
	return !a.opts.RequiresLogin || a.opts.Gate.Authenticated()
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	if a.screen == screenTasks {
		return a.openStore()
	}
	return a.checkNotice()
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.tasks.setWidth(msg.Width)
		return a, nil

	case storeOpenedMsg:
		if msg.err != nil {
			a.busy = false
			return a, a.fail("open tasks", msg.err)
		}
		if a.screen != screenTasks {
			// Logged out while the store was opening.
			msg.svc.Close()
			return a, nil
		}
		a.closeStore()
		a.svc = msg.svc
		return a, a.load()

	case loadedMsg:
		a.busy = false
		if msg.err != nil {
			return a, a.fail("load tasks", msg.err)
		}
		a.status = ""
		return a, nil

	case mutatedMsg:
		a.busy = false
		if msg.err != nil {
			return a, a.fail(msg.op, msg.err)
		}
		a.status = ""
		return a, nil

	case authDoneMsg:
		a.busy = false
		a.login.applyResult(msg.res)
		if msg.err != nil && a.login.message == "" {
			a.login.message = msg.err.Error()
		}
		if msg.res.Authenticated {
			a.screen = screenTasks
			a.status = ""
			return a, a.openStore()
		}
		return a, nil

	case noticeMsg:
		a.login.showNotice = msg.show
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.screen == screenLogin {
			return a.updateLogin(msg)
		}
		return a.updateTasks(msg)
	}
	return a, nil
}

func (a *App) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := a.login
	switch msg.String() {
	case "esc":
		return a, tea.Quit
	case "tab", "down":
		f.next()
		return a, nil
	case "shift+tab", "up":
		f.prev()
		return a, nil
	case "ctrl+n":
		f.toggleMode()
		return a, nil
	case "ctrl+g":
		if f.signup && f.showNotice {
			f.showNotice = false
			return a, a.acceptNotice()
		}
		return a, nil
	case "enter":
		if f.focus == fieldEmail {
			f.next()
			return a, nil
		}
		if a.busy {
			return a, nil
		}
		return a, a.submit()
	}
	return a, f.update(msg)
}

func (a *App) updateTasks(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := a.tasks
	key := msg.String()

	switch key {
	case "esc":
		return a, tea.Quit
	case "tab":
		v.setFocusList(!v.focusList)
		return a, nil
	case "ctrl+l":
		return a, a.logout()
	case "ctrl+r":
		return a, a.load()
	}

	if !v.focusList {
		if key == "enter" {
			return a, a.create()
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return a, cmd
	}

	tasks := a.currentTasks()
	switch key {
	case "q":
		return a, tea.Quit
	case "up", "k":
		v.move(-1, len(tasks))
	case "down", "j":
		v.move(1, len(tasks))
	case "a", "i":
		v.setFocusList(false)
	case " ", "x":
		if t, ok := v.selected(tasks); ok {
			return a, a.mutate("toggle task", func(ctx context.Context, svc service.Service) error {
				return svc.Toggle(ctx, t.ID)
			})
		}
	case "d", "delete":
		if t, ok := v.selected(tasks); ok {
			return a, a.mutate("delete task", func(ctx context.Context, svc service.Service) error {
				return svc.Delete(ctx, t.ID)
			})
		}
	}
	return a, nil
}

// View implements tea.Model.
func (a *App) View() string {
	if a.screen == screenLogin {
		return a.login.view(a.busy)
	}
	return a.tasks.view(a.currentTasks(), a.status, a.busy, a.opts.RequiresLogin)
}

// Close releases the task store.
func (a *App) Close() error {
	return a.closeStore()
}

func (a *App) currentTasks() []service.Task {
	if a.svc == nil {
		return nil
	}
	return a.svc.Tasks()
}

func (a *App) closeStore() error {
	if a.svc == nil {
		return nil
	}
	err := a.svc.Close()
	a.svc = nil
	return err
}

// fail records err for display. A rejected session sends the user back to
// the login form.
func (a *App) fail(op string, err error) tea.Cmd {
	a.log.Warn(op+" failed", "err", err)
	if errors.Is(err, service.ErrUnauthorized) && a.opts.RequiresLogin {
		cmd := a.logout()
		a.login.message = MsgSessionExpired
		return cmd
	}
	a.status = err.Error()
	return nil
}

func (a *App) openStore() tea.Cmd {
	a.busy = true
	ctx, open := a.ctx, a.opts.OpenTasks
	return func() tea.Msg {
		svc, err := open(ctx)
		return storeOpenedMsg{svc: svc, err: err}
	}
}

func (a *App) load() tea.Cmd {
	if a.svc == nil {
		return nil
	}
	a.busy = true
	ctx, svc := a.ctx, a.svc
	return func() tea.Msg {
		_, err := svc.Load(ctx)
		return loadedMsg{err: err}
	}
}

func (a *App) create() tea.Cmd {
	text := a.tasks.input.Value()
	if strings.TrimSpace(text) == "" {
		return nil
	}
	a.tasks.input.Reset()
	return a.mutate("add task", func(ctx context.Context, svc service.Service) error {
		return svc.Create(ctx, text)
	})
}

// mutate runs op against the store off the UI goroutine.
func (a *App) mutate(name string, op func(context.Context, service.Service) error) tea.Cmd {
	if a.svc == nil {
		return nil
	}
	a.busy = true
	ctx, svc := a.ctx, a.svc
	return func() tea.Msg {
		return mutatedMsg{op: name, err: op(ctx, svc)}
	}
}

func (a *App) submit() tea.Cmd {
	a.busy = true
	ctx, gate := a.ctx, a.opts.Gate
	email, password, signup := a.login.email(), a.login.password(), a.login.signup
	return func() tea.Msg {
		var (
			res auth.Result
			err error
		)
		if signup {
			res, err = gate.Signup(ctx, email, password)
		} else {
			res, err = gate.Login(ctx, email, password)
		}
		return authDoneMsg{res: res, err: err}
	}
}

func (a *App) logout() tea.Cmd {
	if !a.opts.RequiresLogin {
		a.status = "This backend has no login."
		return nil
	}
	if err := a.opts.Gate.Logout(); err != nil {
		a.log.Warn("logout failed", "err", err)
	}
	if err := a.closeStore(); err != nil {
		a.log.Warn("close tasks failed", "err", err)
	}
	a.screen = screenLogin
	a.status = ""
	a.busy = false
	a.tasks = newTaskView()
	return a.checkNotice()
}

func (a *App) checkNotice() tea.Cmd {
	prefs := a.opts.Prefs
	if prefs == nil {
		return nil
	}
	ctx, log := a.ctx, a.log
	return func() tea.Msg {
		seen, err := prefs.CookieConsent(ctx)
		if err != nil {
			log.Warn("read cookie consent failed", "err", err)
			return noticeMsg{show: false}
		}
		return noticeMsg{show: !seen}
	}
}

func (a *App) acceptNotice() tea.Cmd {
	prefs := a.opts.Prefs
	if prefs == nil {
		return nil
	}
	ctx, log := a.ctx, a.log
	return func() tea.Msg {
		if err := prefs.AcceptCookieConsent(ctx); err != nil {
			log.Warn("store cookie consent failed", "err", err)
		}
		return noticeMsg{show: false}
	}
}

// Run starts the program on in/out and blocks until the user quits.
func Run(ctx context.Context, opts Options, in io.Reader, out io.Writer) error {
	app := New(ctx, opts)
	defer app.Close()

	p := tea.NewProgram(app,
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
