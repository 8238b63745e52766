package desktop

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/deskfolio/internal/domain/catalog"
	"github.com/GriffinCanCode/deskfolio/internal/domain/session"
	"github.com/GriffinCanCode/deskfolio/internal/domain/terminal"
	"github.com/GriffinCanCode/deskfolio/internal/domain/window"
	"github.com/GriffinCanCode/deskfolio/internal/shared/clock"
)

// DefaultCloseDelay is how long a closing window animates out before removal
const DefaultCloseDelay = 300 * time.Millisecond

// Recorder receives desktop metrics
type Recorder interface {
	RecordCommand(command, outcome string, duration time.Duration)
	RecordTransition(from, to string)
	SetDesktops(n int)
}

type nopRecorder struct{}

func (nopRecorder) RecordCommand(string, string, time.Duration) {}
func (nopRecorder) RecordTransition(string, string)             {}
func (nopRecorder) SetDesktops(int)                             {}

// Options configures a desktop
type Options struct {
	Viewport   window.Viewport
	Delays     session.Delays
	CloseDelay time.Duration
	Owner      string
	Scheduler  clock.Scheduler
	Evaluator  terminal.Evaluator
	Logger     *zap.Logger
	Recorder   Recorder
}

func (o Options) scheduler() clock.Scheduler {
	if o.Scheduler == nil {
		return clock.Real{}
	}
	return o.Scheduler
}

// Desktop is one running shell: a session, its windows, the context menu
// and the terminal. Every mutation goes through Dispatch or a scheduled
// transition and is serialized by mu.
type Desktop struct {
	mu         sync.Mutex
	id         string
	machine    *session.Machine
	windows    *window.Manager
	term       *terminal.Terminal
	catalog    *catalog.Catalog
	menu       ContextMenu
	hub        *Hub[View]
	sched      clock.Scheduler
	closeDelay time.Duration
	owner      string
	revision   uint64
	lastActive time.Time
	stopped    bool
	logger     *zap.Logger
	metrics    Recorder
}

// New creates a locked desktop showing apps from cat
func New(id string, cat *catalog.Catalog, opts Options) *Desktop {
	if opts.Scheduler == nil {
		opts.Scheduler = clock.Real{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	if opts.Delays == (session.Delays{}) {
		opts.Delays = session.DefaultDelays()
	}
	if opts.CloseDelay <= 0 {
		opts.CloseDelay = DefaultCloseDelay
	}

	d := &Desktop{
		id:         id,
		windows:    window.NewManager(opts.Viewport),
		catalog:    cat,
		hub:        NewHub[View](),
		sched:      opts.Scheduler,
		closeDelay: opts.CloseDelay,
		owner:      opts.Owner,
		lastActive: opts.Scheduler.Now(),
		logger:     opts.Logger.With(zap.String("desktop_id", id)),
		metrics:    opts.Recorder,
	}
	d.machine = session.NewMachine(lockedScheduler{d}, opts.Delays, d.onTransition)
	d.term = terminal.New(terminalHost{d}, opts.Evaluator)
	return d
}

// ID returns the desktop id
func (d *Desktop) ID() string {
	return d.id
}

// View returns the current render state
func (d *Desktop) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.view()
}

// Subscribe streams a view after every change. Attaching and detaching
// both count as activity.
func (d *Desktop) Subscribe() (<-chan View, func()) {
	d.touch()
	views, unsubscribe := d.hub.Subscribe()
	return views, func() {
		unsubscribe()
		d.touch()
	}
}

// Watched reports whether any subscriber is attached
func (d *Desktop) Watched() bool {
	return d.hub.Len() > 0
}

func (d *Desktop) touch() {
	d.mu.Lock()
	d.lastActive = d.sched.Now()
	d.mu.Unlock()
}

// LastActive returns the time of the last accepted command or subscriber change
func (d *Desktop) LastActive() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastActive
}

// Stop cancels pending transitions and disconnects subscribers
func (d *Desktop) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()

	d.machine.Stop()
	d.hub.Close()
}

// Dispatch applies one command and returns the resulting view.
// Desktop commands are refused with ErrLocked unless the session is unlocked
// and idle. Commands naming apps outside the catalog are accepted and ignored.
func (d *Desktop) Dispatch(ctx context.Context, cmd Command) (View, error) {
	start := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	changed, err := d.dispatch(ctx, cmd)
	d.metrics.RecordCommand(string(cmd.Type), outcome(err), time.Since(start))
	if err != nil {
		if !errors.Is(err, ErrLocked) {
			d.logger.Debug("Command rejected",
				zap.String("command", string(cmd.Type)),
				zap.Error(err))
		}
		return d.view(), err
	}

	d.lastActive = d.sched.Now()
	if changed {
		d.changed()
	}
	return d.view(), nil
}

// dispatch must hold d.mu
func (d *Desktop) dispatch(ctx context.Context, cmd Command) (bool, error) {
	if d.stopped {
		return false, ErrNotFound
	}
	if err := cmd.Validate(); err != nil {
		return false, err
	}
	if cmd.Gated() && !d.machine.Interactive() {
		return false, ErrLocked
	}

	switch cmd.Type {
	case CmdUnlock:
		return d.machine.Unlock(), nil
	case CmdLock:
		return d.machine.Lock(), nil
	case CmdKey:
		return d.machine.PressKey(cmd.Key), nil
	case CmdPowerRequest:
		return d.machine.RequestPower(session.PowerAction(cmd.Action)), nil
	case CmdPowerConfirm:
		return d.machine.ConfirmPower(), nil
	case CmdPowerCancel:
		return d.machine.CancelPower(), nil
	case CmdPowerOn:
		return d.machine.PowerOn(), nil
	case CmdViewport:
		vp := d.windows.Viewport()
		vp.Width, vp.Height = cmd.Width, cmd.Height
		d.windows.SetViewport(vp)
		return true, nil
	}

	// The remaining commands name apps; ignore the ones we do not host
	if cmd.AppID != "" && !d.catalog.Has(cmd.AppID) {
		return false, nil
	}

	switch cmd.Type {
	case CmdOpen:
		return d.open(cmd.AppID), nil
	case CmdClose:
		return d.beginClose(cmd.AppID), nil
	case CmdMinimize:
		return d.windows.ToggleMinimize(cmd.AppID), nil
	case CmdMaximize:
		return d.windows.ToggleMaximize(cmd.AppID), nil
	case CmdFocus:
		return d.windows.Focus(cmd.AppID), nil
	case CmdMove:
		return d.windows.Move(cmd.AppID, cmd.DX, cmd.DY), nil
	case CmdResize:
		h, _ := window.ParseHandle(cmd.Handle)
		return d.windows.Resize(cmd.AppID, h, cmd.DX, cmd.DY), nil

	case CmdGestureMove:
		if !d.windows.BeginMove(cmd.AppID, window.Point{X: cmd.X, Y: cmd.Y}) {
			return false, nil
		}
		d.windows.Focus(cmd.AppID)
		return true, nil
	case CmdGestureResize:
		h, _ := window.ParseHandle(cmd.Handle)
		if !d.windows.BeginResize(cmd.AppID, h, window.Point{X: cmd.X, Y: cmd.Y}) {
			return false, nil
		}
		d.windows.Focus(cmd.AppID)
		return true, nil
	case CmdGesturePointer:
		return d.windows.PointerMove(window.Point{X: cmd.X, Y: cmd.Y}), nil
	case CmdGestureEnd:
		return d.windows.EndGesture(), nil

	case CmdDockClick:
		return d.dockClick(cmd.AppID), nil

	case CmdMenuOpen:
		if cmd.Target != "" && !d.catalog.Has(cmd.Target) {
			return false, nil
		}
		d.menu.Show(cmd.X, cmd.Y, cmd.Target)
		return true, nil
	case CmdMenuSelect:
		return d.menuSelect(cmd.Action), nil
	case CmdMenuDismiss:
		return d.menu.Dismiss(), nil

	case CmdFullscreen:
		return d.machine.SetActiveApp(cmd.AppID), nil
	case CmdExitFullscreen:
		return d.machine.ClearActiveApp(), nil

	case CmdTerminalExec:
		return d.withTerminal(func() error { return d.term.Exec(ctx, cmd.Tab, cmd.Line) })
	case CmdTerminalNew:
		return d.withTerminal(func() error { d.term.NewTab(); return nil })
	case CmdTerminalClose:
		return d.withTerminal(func() error { return d.term.CloseTab(cmd.Tab) })
	case CmdTerminalSwitch:
		return d.withTerminal(func() error { return d.term.Switch(cmd.Tab) })
	}

	return false, ErrUnknownCommand
}

// open shows an app window and leaves full-screen mode. Must hold d.mu.
func (d *Desktop) open(appID string) bool {
	if !d.catalog.Has(appID) {
		return false
	}
	if _, created := d.windows.Open(appID); created {
		d.logger.Debug("Window opened", zap.String("app_id", appID))
	}
	d.machine.ClearActiveApp()
	return true
}

// beginClose starts the close animation and schedules the removal. Must hold d.mu.
func (d *Desktop) beginClose(appID string) bool {
	seq, ok := d.windows.BeginClose(appID)
	if !ok {
		return false
	}
	if d.menu.Target == appID {
		d.menu.Dismiss()
	}
	lockedScheduler{d}.AfterFunc(d.closeDelay, func() {
		if d.windows.FinishClose(appID, seq) && appID == TerminalApp {
			d.term.Reset()
		}
	})
	return true
}

// dockClick opens a missing window, restores a minimized one and focuses a
// visible one. Must hold d.mu.
func (d *Desktop) dockClick(appID string) bool {
	w, ok := d.windows.Get(appID)
	switch {
	case !ok || w.Closing:
		return d.open(appID)
	case w.Minimized:
		return d.windows.ToggleMinimize(appID)
	default:
		return d.windows.Focus(appID)
	}
}

// menuSelect runs a context menu action on the menu target and dismisses
// the menu. Must hold d.mu.
func (d *Desktop) menuSelect(action string) bool {
	if !d.menu.Visible {
		return false
	}
	target := d.menu.Target
	d.menu.Dismiss()

	if target == "" {
		return true
	}
	switch action {
	case MenuOpen:
		d.open(target)
	case MenuClose:
		d.beginClose(target)
	case MenuMinimize:
		d.windows.ToggleMinimize(target)
	case MenuMaximize:
		d.windows.ToggleMaximize(target)
	}
	return true
}

// withTerminal runs fn when the terminal window is open. Must hold d.mu.
func (d *Desktop) withTerminal(fn func() error) (bool, error) {
	if _, ok := d.windows.Get(TerminalApp); !ok {
		return false, nil
	}
	if err := fn(); err != nil {
		if errors.Is(err, terminal.ErrNoTab) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// onTransition reacts to completed phase changes. It runs with d.mu held,
// either inside Dispatch or inside a scheduled callback.
func (d *Desktop) onTransition(from, to session.Phase) {
	d.metrics.RecordTransition(string(from), string(to))
	d.logger.Info("Session transition",
		zap.String("from", string(from)),
		zap.String("phase", string(to)))

	d.menu.Dismiss()
	d.windows.EndGesture()

	// Shutting down and restarting both discard the window set; locking keeps it
	if to == session.PhaseShutdown || (from == session.PhaseRestarting && to == session.PhaseLocked) {
		d.windows.Clear()
		d.term.Reset()
	}
}

// changed bumps the revision and publishes the view. Must hold d.mu.
func (d *Desktop) changed() {
	d.revision++
	d.hub.Broadcast(d.view())
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrLocked):
		return "locked"
	default:
		return "rejected"
	}
}

// lockedScheduler runs callbacks under the desktop lock and publishes the result
type lockedScheduler struct {
	d *Desktop
}

func (s lockedScheduler) AfterFunc(dur time.Duration, f func()) clock.Timer {
	d := s.d
	return d.sched.AfterFunc(dur, func() {
		d.mu.Lock()
		defer d.mu.Unlock()

		if d.stopped {
			return
		}
		f()
		d.changed()
	})
}

func (s lockedScheduler) Now() time.Time {
	return s.d.sched.Now()
}

// terminalHost exposes the desktop to the terminal. Its methods run inside
// Dispatch with d.mu already held.
type terminalHost struct {
	d *Desktop
}

func (h terminalHost) Apps() []string {
	apps := h.d.catalog.List()
	ids := make([]string, 0, len(apps))
	for _, app := range apps {
		ids = append(ids, app.ID)
	}
	return ids
}

func (h terminalHost) Open(appID string) bool {
	return h.d.open(appID)
}

func (h terminalHost) Owner() string {
	return h.d.owner
}

func (h terminalHost) Now() time.Time {
	return h.d.sched.Now()
}
