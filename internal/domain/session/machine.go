package session

import (
	"sync"
	"time"

	"github.com/GriffinCanCode/deskfolio/internal/shared/clock"
)

// Phase is the top-level screen being shown
type Phase string

const (
	PhaseLocked       Phase = "locked"
	PhaseUnlocked     Phase = "unlocked"
	PhaseShuttingDown Phase = "shutting_down"
	PhaseShutdown     Phase = "shutdown"
	PhaseRestarting   Phase = "restarting"
)

// PowerAction names a power control offered by the power dialog
type PowerAction string

const (
	PowerShutdown PowerAction = "shutdown"
	PowerRestart  PowerAction = "restart"
)

// KeyEnter is the only key with a session binding
const KeyEnter = "Enter"

// Delays holds the fixed latencies of the timed transitions
type Delays struct {
	Login    time.Duration
	Shutdown time.Duration
	Restart  time.Duration
}

// DefaultDelays mirrors the latencies of the web shell
func DefaultDelays() Delays {
	return Delays{
		Login:    1500 * time.Millisecond,
		Shutdown: 2 * time.Second,
		Restart:  2750 * time.Millisecond,
	}
}

// State is a snapshot of the machine
type State struct {
	Phase        Phase       `json:"phase"`
	LoggingIn    bool        `json:"logging_in"`
	PendingPower PowerAction `json:"pending_power,omitempty"`
	ActiveApp    string      `json:"active_app,omitempty"`
}

// Listener observes completed phase changes
type Listener func(from, to Phase)

// Machine sequences the lock screen, login and power transitions.
// Timed transitions run through the scheduler and cannot be cancelled once started.
type Machine struct {
	mu        sync.Mutex
	state     State
	delays    Delays
	scheduler clock.Scheduler
	listener  Listener
	pending   clock.Timer
	stopped   bool
}

// NewMachine creates a machine in the locked phase
func NewMachine(scheduler clock.Scheduler, delays Delays, listener Listener) *Machine {
	if listener == nil {
		listener = func(Phase, Phase) {}
	}
	return &Machine{
		state:     State{Phase: PhaseLocked},
		delays:    delays,
		scheduler: scheduler,
		listener:  listener,
	}
}

// State returns the current snapshot
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Interactive reports whether window commands may be accepted
func (m *Machine) Interactive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Phase == PhaseUnlocked && !m.state.LoggingIn
}

// busy reports whether a timed transition is in flight. Must hold mu.
func (m *Machine) busy() bool {
	return m.stopped || m.state.LoggingIn ||
		m.state.Phase == PhaseShuttingDown || m.state.Phase == PhaseRestarting
}

// Unlock starts the simulated login. The phase flips to unlocked after the
// login delay; nothing else can happen in between.
func (m *Machine) Unlock() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.busy() || m.state.Phase != PhaseLocked {
		return false
	}
	m.state.LoggingIn = true
	m.schedule(m.delays.Login, func() {
		m.state.LoggingIn = false
		m.setPhase(PhaseUnlocked)
	})
	return true
}

// Lock returns to the lock screen immediately. It is a display gate only;
// callers keep their window state.
func (m *Machine) Lock() bool {
	var from Phase
	ok := m.transition(func() bool {
		if m.busy() || m.state.Phase != PhaseUnlocked {
			return false
		}
		from = m.state.Phase
		m.state.PendingPower = ""
		m.state.Phase = PhaseLocked
		return true
	})
	if ok {
		m.listener(from, PhaseLocked)
	}
	return ok
}

// Shutdown starts powering off. Only reachable from the unlocked desktop.
func (m *Machine) Shutdown() bool {
	var from Phase
	ok := m.transition(func() bool {
		if m.busy() || m.state.Phase != PhaseUnlocked {
			return false
		}
		from = m.state.Phase
		m.state.PendingPower = ""
		m.state.ActiveApp = ""
		m.state.Phase = PhaseShuttingDown
		m.schedule(m.delays.Shutdown, func() {
			m.setPhase(PhaseShutdown)
		})
		return true
	})
	if ok {
		m.listener(from, PhaseShuttingDown)
	}
	return ok
}

// Restart reboots back to the lock screen from either the lock screen or the desktop
func (m *Machine) Restart() bool {
	var from Phase
	ok := m.transition(func() bool {
		if m.busy() || (m.state.Phase != PhaseLocked && m.state.Phase != PhaseUnlocked) {
			return false
		}
		from = m.state.Phase
		m.state.PendingPower = ""
		m.state.ActiveApp = ""
		m.state.Phase = PhaseRestarting
		m.schedule(m.delays.Restart, func() {
			m.setPhase(PhaseLocked)
		})
		return true
	})
	if ok {
		m.listener(from, PhaseRestarting)
	}
	return ok
}

// PowerOn leaves the shutdown screen for the lock screen
func (m *Machine) PowerOn() bool {
	ok := m.transition(func() bool {
		if m.stopped || m.state.Phase != PhaseShutdown {
			return false
		}
		m.state.Phase = PhaseLocked
		return true
	})
	if ok {
		m.listener(PhaseShutdown, PhaseLocked)
	}
	return ok
}

// PressKey applies the contextual keyboard binding: Enter submits the login
// on the lock screen and powers on from the shutdown screen.
func (m *Machine) PressKey(key string) bool {
	if key != KeyEnter {
		return false
	}
	switch m.State().Phase {
	case PhaseLocked:
		return m.Unlock()
	case PhaseShutdown:
		return m.PowerOn()
	}
	return false
}

// RequestPower opens the confirmation dialog for a power action
func (m *Machine) RequestPower(action PowerAction) bool {
	return m.transition(func() bool {
		if m.busy() {
			return false
		}
		switch action {
		case PowerShutdown:
			if m.state.Phase != PhaseUnlocked {
				return false
			}
		case PowerRestart:
			if m.state.Phase != PhaseLocked && m.state.Phase != PhaseUnlocked {
				return false
			}
		default:
			return false
		}
		m.state.PendingPower = action
		return true
	})
}

// CancelPower dismisses the confirmation dialog
func (m *Machine) CancelPower() bool {
	return m.transition(func() bool {
		if m.state.PendingPower == "" {
			return false
		}
		m.state.PendingPower = ""
		return true
	})
}

// ConfirmPower runs the action awaiting confirmation
func (m *Machine) ConfirmPower() bool {
	switch m.State().PendingPower {
	case PowerShutdown:
		return m.Shutdown()
	case PowerRestart:
		return m.Restart()
	}
	return false
}

// SetActiveApp enters the single-app full-screen mode used on small screens
func (m *Machine) SetActiveApp(appID string) bool {
	return m.transition(func() bool {
		if m.busy() || m.state.Phase != PhaseUnlocked || appID == "" {
			return false
		}
		m.state.ActiveApp = appID
		return true
	})
}

// ClearActiveApp leaves full-screen mode
func (m *Machine) ClearActiveApp() bool {
	return m.transition(func() bool {
		if m.state.ActiveApp == "" {
			return false
		}
		m.state.ActiveApp = ""
		return true
	})
}

// Stop cancels any scheduled transition and refuses further ones.
// Used when the owning desktop is discarded.
func (m *Machine) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopped = true
	if m.pending != nil {
		m.pending.Stop()
		m.pending = nil
	}
}

func (m *Machine) transition(fn func() bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn()
}

// schedule arms the single pending timer. Must hold mu.
func (m *Machine) schedule(d time.Duration, fn func()) {
	m.pending = m.scheduler.AfterFunc(d, func() {
		m.mu.Lock()
		if m.stopped {
			m.mu.Unlock()
			return
		}
		m.pending = nil
		from := m.state.Phase
		fn()
		to := m.state.Phase
		m.mu.Unlock()

		m.listener(from, to)
	})
}

// setPhase must hold mu
func (m *Machine) setPhase(p Phase) {
	m.state.Phase = p
}
