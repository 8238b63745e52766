package desktop

import (
	"errors"
	"fmt"

	"github.com/GriffinCanCode/deskfolio/internal/domain/session"
	"github.com/GriffinCanCode/deskfolio/internal/domain/window"
	"github.com/GriffinCanCode/deskfolio/internal/shared/utils"
)

var (
	// ErrLocked is returned for desktop commands while the desktop is not interactive
	ErrLocked = errors.New("desktop is locked")
	// ErrUnknownCommand is returned for command types that do not exist
	ErrUnknownCommand = errors.New("unknown command")
	// ErrInvalidCommand is returned for malformed command payloads
	ErrInvalidCommand = errors.New("invalid command")
	// ErrNotFound is returned for unknown desktop ids
	ErrNotFound = errors.New("desktop not found")
	// ErrTooManyDesktops is returned when the registry is full
	ErrTooManyDesktops = errors.New("too many desktops")
)

// CommandType names a dispatchable command
type CommandType string

const (
	CmdUnlock       CommandType = "session.unlock"
	CmdLock         CommandType = "session.lock"
	CmdKey          CommandType = "session.key"
	CmdPowerRequest CommandType = "power.request"
	CmdPowerConfirm CommandType = "power.confirm"
	CmdPowerCancel  CommandType = "power.cancel"
	CmdPowerOn      CommandType = "power.on"
	CmdViewport     CommandType = "viewport.set"

	CmdOpen     CommandType = "window.open"
	CmdClose    CommandType = "window.close"
	CmdMinimize CommandType = "window.minimize"
	CmdMaximize CommandType = "window.maximize"
	CmdFocus    CommandType = "window.focus"
	CmdMove     CommandType = "window.move"
	CmdResize   CommandType = "window.resize"

	CmdGestureMove    CommandType = "gesture.move"
	CmdGestureResize  CommandType = "gesture.resize"
	CmdGesturePointer CommandType = "gesture.pointer"
	CmdGestureEnd     CommandType = "gesture.end"

	CmdDockClick CommandType = "dock.click"

	CmdMenuOpen    CommandType = "menu.open"
	CmdMenuSelect  CommandType = "menu.select"
	CmdMenuDismiss CommandType = "menu.dismiss"

	CmdFullscreen     CommandType = "app.fullscreen"
	CmdExitFullscreen CommandType = "app.exit_fullscreen"

	CmdTerminalExec   CommandType = "terminal.exec"
	CmdTerminalNew    CommandType = "terminal.tab.new"
	CmdTerminalClose  CommandType = "terminal.tab.close"
	CmdTerminalSwitch CommandType = "terminal.tab.switch"
)

// ungated commands are accepted in every phase; the session machine decides
// whether they apply
var ungated = map[CommandType]bool{
	CmdUnlock:       true,
	CmdLock:         true,
	CmdKey:          true,
	CmdPowerRequest: true,
	CmdPowerConfirm: true,
	CmdPowerCancel:  true,
	CmdPowerOn:      true,
	CmdViewport:     true,
}

var gated = map[CommandType]bool{
	CmdOpen:           true,
	CmdClose:          true,
	CmdMinimize:       true,
	CmdMaximize:       true,
	CmdFocus:          true,
	CmdMove:           true,
	CmdResize:         true,
	CmdGestureMove:    true,
	CmdGestureResize:  true,
	CmdGesturePointer: true,
	CmdGestureEnd:     true,
	CmdDockClick:      true,
	CmdMenuOpen:       true,
	CmdMenuSelect:     true,
	CmdMenuDismiss:    true,
	CmdFullscreen:     true,
	CmdExitFullscreen: true,
	CmdTerminalExec:   true,
	CmdTerminalNew:    true,
	CmdTerminalClose:  true,
	CmdTerminalSwitch: true,
}

// Command is one input event addressed to a desktop
type Command struct {
	Type   CommandType `json:"type"`
	AppID  string      `json:"app_id,omitempty"`
	Handle string      `json:"handle,omitempty"`
	DX     int         `json:"dx,omitempty"`
	DY     int         `json:"dy,omitempty"`
	X      int         `json:"x,omitempty"`
	Y      int         `json:"y,omitempty"`
	Width  int         `json:"width,omitempty"`
	Height int         `json:"height,omitempty"`
	Key    string      `json:"key,omitempty"`
	Action string      `json:"action,omitempty"`
	Target string      `json:"target,omitempty"`
	Tab    int         `json:"tab,omitempty"`
	Line   string      `json:"line,omitempty"`
}

// Gated reports whether the command needs an unlocked, idle session
func (c Command) Gated() bool {
	return gated[c.Type]
}

// Validate checks the payload fields the command type needs
func (c Command) Validate() error {
	if !gated[c.Type] && !ungated[c.Type] {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, c.Type)
	}

	switch c.Type {
	case CmdOpen, CmdClose, CmdMinimize, CmdMaximize, CmdFocus, CmdMove,
		CmdGestureMove, CmdDockClick, CmdFullscreen:
		return c.validateApp()

	case CmdResize, CmdGestureResize:
		if err := c.validateApp(); err != nil {
			return err
		}
		if _, err := window.ParseHandle(c.Handle); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidCommand, err)
		}

	case CmdPowerRequest:
		switch session.PowerAction(c.Action) {
		case session.PowerShutdown, session.PowerRestart:
		default:
			return fmt.Errorf("%w: unknown power action %q", ErrInvalidCommand, c.Action)
		}

	case CmdKey:
		if c.Key == "" {
			return fmt.Errorf("%w: key is required", ErrInvalidCommand)
		}

	case CmdViewport:
		if c.Width <= 0 || c.Height <= 0 {
			return fmt.Errorf("%w: viewport must be positive", ErrInvalidCommand)
		}

	case CmdMenuOpen:
		if c.Target != "" {
			if err := utils.ValidateAppID(c.Target); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidCommand, err)
			}
		}

	case CmdTerminalExec:
		if err := utils.ValidateText(c.Line, "line", utils.MaxLineLength, false); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidCommand, err)
		}
	}
	return nil
}

func (c Command) validateApp() error {
	if err := utils.ValidateAppID(c.AppID); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}
	return nil
}
