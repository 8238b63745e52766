// Package desktop is the controller that owns one running shell.
//
// A Desktop combines the session machine, the window manager, the context
// menu and the terminal behind a single command boundary, Dispatch. Window
// commands are only accepted while the session is unlocked; rendering is the
// pure projection returned by View and streamed to subscribers after every
// change. Manager keeps the desktops of all connected clients and evicts
// idle ones.
package desktop
