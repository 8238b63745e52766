// Package terminal implements the toy shell hosted by the terminal app.
//
// It keeps per-tab scrollback and history and interprets a handful of
// commands. It never touches the host system: ls lists apps, open launches
// windows and calc runs in a throwaway JavaScript VM with a timeout.
package terminal
