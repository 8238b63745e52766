package terminal

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"
)

type command struct {
	usage string
	run   func(ctx context.Context, t *Terminal, tab *Tab, args []string)
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"help":    {"help                list commands", runHelp},
		"clear":   {"clear               clear the screen", runClear},
		"echo":    {"echo <text>         print text", runEcho},
		"whoami":  {"whoami              print the owner", runWhoami},
		"date":    {"date                print the current time", runDate},
		"ls":      {"ls                  list apps", runLs},
		"open":    {"open <app>          open an app window", runOpen},
		"history": {"history             list previous commands", runHistory},
		"calc":    {"calc <expr>         evaluate an expression", runCalc},
		"exit":    {"exit                close this tab", nil},
	}
}

// Exec runs one input line in the given tab (the active tab when id is 0)
func (t *Terminal) Exec(ctx context.Context, id int, line string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if id == 0 {
		id = t.active
	}
	tab := t.tab(id)
	if tab == nil {
		return ErrNoTab
	}

	line = strings.TrimSpace(line)
	tab.print("input", Prompt+" "+line)
	if line == "" {
		return nil
	}
	tab.remember(line)

	fields := strings.Fields(line)
	name, args := fields[0], fields[1:]

	if name == "exit" {
		return t.closeTab(id)
	}

	cmd, ok := commands[name]
	if !ok {
		tab.print("error", "command not found: "+name)
		return nil
	}
	cmd.run(ctx, t, tab, args)
	return nil
}

func runHelp(_ context.Context, _ *Terminal, tab *Tab, _ []string) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		tab.print("output", commands[name].usage)
	}
}

func runClear(_ context.Context, _ *Terminal, tab *Tab, _ []string) {
	tab.Lines = nil
}

func runEcho(_ context.Context, _ *Terminal, tab *Tab, args []string) {
	tab.print("output", strings.Join(args, " "))
}

func runWhoami(_ context.Context, t *Terminal, tab *Tab, _ []string) {
	tab.print("output", t.host.Owner())
}

func runDate(_ context.Context, t *Terminal, tab *Tab, _ []string) {
	tab.print("output", t.host.Now().Format(time.RFC1123))
}

func runLs(_ context.Context, t *Terminal, tab *Tab, _ []string) {
	for _, app := range t.host.Apps() {
		tab.print("output", app)
	}
}

func runOpen(_ context.Context, t *Terminal, tab *Tab, args []string) {
	if len(args) != 1 {
		tab.print("error", "usage: open <app>")
		return
	}
	if !t.host.Open(args[0]) {
		tab.print("error", "no such app: "+args[0])
		return
	}
	tab.print("output", "opening "+args[0])
}

func runHistory(_ context.Context, _ *Terminal, tab *Tab, _ []string) {
	for i, line := range tab.History {
		tab.print("output", strconv.Itoa(i+1)+"  "+line)
	}
}

func runCalc(ctx context.Context, t *Terminal, tab *Tab, args []string) {
	if len(args) == 0 {
		tab.print("error", "usage: calc <expr>")
		return
	}
	if t.eval == nil {
		tab.print("error", "calc: unavailable")
		return
	}
	out, err := t.eval.Eval(ctx, strings.Join(args, " "))
	if err != nil {
		tab.print("error", "calc: "+err.Error())
		return
	}
	tab.print("output", out)
}
