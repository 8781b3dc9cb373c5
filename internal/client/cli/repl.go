package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/scubelic/llmwatcher/internal/client/flow"
)

// printlnFn and printFn are test seams for user-facing output. In tests,
// replace them with stubs.
var (
	printlnFn = fmt.Println
	printFn   = fmt.Print
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	state() flow.State
	Profile(ctx context.Context) error
	Switch() error
	Submit(ctx context.Context) error
	Close() error
	Login(ctx context.Context) error
	Register(ctx context.Context) error
	Keys(ctx context.Context) error
	Logout(ctx context.Context) error
	Status(ctx context.Context) error
	ToggleTheme() error
	Reset(ctx context.Context) error
}

// helpText lists the commands that make sense in st.
func helpText(st flow.State) string {
	switch st {
	case flow.Anonymous:
		return "Available commands: profile, login, register, status, theme, reset, exit"
	case flow.ShowingLogin:
		return "Available commands: submit, switch (to register), close, status, theme, reset, exit"
	case flow.ShowingRegister:
		return "Available commands: submit, switch (to login), close, status, theme, reset, exit"
	case flow.Authenticated:
		return "Available commands: profile, keys, logout, status, theme, reset, exit"
	case flow.ShowingAPIKeys:
		return "Available commands: submit, close, logout, status, theme, reset, exit"
	default:
		return "Available commands: help, exit"
	}
}

// lineSource is satisfied by *bufio.Scanner.
type lineSource interface {
	Scan() bool
	Text() string
}

// runREPL starts a read–eval–print loop for the watcher CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF, context cancellation or
// when the user types "exit" or "quit".
//
// The prompt comes from promptFn and reflects the open dialog.
//
// Errors returned by command handlers are ignored here; handlers report
// their own failures. This keeps the loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, promptFn func() string, scanner lineSource) {
	for {
		if ctx.Err() != nil {
			return
		}
		printFn(promptFn())
		if !scanner.Scan() {
			printlnFn()
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd := strings.ToLower(parts[0])

		switch cmd {
		case "help", "?":
			printlnFn(helpText(a.state()))

		case "profile":
			_ = a.Profile(ctx)

		case "switch":
			_ = a.Switch()

		case "submit":
			_ = a.Submit(ctx)

		case "close":
			_ = a.Close()

		case "login":
			_ = a.Login(ctx)

		case "register":
			_ = a.Register(ctx)

		case "keys":
			_ = a.Keys(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "status":
			_ = a.Status(ctx)

		case "theme":
			_ = a.ToggleTheme()

		case "reset":
			_ = a.Reset(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
