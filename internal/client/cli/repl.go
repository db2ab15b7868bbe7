package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/client/auth"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	status() auth.Status
	Register(ctx context.Context) error
	RegisterPro(ctx context.Context) error
	Login(ctx context.Context) error
	Verify(ctx context.Context) error
	Resend(ctx context.Context) error
	Back(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Status(ctx context.Context) error
	Specialties(ctx context.Context) error
	Forgot(ctx context.Context) error
	Reset(ctx context.Context) error
	Stats(ctx context.Context) error
}

var helpByStatus = map[auth.Status]string{
	auth.StatusUnauthenticated:     "Available commands: register, registerpro, login, forgot, reset, specialties, status, stats, exit",
	auth.StatusPendingVerification: "Available commands: verify, resend, back, login, status, stats, exit",
	auth.StatusAuthenticated:       "Available commands: whoami, status, specialties, stats, logout, exit",
}

// runREPL reads commands line by line from reader and dispatches them to a.
// The loop exits on EOF or when the user types "exit" or "quit".
//
// Command errors are printed with describeError and never end the loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	commands := map[string]func(context.Context) error{
		"register":    a.Register,
		"registerpro": a.RegisterPro,
		"login":       a.Login,
		"verify":      a.Verify,
		"resend":      a.Resend,
		"back":        a.Back,
		"logout":      a.Logout,
		"whoami":      a.Whoami,
		"status":      a.Status,
		"specialties": a.Specialties,
		"forgot":      a.Forgot,
		"reset":       a.Reset,
		"stats":       a.Stats,
	}

	for {
		fmt.Fprintf(out, "gophauth %s > ", statusFn())
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			help, ok := helpByStatus[a.status()]
			if !ok {
				help = "Available commands: status, exit"
			}
			fmt.Fprintln(out, help)
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return
		default:
			run, ok := commands[cmd]
			if !ok {
				fmt.Fprintln(out, "Unknown command:", cmd)
				continue
			}
			if err := run(ctx); err != nil {
				fmt.Fprintln(out, describeError(err))
			}
		}
	}
}
