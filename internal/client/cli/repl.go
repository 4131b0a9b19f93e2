package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to. App implements
// it; tests use a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) error
	DeleteAccount(ctx context.Context) error
	Categories(ctx context.Context) error
	List(ctx context.Context) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Reveal(ctx context.Context, id string) error
	Export(ctx context.Context) error
}

// runREPL reads one command per line from r and dispatches it to a. It
// returns on EOF or on "exit"/"quit". Command errors are reported to w and
// the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, r *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "lifedesk %s> ", statusFn())
		line, err := r.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			fmt.Fprintln(w)
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			fmt.Fprintln(w, "Bye!")
			return
		}

		if err := dispatch(ctx, a, cmd, args, w); err != nil {
			fmt.Fprintln(w, "Error:", describe(err))
		}
	}
}

func withID(args []string, w io.Writer, cmd string, fn func(id string) error) error {
	if len(args) != 1 {
		fmt.Fprintf(w, "Usage: %s <id>\n", cmd)
		return nil
	}
	return fn(args[0])
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string, w io.Writer) error {
	if cmd == "help" {
		if a.isLoggedIn() {
			fmt.Fprintln(w, "Available commands: me, categories, (l)ist, add, edit <id>, delete <id>, reveal <id>, export, logout, delete-account, exit")
		} else {
			fmt.Fprintln(w, "Available commands: signup, login, exit")
		}
		return nil
	}

	switch cmd {
	case "signup":
		return a.Signup(ctx)
	case "login":
		return a.Login(ctx)
	}

	if !a.isLoggedIn() {
		fmt.Fprintln(w, "Please log in first (or signup)")
		return nil
	}

	switch cmd {
	case "logout":
		return a.Logout(ctx)
	case "me":
		return a.Me(ctx)
	case "delete-account":
		return a.DeleteAccount(ctx)
	case "categories":
		return a.Categories(ctx)
	case "l", "list":
		return a.List(ctx)
	case "add":
		return a.Add(ctx)
	case "edit":
		return withID(args, w, cmd, func(id string) error { return a.Edit(ctx, id) })
	case "delete":
		return withID(args, w, cmd, func(id string) error { return a.Delete(ctx, id) })
	case "reveal":
		return withID(args, w, cmd, func(id string) error { return a.Reveal(ctx, id) })
	case "export":
		return a.Export(ctx)
	}

	fmt.Fprintln(w, "Unknown command:", cmd)
	return nil
}
