package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	SignUp(ctx context.Context, username string) error
	Login(ctx context.Context, username string) error
	Logout(ctx context.Context) error
	List(ctx context.Context, rentals string) error
	Show(ctx context.Context, id string) error
	Search(ctx context.Context, query string) error
	Edit(ctx context.Context, id string) error
	Sync(ctx context.Context) error
}

// runREPL reads commands line by line from reader and dispatches them to
// a. Prompts issued by the commands read from the same reader. The loop
// exits on EOF or on "exit" / "quit".
//
//	Not logged in:  help, signup, login, exit
//	Logged in:      help, list [<=N|>N|any], show <id>, search <query>, add,
//	                edit <id>, sync, logout, exit
//
// Command errors are printed and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("mk %s> ", statusFn()))

		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, rest := parts[0], strings.Join(parts[1:], " ")

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (l)ist [<=N|>N|any], show <id>, search <query>, add, edit <id>, sync, logout, exit")
			} else {
				printlnFn("Available commands: signup, login, exit")
			}

		case "signup":
			cmdErr = a.SignUp(ctx, rest)

		case "login":
			cmdErr = a.Login(ctx, rest)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "l", "list":
			cmdErr = a.List(ctx, rest)

		case "show":
			if rest == "" {
				printlnFn("Usage: show <id>")
				continue
			}
			cmdErr = a.Show(ctx, rest)

		case "search":
			cmdErr = a.Search(ctx, rest)

		case "add":
			cmdErr = a.Edit(ctx, "")

		case "edit":
			if rest == "" {
				printlnFn("Usage: edit <id>")
				continue
			}
			cmdErr = a.Edit(ctx, rest)

		case "sync":
			cmdErr = a.Sync(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}
	}
}

// REPL runs the interactive session: the connectivity watcher runs in the
// background until the user leaves.
func (a *App) REPL(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.watch != nil {
		go a.watch(ctx)
	}

	printlnFn("Welcome to MovieKeeper (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}
