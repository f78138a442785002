package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	failSync bool

	calls []string
}

func (f *fakeExec) record(call string) { f.calls = append(f.calls, call) }

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) SignUp(_ context.Context, u string) error {
	f.record("signup " + u)
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Login(_ context.Context, u string) error {
	f.record("login " + u)
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Logout(context.Context) error {
	f.record("logout")
	f.loggedIn = false
	return nil
}
func (f *fakeExec) List(_ context.Context, rentals string) error {
	f.record(strings.TrimSpace("list " + rentals))
	return nil
}
func (f *fakeExec) Show(_ context.Context, id string) error {
	f.record("show " + id)
	return nil
}
func (f *fakeExec) Search(_ context.Context, q string) error {
	f.record("search " + q)
	return nil
}
func (f *fakeExec) Edit(_ context.Context, id string) error {
	f.record(strings.TrimSpace("edit " + id))
	return nil
}
func (f *fakeExec) Sync(context.Context) error {
	f.record("sync")
	if f.failSync {
		return errors.New("boom")
	}
	return nil
}

func capturePrints(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, fmt.Sprintln(a...))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	capturePrints(t)

	input := strings.Join([]string{
		"help",
		"login bob",
		"",
		"l",
		"list",
		"list >10",
		"show 42",
		"search the god father",
		"add",
		"edit 42",
		"sync",
		"logout",
		"exit",
		"list",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, rdr(input))

	assert.Equal(t, []string{
		"login bob",
		"list",
		"list",
		"list >10",
		"show 42",
		"search the god father",
		"edit",
		"edit 42",
		"sync",
		"logout",
	}, exec.calls)
}

func TestRunREPL_UsageUnknownAndErrors(t *testing.T) {
	lines := capturePrints(t)

	exec := &fakeExec{loggedIn: true, failSync: true}
	runREPL(context.Background(), exec, func() string { return "s" }, rdr("show\nedit\nfoobar\nsync\nquit\n"))

	assert.Equal(t, []string{"sync"}, exec.calls)

	out := strings.Join(*lines, "")
	assert.Contains(t, out, "Usage: show <id>")
	assert.Contains(t, out, "Usage: edit <id>")
	assert.Contains(t, out, "Unknown command: foobar")
	assert.Contains(t, out, "Error: boom")
	assert.Contains(t, out, "Bye!")
}

func TestRunREPL_StopsAtEOF(t *testing.T) {
	capturePrints(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "s" }, rdr("signup alice"))

	assert.Equal(t, []string{"signup alice"}, exec.calls)
}

func TestRunREPL_HelpDependsOnLogin(t *testing.T) {
	lines := capturePrints(t)

	runREPL(context.Background(), &fakeExec{}, func() string { return "s" }, rdr("help\n"))
	assert.Contains(t, strings.Join(*lines, ""), "signup, login, exit")

	*lines = nil
	runREPL(context.Background(), &fakeExec{loggedIn: true}, func() string { return "s" }, rdr("help\n"))
	assert.Contains(t, strings.Join(*lines, ""), "(l)ist")
}
