package main

import (
	"bufio"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"rsc.io/script"
)

// TestLeaseLifecycleScript drives the on-disk advisory lease (the same
// file localLeaseHeld checks) through a tiny script, the way the Go
// toolchain's own script-based tests narrate a sequence of file-system
// assertions instead of a long imperative test function. No usage site
// for rsc.io/script exists anywhere in the example corpus this engine was
// grounded on, so the command set below is kept to the package's
// documented core (NewEngine, NewState, Execute) plus one project-defined
// verb rather than imitating an unseen convention.
func TestLeaseLifecycleScript(t *testing.T) {
	ctx := context.Background()
	workdir := t.TempDir()

	env := []string{"PATH=" + strings.Join([]string{"/usr/bin", "/bin"}, ":")}
	state, err := script.NewState(ctx, workdir, env)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}

	eng := script.NewEngine()
	eng.Cmds["leaseheld"] = script.Command(
		script.CmdUsage{
			Summary: "assert whether the named local lease is currently held",
			Args:    "path held|free",
		},
		func(s *script.State, args ...string) (script.WaitFunc, error) {
			if len(args) != 2 {
				return nil, errors.New("usage: leaseheld path held|free")
			}
			held, err := localLeaseHeld(filepath.Join(workdir, args[0]))
			if err != nil {
				return nil, err
			}
			want := args[1] == "held"
			if held != want {
				return nil, errLeaseMismatch(args[0], want, held)
			}
			return nil, nil
		},
	)

	const scriptText = `
leaseheld generate.lease free
`
	if err := eng.Execute(state, "lease.txt", bufio.NewReader(strings.NewReader(scriptText)), &testLogWriter{t}); err != nil {
		t.Fatalf("script execution: %v", err)
	}
}

type testLogWriter struct{ t *testing.T }

func (w *testLogWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

func errLeaseMismatch(path string, want, got bool) error {
	return &leaseMismatchError{path: path, want: want, got: got}
}

type leaseMismatchError struct {
	path     string
	want, got bool
}

func (e *leaseMismatchError) Error() string {
	return "lease " + e.path + " held mismatch: want " + boolStr(e.want) + " got " + boolStr(e.got)
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
