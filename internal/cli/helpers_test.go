package cli

import (
	"bytes"
	"strings"
	"testing"
)

type result struct {
	stdout string
	stderr string
	err    error
}

// execute runs the root command with args and stdin.
func execute(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	cmd := NewRootCommand()
	var out, errBuf bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errBuf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return result{stdout: out.String(), stderr: errBuf.String(), err: err}
}

// run executes args against the store in dir.
func run(t *testing.T, dir string, args ...string) result {
	t.Helper()
	return execute(t, "", append(args, "--db", dir)...)
}
