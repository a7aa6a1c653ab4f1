package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"ckpt-go/internal/ckpt"
)

// Call is one recorded invocation of the stub runner.
type Call struct {
	Name string
	Args []string
}

func (c Call) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Response scripts the stub runner's reaction to a command. Match wins when
// it is a substring of the space-joined command line; the first matching
// Response applies. Hook, if set, runs before the result is returned (e.g.
// to create the file the real tool would have written).
type Response struct {
	Match  string
	Result ckpt.RunResult
	Err    error
	Hook   func(call Call) error
}

// StubRunner is a scripted ProcessRunner for tests. Unmatched commands
// succeed with empty output. Tools listed in MissingTools fail LookPath.
type StubRunner struct {
	mu           sync.Mutex
	Responses    []Response
	MissingTools []string
	Calls        []Call
}

func NewStubRunner() *StubRunner {
	return &StubRunner{}
}

// Script appends a scripted response.
func (r *StubRunner) Script(match string, result ckpt.RunResult, err error) {
	r.Responses = append(r.Responses, Response{Match: match, Result: result, Err: err})
}

// ScriptHook appends a scripted response whose hook runs on match.
func (r *StubRunner) ScriptHook(match string, hook func(call Call) error) {
	r.Responses = append(r.Responses, Response{Match: match, Hook: hook})
}

func (r *StubRunner) Run(_ context.Context, name string, args ...string) (*ckpt.RunResult, error) {
	r.mu.Lock()
	call := Call{Name: name, Args: args}
	r.Calls = append(r.Calls, call)
	r.mu.Unlock()

	line := call.String()
	for _, resp := range r.Responses {
		if !strings.Contains(line, resp.Match) {
			continue
		}
		if resp.Hook != nil {
			if err := resp.Hook(call); err != nil {
				return nil, err
			}
		}
		result := resp.Result
		return &result, resp.Err
	}
	return &ckpt.RunResult{}, nil
}

func (r *StubRunner) LookPath(name string) (string, error) {
	for _, missing := range r.MissingTools {
		if missing == name {
			return "", fmt.Errorf("exec: %q: executable file not found in $PATH", name)
		}
	}
	return "/usr/bin/" + name, nil
}

// CommandLines returns every recorded call as a space-joined string.
func (r *StubRunner) CommandLines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		lines[i] = c.String()
	}
	return lines
}

var _ ckpt.ProcessRunner = (*StubRunner)(nil)
