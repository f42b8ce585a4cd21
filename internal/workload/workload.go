// Package workload has the workloads and clock used to time benchmark tests.
package workload

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/huangsam/benchtrack/internal/contract"
	"github.com/huangsam/benchtrack/schema"
)

// Environment variables passed through to command workloads.
const (
	RecurseEnv = "BENCHTRACK_RECURSE"
	ThreadsEnv = "BENCHTRACK_THREADS"
)

// Command runs an external program once per query.
// Paths are passed as leading arguments and the query as the last one.
type Command struct {
	Args        []string // Program followed by its fixed arguments
	Paths       []string
	Queries     []string
	Incremental bool
	Recurse     bool
	Threads     int
	Dir         string
}

var _ contract.Workload = &Command{} // Compile-time check

// Run executes the command for every query and stops at the first failure.
func (c *Command) Run(ctx context.Context) error {
	if len(c.Args) == 0 {
		return fmt.Errorf("command workload has no program")
	}
	if len(c.Queries) == 0 {
		return c.exec(ctx, "", false)
	}
	for _, query := range c.Queries {
		if !c.Incremental {
			if err := c.exec(ctx, query, true); err != nil {
				return err
			}
			continue
		}
		for _, prefix := range prefixes(query) {
			if err := c.exec(ctx, prefix, true); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Command) exec(ctx context.Context, query string, withQuery bool) error {
	args := make([]string, 0, len(c.Args)+len(c.Paths))
	args = append(args, c.Args[1:]...)
	args = append(args, c.Paths...)
	if withQuery {
		args = append(args, query)
	}

	cmd := exec.CommandContext(ctx, c.Args[0], args...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), c.Env()...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s %q: %w: %s", c.Args[0], query, err, msg)
		}
		return fmt.Errorf("%s %q: %w", c.Args[0], query, err)
	}
	return nil
}

// Env returns the variables that describe the workload behavior to the command.
func (c *Command) Env() []string {
	recurse := "0"
	if c.Recurse {
		recurse = "1"
	}
	return []string{
		RecurseEnv + "=" + recurse,
		ThreadsEnv + "=" + strconv.Itoa(c.Threads),
	}
}

// prefixes returns every non-empty prefix of s, shortest first.
func prefixes(s string) []string {
	runes := []rune(s)
	out := make([]string, 0, len(runes))
	for i := 1; i <= len(runes); i++ {
		out = append(out, string(runes[:i]))
	}
	return out
}

// Func adapts a Go function to the Workload interface.
type Func func(ctx context.Context) error

var _ contract.Workload = Func(nil) // Compile-time check

// Run calls f.
func (f Func) Run(ctx context.Context) error {
	return f(ctx)
}

// FromConfig builds the command tests described by the configuration, in order.
func FromConfig(cfg *contract.Config) []contract.Test {
	tests := make([]contract.Test, 0, len(cfg.Tests))
	for _, def := range cfg.Tests {
		tests = append(tests, FromDefinition(def, cfg.Recurse, cfg.Threads))
	}
	return tests
}

// FromDefinition builds a single command test.
func FromDefinition(def schema.TestDefinition, recurse bool, threads int) contract.Test {
	times := def.Times
	if times < 1 {
		times = contract.DefaultTimes
	}
	return contract.Test{
		Name:  def.Name,
		Times: times,
		Workload: &Command{
			Args:        def.Command,
			Paths:       def.Paths,
			Queries:     def.Queries,
			Incremental: def.Incremental,
			Recurse:     recurse,
			Threads:     threads,
		},
	}
}
