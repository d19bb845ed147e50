package main

import (
	"bytes"
	"context"
	"sync"

	"github.com/fatih/color"

	"github.com/srg/ryse/internal/testutils"
)

// Test device addresses for consistent mock device identification
const (
	TestDeviceAddress = "00:00:00:00:00:01"
	TestNotifyUUID    = "2a19"
	TestWriteUUID     = "2a1a"
)

// syncBuffer lets the command goroutine and the test write output concurrently.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// CommandTestSuite extends MockTransportSuite with command testing utilities.
// All cmd/ryse test suites should embed this instead of MockTransportSuite.
type CommandTestSuite struct {
	testutils.MockTransportSuite
}

func (s *CommandTestSuite) SetupSuite() {
	s.MockTransportSuite.SetupSuite()
	color.NoColor = true
}

// ExecuteCommand runs the root command with args, returns output and error.
func (s *CommandTestSuite) ExecuteCommand(args ...string) (string, error) {
	return s.ExecuteCommandContext(context.Background(), args...)
}

// ExecuteCommandContext is ExecuteCommand with a caller-controlled context.
func (s *CommandTestSuite) ExecuteCommandContext(ctx context.Context, args ...string) (string, error) {
	out, err := s.StartCommand(ctx, args...).Wait()
	return out, err
}

// RunningCommand is a command executing in the background.
type RunningCommand struct {
	out  *syncBuffer
	done chan error
}

// Output returns what the command printed so far.
func (r *RunningCommand) Output() string { return r.out.String() }

// Wait blocks until the command returns.
func (r *RunningCommand) Wait() (string, error) {
	err := <-r.done
	return r.out.String(), err
}

// StartCommand runs the root command in a goroutine.
func (s *CommandTestSuite) StartCommand(ctx context.Context, args ...string) *RunningCommand {
	cmd := newRootCmd()
	r := &RunningCommand{out: &syncBuffer{}, done: make(chan error, 1)}
	cmd.SetOut(r.out)
	cmd.SetErr(r.out)
	cmd.SetArgs(args)
	go func() {
		r.done <- cmd.ExecuteContext(ctx)
	}()
	return r
}

// deviceArgs returns the flags addressing the mock device.
func deviceArgs(extra ...string) []string {
	args := []string{"--address", TestDeviceAddress, "--notify-uuid", TestNotifyUUID, "--write-uuid", TestWriteUUID}
	return append(args, extra...)
}
