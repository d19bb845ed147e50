package testutils

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

type TestHelper struct {
	T      *testing.T
	Logger *logrus.Logger
	Hook   *test.Hook
}

// NewTestHelper creates a test helper with a logger that records entries instead of printing them.
func NewTestHelper(t *testing.T) *TestHelper {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel) // enable debug logs to track execution flow
	return &TestHelper{
		T:      t,
		Logger: logger,
		Hook:   hook,
	}
}

// EntriesWithMessage returns the recorded entries whose message equals msg.
func (h *TestHelper) EntriesWithMessage(msg string) []logrus.Entry {
	var result []logrus.Entry
	for _, e := range h.Hook.AllEntries() {
		if e.Message == msg {
			result = append(result, *e)
		}
	}
	return result
}

// EntriesAtLevel returns the recorded entries logged at level.
func (h *TestHelper) EntriesAtLevel(level logrus.Level) []logrus.Entry {
	var result []logrus.Entry
	for _, e := range h.Hook.AllEntries() {
		if e.Level == level {
			result = append(result, *e)
		}
	}
	return result
}
