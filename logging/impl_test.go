package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"go.viam.com/test"
)

// assertLogMatches will fuzzy match log lines. Notably, this checks the time format, but ignores
// the exact time. And it expects a match on the filename, but the exact line number can be wrong.
func assertLogMatches(t *testing.T, actual *bytes.Buffer, expected string) {
	t.Helper()

	output, err := actual.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)

	actualParts := strings.Split(strings.TrimSuffix(output, "\n"), "\t")
	expectedParts := strings.Split(expected, "\t")
	test.That(t, len(actualParts), test.ShouldEqual, len(expectedParts))
	// Use the length of the first string as a weak verification of checking that the result looks like a date.
	test.That(t, len(actualParts[0]), test.ShouldEqual, len(expectedParts[0]))
	for idx := 1; idx < len(expectedParts); idx++ {
		if strings.HasSuffix(expectedParts[idx], ".go") {
			// Filename without the line number.
			test.That(t, strings.HasPrefix(actualParts[idx], expectedParts[idx]+":"), test.ShouldBeTrue)
			continue
		}
		if strings.HasPrefix(expectedParts[idx], "{") {
			// JSON encoding of maps can be unpredictable. Parse and compare maps.
			expectedMap := make(map[string]any)
			test.That(t, json.Unmarshal([]byte(expectedParts[idx]), &expectedMap), test.ShouldBeNil)
			actualMap := make(map[string]any)
			test.That(t, json.Unmarshal([]byte(actualParts[idx]), &actualMap), test.ShouldBeNil)
			test.That(t, actualMap, test.ShouldResemble, expectedMap)
			continue
		}
		test.That(t, actualParts[idx], test.ShouldEqual, expectedParts[idx])
	}
}

func TestConsoleOutputFormat(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := newImpl("impl", DEBUG, true, NewWriterAppender(notStdout))

	logger.Info("impl Info log")
	assertLogMatches(t, notStdout,
		`2023-10-30T13:19:45.806Z	INFO	impl	logging/impl_test.go	impl Info log`)

	logger.Infof("impl %s log", "infof")
	assertLogMatches(t, notStdout,
		`2023-10-30T13:19:45.806Z	INFO	impl	logging/impl_test.go	impl infof log`)

	logger.Infow("impl logw", "key", "value", "nodes", 3)
	assertLogMatches(t, notStdout,
		`2023-10-30T13:19:45.806Z	INFO	impl	logging/impl_test.go	impl logw	{"key":"value","nodes":3}`)

	logger.SetLevel(WARN)
	logger.Info("dropped")
	logger.Warn("kept")
	assertLogMatches(t, notStdout,
		`2023-10-30T13:19:45.806Z	WARN	impl	logging/impl_test.go	kept`)
	test.That(t, notStdout.Len(), test.ShouldEqual, 0)
}

func TestSubloggerAndDebugContext(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := newImpl("planner", INFO, true, NewWriterAppender(notStdout))
	sub := logger.Sublogger("snapper")

	sub.Debug("hidden")
	test.That(t, notStdout.Len(), test.ShouldEqual, 0)

	ctx := EnableDebugMode(context.Background(), "")
	test.That(t, IsDebugMode(ctx), test.ShouldBeTrue)
	test.That(t, GetName(ctx), test.ShouldHaveLength, 6)
	sub.CDebugf(ctx, "shown %d", 1)
	assertLogMatches(t, notStdout,
		`2023-10-30T13:19:45.806Z	DEBUG	planner.snapper	logging/impl_test.go	shown 1`)
}

func TestObservedTestLogger(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.Warnw("request rejected", "request_id", 7)
	test.That(t, logs.FilterMessage("request rejected").Len(), test.ShouldEqual, 1)
	test.That(t, logs.All()[0].ContextMap()["request_id"], test.ShouldEqual, int64(7))
}

func TestLevelParsing(t *testing.T) {
	for _, name := range []string{"debug", "INFO", "Warn", "error"} {
		level, err := LevelFromString(name)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, strings.ToLower(level.String()), test.ShouldEqual, strings.ToLower(name))
	}
	_, err := LevelFromString("loud")
	test.That(t, err, test.ShouldNotBeNil)

	var level Level
	test.That(t, json.Unmarshal([]byte(`"warn"`), &level), test.ShouldBeNil)
	test.That(t, level, test.ShouldEqual, WARN)
}

func TestUnpairedKey(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.Infow("odd fields", "footsteps", 3, "dangling")
	test.That(t, logs.Len(), test.ShouldEqual, 1)
	fields := logs.All()[0].ContextMap()
	test.That(t, fields["footsteps"], test.ShouldEqual, int64(3))
	test.That(t, fields["error"], test.ShouldContainSubstring, "unpaired log key")
}

func TestLevelAsText(t *testing.T) {
	text, err := WARN.MarshalText()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(text), test.ShouldEqual, "warn")

	logger := NewBlankLogger("blank")
	test.That(t, logger.GetLevel(), test.ShouldEqual, DEBUG)
	sub := logger.Sublogger("child")
	sub.SetLevel(ERROR)
	test.That(t, logger.GetLevel(), test.ShouldEqual, DEBUG)
	test.That(t, sub.GetLevel(), test.ShouldEqual, ERROR)
	test.That(t, sub.Sync(), test.ShouldBeNil)
}

// recordingTB counts Helper calls and keeps logged lines.
type recordingTB struct {
	testing.TB
	helperCalls int
	lines       []string
}

func (r *recordingTB) Helper() { r.helperCalls++ }

func (r *recordingTB) Log(args ...interface{}) {
	r.lines = append(r.lines, fmt.Sprint(args...))
}

func TestTestLoggerMarksHelpers(t *testing.T) {
	tb := &recordingTB{TB: t}
	logger := NewTestLogger(tb).Sublogger("session")

	logger.Infow("planning finished", "footsteps", 3)
	test.That(t, tb.lines, test.ShouldHaveLength, 1)
	// the public method, the shared writer and the appender each mark themselves
	test.That(t, tb.helperCalls, test.ShouldEqual, 3)
	test.That(t, tb.lines[0], test.ShouldContainSubstring, "session")
	test.That(t, tb.lines[0], test.ShouldContainSubstring, "logging/impl_test.go:")
	test.That(t, tb.lines[0], test.ShouldNotContainSubstring, "logging/impl.go:")

	// entries below the level still mark the frames they pass through, but log nothing
	logger.SetLevel(WARN)
	logger.Debug("dropped")
	test.That(t, tb.lines, test.ShouldHaveLength, 1)
}
