package logging

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// errUnpairedKey is attached in place of a value when a `w` call has an odd number of arguments.
var errUnpairedKey = errors.New("unpaired log key")

// impl fans every entry out to its appenders. Subloggers share the appender slice but own their
// level.
type impl struct {
	name      string
	level     AtomicLevel
	inUTC     bool
	appenders []Appender
	// helper is the testing.TB of test loggers, nil otherwise.
	helper interface{ Helper() }
}

func newImpl(name string, level Level, inUTC bool, appenders ...Appender) *impl {
	return &impl{name: name, level: NewAtomicLevelAt(level), inUTC: inUTC, appenders: appenders}
}

func (imp *impl) AddAppender(appender Appender) {
	imp.appenders = append(imp.appenders, appender)
}

func (imp *impl) SetLevel(level Level) {
	imp.level.Set(level)
}

func (imp *impl) GetLevel() Level {
	return imp.level.Get()
}

func (imp *impl) Sublogger(subname string) Logger {
	name := subname
	if imp.name != "" {
		name = strings.Join([]string{imp.name, subname}, ".")
	}
	sub := newImpl(name, imp.level.Get(), imp.inUTC)
	sub.appenders = imp.appenders
	sub.helper = imp.helper
	return sub
}

func (imp *impl) Sync() error {
	var err error
	for _, appender := range imp.appenders {
		err = multierr.Append(err, appender.Sync())
	}
	return err
}

func (imp *impl) enabled(ctx context.Context, level Level) bool {
	if level >= imp.level.Get() {
		return true
	}
	return level == DEBUG && IsDebugMode(ctx)
}

// write builds the entry and hands it to every appender. Appender failures go to stderr since
// there is nowhere else to report them. Each frame between the caller and the test appender
// marks itself as a test helper, so `go test` attributes lines to the calling code.
func (imp *impl) write(ctx context.Context, level Level, build func() (string, []zapcore.Field)) {
	if imp.helper != nil {
		imp.helper.Helper()
	}
	if !imp.enabled(ctx, level) {
		return
	}
	msg, fields := build()
	entry := zapcore.Entry{
		Level:      level.AsZap(),
		Time:       time.Now(),
		LoggerName: imp.name,
		Message:    msg,
		Caller:     callerOutsidePackage(),
	}
	if imp.inUTC {
		entry.Time = entry.Time.UTC()
	}
	for _, appender := range imp.appenders {
		if err := appender.Write(entry, fields); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

func sprint(args []interface{}) func() (string, []zapcore.Field) {
	return func() (string, []zapcore.Field) { return fmt.Sprint(args...), nil }
}

func sprintf(template string, args []interface{}) func() (string, []zapcore.Field) {
	return func() (string, []zapcore.Field) { return fmt.Sprintf(template, args...), nil }
}

func pairs(msg string, keysAndValues []interface{}) func() (string, []zapcore.Field) {
	return func() (string, []zapcore.Field) { return msg, pairsToFields(keysAndValues) }
}

// pairsToFields turns alternating keys and values into zap fields, preserving order.
func pairsToFields(keysAndValues []interface{}) []zapcore.Field {
	fields := make([]zapcore.Field, 0, (len(keysAndValues)+1)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		if i+1 == len(keysAndValues) {
			fields = append(fields, zap.Error(errors.Wrap(errUnpairedKey, key)))
			break
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}

func (imp *impl) Debug(args ...interface{}) {
	if imp.helper != nil {
		imp.helper.Helper()
	}
	imp.write(context.Background(), DEBUG, sprint(args))
}

func (imp *impl) Debugf(template string, args ...interface{}) {
	if imp.helper != nil {
		imp.helper.Helper()
	}
	imp.write(context.Background(), DEBUG, sprintf(template, args))
}

func (imp *impl) Debugw(msg string, keysAndValues ...interface{}) {
	if imp.helper != nil {
		imp.helper.Helper()
	}
	imp.write(context.Background(), DEBUG, pairs(msg, keysAndValues))
}

func (imp *impl) CDebug(ctx context.Context, args ...interface{}) {
	if imp.helper != nil {
		imp.helper.Helper()
	}
	imp.write(ctx, DEBUG, sprint(args))
}

func (imp *impl) CDebugf(ctx context.Context, template string, args ...interface{}) {
	if imp.helper != nil {
		imp.helper.Helper()
	}
	imp.write(ctx, DEBUG, sprintf(template, args))
}

func (imp *impl) CDebugw(ctx context.Context, msg string, keysAndValues ...interface{}) {
	if imp.helper != nil {
		imp.helper.Helper()
	}
	imp.write(ctx, DEBUG, pairs(msg, keysAndValues))
}

func (imp *impl) Info(args ...interface{}) {
	if imp.helper != nil {
		imp.helper.Helper()
	}
	imp.write(context.Background(), INFO, sprint(args))
}

func (imp *impl) Infof(template string, args ...interface{}) {
	if imp.helper != nil {
		imp.helper.Helper()
	}
	imp.write(context.Background(), INFO, sprintf(template, args))
}

func (imp *impl) Infow(msg string, keysAndValues ...interface{}) {
	if imp.helper != nil {
		imp.helper.Helper()
	}
	imp.write(context.Background(), INFO, pairs(msg, keysAndValues))
}

func (imp *impl) Warn(args ...interface{}) {
	if imp.helper != nil {
		imp.helper.Helper()
	}
	imp.write(context.Background(), WARN, sprint(args))
}

func (imp *impl) Warnf(template string, args ...interface{}) {
	if imp.helper != nil {
		imp.helper.Helper()
	}
	imp.write(context.Background(), WARN, sprintf(template, args))
}

func (imp *impl) Warnw(msg string, keysAndValues ...interface{}) {
	if imp.helper != nil {
		imp.helper.Helper()
	}
	imp.write(context.Background(), WARN, pairs(msg, keysAndValues))
}

func (imp *impl) Error(args ...interface{}) {
	if imp.helper != nil {
		imp.helper.Helper()
	}
	imp.write(context.Background(), ERROR, sprint(args))
}

func (imp *impl) Errorf(template string, args ...interface{}) {
	if imp.helper != nil {
		imp.helper.Helper()
	}
	imp.write(context.Background(), ERROR, sprintf(template, args))
}

func (imp *impl) Errorw(msg string, keysAndValues ...interface{}) {
	if imp.helper != nil {
		imp.helper.Helper()
	}
	imp.write(context.Background(), ERROR, pairs(msg, keysAndValues))
}

// callerOutsidePackage walks up the stack past the logger's own methods, so entries report the
// line that called the logger. It must be called directly from write.
func callerOutsidePackage() zapcore.EntryCaller {
	pcs := make([]uintptr, 8)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if !strings.HasPrefix(frame.Function, implMethodPrefix) {
			return zapcore.NewEntryCaller(frame.PC, frame.File, frame.Line, frame.PC != 0)
		}
		if !more {
			return zapcore.EntryCaller{}
		}
	}
}

const implMethodPrefix = "go.viam.com/footsteps/logging.(*impl)."
