// log.go defines the logging collaborator the resampler calls into on the
// two error paths the original reports through roc_log(LogError, ...):
// rejected construction and rejected SetScaling calls. Nothing on the
// per-sample hot path ever touches a Logger.

package resampler

import charmlog "github.com/charmbracelet/log"

// Logger is the minimal logging contract the resampler depends on. It is
// satisfied by *charmlog.Logger out of the box; callers embedding the
// resampler in a larger pipeline can supply their own adapter.
type Logger interface {
	Errorf(format string, args ...any)
}

// noopLogger discards everything; it is the default when no Logger is
// supplied, so a Resampler never needs a nil check on its hot path.
type noopLogger struct{}

func (noopLogger) Errorf(string, ...any) {}

// charmLogger adapts github.com/charmbracelet/log to the Logger
// interface.
type charmLogger struct {
	l *charmlog.Logger
}

// NewCharmLogger wraps a *charmbracelet/log.Logger (or the package-level
// default if l is nil) as a resampler Logger.
func NewCharmLogger(l *charmlog.Logger) Logger {
	if l == nil {
		l = charmlog.Default()
	}
	return &charmLogger{l: l}
}

func (c *charmLogger) Errorf(format string, args ...any) {
	c.l.Errorf(format, args...)
}
