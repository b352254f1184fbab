package reactor

import (
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// logifaceLogger adapts a github.com/joeycumines/logiface logger (backed,
// by default, by stumpy's JSON event encoder) to this package's Logger
// interface, so a Loop can be pointed at the wider logiface ecosystem
// (stumpy, logrus, zerolog adapters all exist in the same module family)
// instead of only the package's own DefaultLogger/WriterLogger.
type logifaceLogger struct {
	logger *logiface.Logger[*stumpy.Event]
	level  LogLevel
}

// NewLogifaceLogger wraps a *logiface.Logger[*stumpy.Event] (typically
// built with stumpy.L.New) as a reactor Logger, reporting everything at or
// above minLevel.
func NewLogifaceLogger(logger *logiface.Logger[*stumpy.Event], minLevel LogLevel) Logger {
	return &logifaceLogger{logger: logger, level: minLevel}
}

func (l *logifaceLogger) IsEnabled(level LogLevel) bool {
	return level >= l.level
}

func (l *logifaceLogger) Log(entry LogEntry) {
	if !l.IsEnabled(entry.Level) {
		return
	}

	var ev *logiface.Builder[*stumpy.Event]
	switch entry.Level {
	case LevelDebug:
		ev = l.logger.Debug()
	case LevelWarn:
		ev = l.logger.Warning()
	case LevelError:
		ev = l.logger.Err()
	default:
		ev = l.logger.Info()
	}
	if ev == nil {
		return
	}

	if entry.Category != "" {
		ev = ev.Str(`category`, entry.Category)
	}
	if entry.LoopID != 0 {
		ev = ev.Int64(`loop_id`, entry.LoopID)
	}
	if entry.TaskID != 0 {
		ev = ev.Int64(`task_id`, entry.TaskID)
	}
	if entry.TimerID != 0 {
		ev = ev.Int64(`timer_id`, entry.TimerID)
	}
	if entry.Err != nil {
		ev = ev.Err(entry.Err)
	}
	for k, v := range entry.Context {
		ev = ev.Any(k, v)
	}
	ev.Log(entry.Message)
}
