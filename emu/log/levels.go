package log

import (
	"io"

	"gopkg.in/Sirupsen/logrus.v0"
)

type Level uint8

// Levels mirror logrus ones, so that they can be converted directly.
const (
	PanicLevel Level = Level(logrus.PanicLevel)
	FatalLevel Level = Level(logrus.FatalLevel)
	ErrorLevel Level = Level(logrus.ErrorLevel)
	WarnLevel  Level = Level(logrus.WarnLevel)
	InfoLevel  Level = Level(logrus.InfoLevel)
	DebugLevel Level = Level(logrus.DebugLevel)
)

func init() {
	// Filtering is performed per module, let everything through logrus.
	logrus.SetLevel(logrus.DebugLevel)
}

// SetOutput sets the destination of all log entries.
func SetOutput(w io.Writer) {
	logrus.SetOutput(w)
}

// A ContextAdder adds contextual fields to every log entry (for example the
// current CPU program counter).
type ContextAdder interface {
	AddLogContext(entry *EntryZ)
}

var contexts []ContextAdder

// AddContext registers a ContextAdder.
func AddContext(ctx ContextAdder) {
	contexts = append(contexts, ctx)
}

// ResetContexts removes all registered ContextAdder.
func ResetContexts() {
	contexts = nil
}
