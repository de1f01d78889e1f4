package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// logrusLogger is the concrete Logger backed by sirupsen/logrus, the
// transport the teacher's config package wires behind this same interface
// (config/config.go's setupLogger).
type logrusLogger struct {
	entry *logrus.Entry
}

// NewLogrus returns a Logger writing structured, human-readable lines to
// os.Stderr through logrus.
func NewLogrus() Logger {
	return NewLogrusWithFormat("text")
}

// NewLogrusWithFormat is like NewLogrus but selects the wire format: "json"
// for machine-readable output, anything else for logrus's human-readable
// TextFormatter. Grounded on the teacher's own --log-format-style switch in
// config/config.go's setupLogger.
func NewLogrusWithFormat(format string) Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	if format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return &logrusLogger{entry: logrus.NewEntry(l)}
}

// Entry exposes l's underlying *logrus.Entry when l was constructed by this
// package, so a caller can hand it directly to a collaborator that expects a
// logrus.FieldLogger (rewrite.Options.Log) instead of this package's own
// Logger interface. ok is false for any other Logger implementation.
func Entry(l Logger) (entry *logrus.Entry, ok bool) {
	ll, ok := l.(*logrusLogger)
	if !ok {
		return nil, false
	}
	return ll.entry, true
}

func (l *logrusLogger) SetToDebug() { l.entry.Logger.SetLevel(logrus.DebugLevel) }
func (l *logrusLogger) SetToInfo()  { l.entry.Logger.SetLevel(logrus.InfoLevel) }
func (l *logrusLogger) SetToError() { l.entry.Logger.SetLevel(logrus.ErrorLevel) }

// Module returns a Logger tagged with ns, the way the teacher's packages
// scope a logger to a subsystem before storing it on a struct field.
func (l *logrusLogger) Module(ns string) Logger {
	return &logrusLogger{entry: l.entry.WithField("module", ns)}
}

func (l *logrusLogger) Debug(msg string, keyValues ...interface{}) {
	l.entry.WithFields(kvToFields(keyValues)).Debug(msg)
}

func (l *logrusLogger) Info(msg string, keyValues ...interface{}) {
	l.entry.WithFields(kvToFields(keyValues)).Info(msg)
}

func (l *logrusLogger) Error(msg string, keyValues ...interface{}) {
	l.entry.WithFields(kvToFields(keyValues)).Error(msg)
}

func (l *logrusLogger) Fatal(msg string, keyValues ...interface{}) {
	l.entry.WithFields(kvToFields(keyValues)).Fatal(msg)
}

func (l *logrusLogger) Warn(msg string, keyValues ...interface{}) {
	l.entry.WithFields(kvToFields(keyValues)).Warn(msg)
}

// kvToFields turns an alternating key, value, key, value... slice into
// logrus.Fields. A trailing unpaired key is logged under "extra" rather than
// dropped silently.
func kvToFields(keyValues []interface{}) logrus.Fields {
	fields := make(logrus.Fields, len(keyValues)/2)
	i := 0
	for ; i+1 < len(keyValues); i += 2 {
		key, ok := keyValues[i].(string)
		if !ok {
			continue
		}
		fields[key] = keyValues[i+1]
	}
	if i < len(keyValues) {
		fields["extra"] = keyValues[i]
	}
	return fields
}
