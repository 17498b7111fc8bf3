package log

import (
	"gopkg.in/Sirupsen/logrus.v0"
)

// Entry is the printf-like counterpart of EntryZ, for the rare messages
// that are not on a hot path.
type Entry struct {
	mod Module
}

func (entry Entry) log() *logrus.Entry {
	fields := make(logrus.Fields, 8)
	fields["_mod"] = modNames[entry.mod]

	var z EntryZ
	for _, c := range contexts {
		c.AddLogContext(&z)
	}
	for i := range z.zfbuf[:z.zfidx] {
		fields[z.zfbuf[i].Key] = z.zfbuf[i].Value()
	}
	return logrus.StandardLogger().WithFields(fields)
}

func (entry Entry) Warnf(format string, args ...any) {
	if entry.mod.Enabled(WarnLevel) {
		entry.log().Warnf(format, args...)
	}
}
