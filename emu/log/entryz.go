package log

import (
	"fmt"
	"sync"
	"time"

	"gopkg.in/Sirupsen/logrus.v0"
)

const maxZFields = 16

// EntryZ is a log entry built field by field. A nil *EntryZ is valid and
// turns every method into a no-op, which is what a disabled level returns.
type EntryZ struct {
	lvl Level
	msg string
	mod Module

	zfbuf [maxZFields]ZField
	zfidx int
}

var entryPool = sync.Pool{
	New: func() any { return new(EntryZ) },
}

func NewEntryZ() *EntryZ {
	e := entryPool.Get().(*EntryZ)
	e.zfidx = 0
	return e
}

func (z *EntryZ) field(typ FieldType, key string) *ZField {
	if z == nil || z.zfidx == maxZFields {
		return nil
	}
	f := &z.zfbuf[z.zfidx]
	z.zfidx++
	*f = ZField{Type: typ, Key: key}
	return f
}

func (z *EntryZ) String(key, val string) *EntryZ {
	if f := z.field(FieldTypeString, key); f != nil {
		f.String = val
	}
	return z
}

func (z *EntryZ) Bool(key string, val bool) *EntryZ {
	if f := z.field(FieldTypeBool, key); f != nil {
		f.Boolean = val
	}
	return z
}

func (z *EntryZ) Int(key string, val int) *EntryZ {
	if f := z.field(FieldTypeInt, key); f != nil {
		f.Integer = uint64(val)
	}
	return z
}

func (z *EntryZ) Int64(key string, val int64) *EntryZ {
	if f := z.field(FieldTypeInt, key); f != nil {
		f.Integer = uint64(val)
	}
	return z
}

func (z *EntryZ) Uint64(key string, val uint64) *EntryZ {
	if f := z.field(FieldTypeUint, key); f != nil {
		f.Integer = val
	}
	return z
}

func (z *EntryZ) Float(key string, val float64) *EntryZ {
	if f := z.field(FieldTypeFloat, key); f != nil {
		f.Float = val
	}
	return z
}

func (z *EntryZ) Hex8(key string, val uint8) *EntryZ {
	if f := z.field(FieldTypeHex8, key); f != nil {
		f.Integer = uint64(val)
	}
	return z
}

func (z *EntryZ) Hex16(key string, val uint16) *EntryZ {
	if f := z.field(FieldTypeHex16, key); f != nil {
		f.Integer = uint64(val)
	}
	return z
}

func (z *EntryZ) Hex32(key string, val uint32) *EntryZ {
	if f := z.field(FieldTypeHex32, key); f != nil {
		f.Integer = uint64(val)
	}
	return z
}

func (z *EntryZ) Error(key string, err error) *EntryZ {
	if f := z.field(FieldTypeError, key); f != nil {
		f.Error = err
	}
	return z
}

func (z *EntryZ) Duration(key string, d time.Duration) *EntryZ {
	if f := z.field(FieldTypeDuration, key); f != nil {
		f.Duration = d
	}
	return z
}

func (z *EntryZ) Stringer(key string, s fmt.Stringer) *EntryZ {
	if f := z.field(FieldTypeStringer, key); f != nil {
		f.Interface = s
	}
	return z
}

func (z *EntryZ) Blob(key string, buf []byte) *EntryZ {
	if f := z.field(FieldTypeBlob, key); f != nil {
		f.Blob = buf
	}
	return z
}

// End emits the entry and gives it back to the pool. The entry must not be
// used afterwards.
func (z *EntryZ) End() {
	if z == nil {
		return
	}

	fields := make(logrus.Fields, z.zfidx+4)
	fields["_mod"] = z.mod.String()
	for _, c := range contexts {
		c.AddLogContext(z)
	}
	for i := range z.zfbuf[:z.zfidx] {
		fields[z.zfbuf[i].Key] = z.zfbuf[i].Value()
	}

	entry := logrus.StandardLogger().WithFields(fields)
	lvl, msg := z.lvl, z.msg
	clear(z.zfbuf[:z.zfidx])
	entryPool.Put(z)

	switch lvl {
	case DebugLevel:
		entry.Debug(msg)
	case InfoLevel:
		entry.Info(msg)
	case WarnLevel:
		entry.Warn(msg)
	case ErrorLevel:
		entry.Error(msg)
	case FatalLevel:
		entry.Fatal(msg)
	case PanicLevel:
		entry.Panic(msg)
	}
}
