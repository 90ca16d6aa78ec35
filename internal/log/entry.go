package log

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Entry is a chainable, nil-safe log record. A nil *Entry (returned when its
// module/level is disabled) makes every method below a no-op, so call sites
// can write mod.DebugZ("...").Hex16("addr", a).End() unconditionally without
// paying for field formatting when debug logging is off.
type Entry struct {
	mod    Module
	lvl    logrus.Level
	msg    string
	fields logrus.Fields
}

func newEntry(mod Module, lvl logrus.Level, msg string) *Entry {
	return &Entry{mod: mod, lvl: lvl, msg: msg, fields: make(logrus.Fields, 4)}
}

func (e *Entry) String(key, val string) *Entry {
	if e == nil {
		return nil
	}
	e.fields[key] = val
	return e
}

func (e *Entry) Bool(key string, val bool) *Entry {
	if e == nil {
		return nil
	}
	e.fields[key] = val
	return e
}

func (e *Entry) Int(key string, val int) *Entry {
	if e == nil {
		return nil
	}
	e.fields[key] = val
	return e
}

func (e *Entry) Uint8(key string, val uint8) *Entry {
	if e == nil {
		return nil
	}
	e.fields[key] = val
	return e
}

func (e *Entry) Uint16(key string, val uint16) *Entry {
	if e == nil {
		return nil
	}
	e.fields[key] = val
	return e
}

func (e *Entry) Hex8(key string, val uint8) *Entry {
	if e == nil {
		return nil
	}
	e.fields[key] = fmt.Sprintf("%02x", val)
	return e
}

func (e *Entry) Hex16(key string, val uint16) *Entry {
	if e == nil {
		return nil
	}
	e.fields[key] = fmt.Sprintf("%04x", val)
	return e
}

func (e *Entry) Error(key string, err error) *Entry {
	if e == nil {
		return nil
	}
	e.fields[key] = err
	return e
}

// End flushes the entry to logrus.
func (e *Entry) End() {
	if e == nil {
		return
	}
	logrus.WithFields(e.fields).WithField("mod", e.mod.name()).Log(e.lvl, e.msg)
}
