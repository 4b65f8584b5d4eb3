// Package errtrace decorates errors with caller information, producing
// something close to a stack trace without giving up errors.Is/errors.As
// compatibility.
package errtrace

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"
)

// From wraps err with the caller's file and line. It returns nil if err is
// nil. io.EOF and io.ErrUnexpectedEOF are returned unwrapped since callers
// frequently compare against them directly.
func From(err error) error {
	if err == nil {
		return nil
	}
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return err
	}

	_, file, line, ok := runtime.Caller(1)
	return &trace{
		err:      err,
		prev:     nil,
		callerOk: ok,
		file:     filepath.Base(file),
		line:     line,
	}
}

// Wrap attaches sentinel as the classification of prev, keeping prev
// reachable via Unwrap so errors.Is(result, prev) and errors.Is(result,
// sentinel) both hold. Returns nil if prev is nil.
func Wrap(prev, sentinel error) error {
	if prev == nil {
		return nil
	}
	if prev == io.EOF || prev == io.ErrUnexpectedEOF {
		return prev
	}

	_, file, line, ok := runtime.Caller(1)
	return &trace{
		err:      sentinel,
		prev:     prev,
		callerOk: ok,
		file:     filepath.Base(file),
		line:     line,
	}
}

type trace struct {
	err  error
	prev error

	callerOk bool
	file     string
	line     int
}

func (e *trace) Error() string {
	if e.prev == nil {
		if e.callerOk {
			return fmt.Sprintf("%s:%d: %v", e.file, e.line, e.err)
		}
		return e.err.Error()
	}

	prevStr := e.prev.Error()
	if _, ok := e.prev.(*trace); !ok {
		prevStr = strings.ReplaceAll(prevStr, "\n", "\n\t")
	}

	if e.callerOk {
		return fmt.Sprintf("%s:%d: %v\n\t%v", e.file, e.line, e.err, prevStr)
	}
	return fmt.Sprintf("%v\n\t%v", e.err, prevStr)
}

func (e *trace) Unwrap() error {
	if e.prev != nil {
		return e.prev
	}
	return e.err
}

func (e *trace) Is(target error) bool {
	return errors.Is(e.err, target)
}

func (e *trace) As(target interface{}) bool {
	return errors.As(e.err, target)
}
