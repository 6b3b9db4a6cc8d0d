package errors

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"go.uber.org/atomic"
)

// handlerBox keeps the stored type stable for atomic.Value.
type handlerBox struct {
	h ErrorHandler
}

// global holds the process-wide fallback handler used when an owner has
// none of its own.
var global atomic.Value

func init() {
	global.Store(handlerBox{h: &LogHandler{}})
}

// SetHandler configures the global error handler.
// Pass nil to restore the default LogHandler, which discards everything.
func SetHandler(h ErrorHandler) {
	if h == nil {
		h = &LogHandler{}
	}
	global.Store(handlerBox{h: h})
}

// Handler returns the current global error handler.
func Handler() ErrorHandler {
	return global.Load().(handlerBox).h
}

// Report sends an error to the global handler.
// If err.Timestamp is zero, it is set to the current time.
func Report(err *NavError) {
	ReportTo(nil, err)
}

// ReportTo sends an error to h. A nil h falls back to the global handler.
func ReportTo(h ErrorHandler, err *NavError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	target(h).HandleError(err)
}

// ReportPanic sends a panic error to the global handler.
func ReportPanic(err *PanicError) {
	ReportPanicTo(nil, err)
}

// ReportPanicTo sends a panic error to h. A nil h falls back to the global handler.
func ReportPanicTo(h ErrorHandler, err *PanicError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	target(h).HandlePanic(err)
}

func target(h ErrorHandler) ErrorHandler {
	if h != nil {
		return h
	}
	return Handler()
}

// Recover reports a panic in progress to the global handler.
// Usage: defer errors.Recover("looper.invoke")
func Recover(op string) {
	if r := recover(); r != nil {
		ReportPanic(recovered(op, r))
	}
}

// RecoverWithCallback is like Recover but also calls callback with the
// panic value after reporting it.
func RecoverWithCallback(op string, callback func(r any)) {
	r := recover()
	if r == nil {
		return
	}
	ReportPanic(recovered(op, r))
	if callback != nil {
		callback(r)
	}
}

func recovered(op string, r any) *PanicError {
	return &PanicError{
		Op:         op,
		Value:      r,
		StackTrace: CaptureStack(),
		Timestamp:  time.Now(),
	}
}

// maxStackDepth bounds the frames CaptureStack records.
const maxStackDepth = 32

// CaptureStack returns the caller's stack, one "function\n\tfile:line"
// entry per frame. Frames inside the runtime (panic machinery, deferred
// call trampolines) are left out.
func CaptureStack() string {
	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var sb strings.Builder
	for {
		frame, more := frames.Next()
		if frame.Function != "" && !strings.HasPrefix(frame.Function, "runtime.") {
			fmt.Fprintf(&sb, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		}
		if !more {
			break
		}
	}
	return sb.String()
}
