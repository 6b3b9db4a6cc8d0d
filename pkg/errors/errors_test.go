package errors

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNavErrorString(t *testing.T) {
	err := &NavError{
		Op:   "navigation.Push",
		Kind: KindPrecondition,
		Err:  ErrNotAttached,
	}
	got := err.Error()
	want := "navigation.Push [precondition]: precondition violated: screen not attached"
	if got != want {
		t.Errorf("NavError.Error() = %q, want %q", got, want)
	}
}

func TestNavErrorWithContainer(t *testing.T) {
	err := &NavError{
		Op:        "navigation.Pop",
		Kind:      KindCommit,
		Container: "main",
		Err:       fmt.Errorf("boom"),
	}
	if !strings.Contains(err.Error(), "container=main") {
		t.Errorf("error string %q should contain container id", err.Error())
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindPrecondition, "precondition"},
		{KindNotFound, "not_found"},
		{KindInvertedRange, "inverted_range"},
		{KindCommit, "commit"},
		{KindPanic, "panic"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindUnknown},
		{"plain", fmt.Errorf("x"), KindUnknown},
		{"precondition", Precondition("screen %q", "a"), KindPrecondition},
		{"show index", fmt.Errorf("load: %w", ErrShowIndexOutOfRange), KindPrecondition},
		{"commit", &CommitError{Container: "c", Err: fmt.Errorf("x")}, KindCommit},
		{"rejected batch", &CommitError{Container: "c", Err: Precondition("duplicate")}, KindCommit},
		{"committed twice", ErrCommitted, KindCommit},
		{"nav error", &NavError{Kind: KindInvertedRange, Err: fmt.Errorf("x")}, KindInvertedRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPanicErrorString(t *testing.T) {
	err := &PanicError{Value: "test panic", Timestamp: time.Now()}
	if got, want := err.Error(), "panic: test panic"; got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}

	err.Op = "navigation.Pop"
	if got, want := err.Error(), "panic in navigation.Pop: test panic"; got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
}

func TestReport(t *testing.T) {
	var captured *NavError
	handler := &testHandler{onError: func(err *NavError) { captured = err }}

	oldHandler := Handler()
	SetHandler(handler)
	defer SetHandler(oldHandler)

	Report(&NavError{Op: "test.op", Kind: KindCommit, Err: fmt.Errorf("x")})

	if captured == nil {
		t.Fatal("expected error to be captured")
	}
	if captured.Op != "test.op" {
		t.Errorf("Op = %q, want %q", captured.Op, "test.op")
	}
	if captured.Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestReportToPrefersGivenHandler(t *testing.T) {
	var global, local int
	oldHandler := Handler()
	SetHandler(&testHandler{onError: func(*NavError) { global++ }})
	defer SetHandler(oldHandler)

	ReportTo(&testHandler{onError: func(*NavError) { local++ }}, &NavError{Op: "x"})
	ReportTo(nil, &NavError{Op: "y"})

	if local != 1 || global != 1 {
		t.Errorf("local=%d global=%d, want 1 and 1", local, global)
	}
}

func TestRecover(t *testing.T) {
	var captured *PanicError
	oldHandler := Handler()
	SetHandler(&testHandler{onPanic: func(err *PanicError) { captured = err }})
	defer SetHandler(oldHandler)

	called := false
	func() {
		defer RecoverWithCallback("test.recover", func(any) { called = true })
		panic("intentional test panic")
	}()

	if captured == nil {
		t.Fatal("expected panic to be recovered and captured")
	}
	if captured.Value != "intentional test panic" {
		t.Errorf("Value = %v, want %q", captured.Value, "intentional test panic")
	}
	if captured.Op != "test.recover" {
		t.Errorf("Op = %q, want %q", captured.Op, "test.recover")
	}
	if !called {
		t.Error("callback not invoked")
	}
}

func TestCaptureStack(t *testing.T) {
	stack := CaptureStack()
	if !strings.Contains(stack, "testing") && !strings.Contains(stack, "runtime") {
		t.Errorf("stack trace should contain testing or runtime frames, got: %s", stack)
	}
}

func TestSetHandlerNil(t *testing.T) {
	oldHandler := Handler()
	defer SetHandler(oldHandler)

	SetHandler(nil)
	if _, ok := Handler().(*LogHandler); !ok {
		t.Errorf("SetHandler(nil) should set LogHandler, got %T", Handler())
	}
}

func TestLogHandler(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	h := NewLogHandler(zap.New(core), true)

	h.HandleError(&NavError{Op: "navigation.Pop", Kind: KindCommit, Container: "main", Err: fmt.Errorf("x"), StackTrace: "trace"})
	h.HandlePanic(&PanicError{Op: "navigation.Push", Value: "boom"})

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["container"] != "main" || fields["stack"] != "trace" {
		t.Errorf("unexpected fields %v", fields)
	}
	if entries[1].Message != "navigation panic" {
		t.Errorf("Message = %q", entries[1].Message)
	}
}

type testHandler struct {
	onError func(*NavError)
	onPanic func(*PanicError)
}

func (h *testHandler) HandleError(err *NavError) {
	if h.onError != nil {
		h.onError(err)
	}
}

func (h *testHandler) HandlePanic(err *PanicError) {
	if h.onPanic != nil {
		h.onPanic(err)
	}
}
