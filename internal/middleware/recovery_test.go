package middleware

import (
	"errors"
	"testing"
)

func TestSafeCallPassesThrough(t *testing.T) {
	want := errors.New("boom")
	if err := SafeCall(func() error { return want }); !errors.Is(err, want) {
		t.Errorf("expected original error, got %v", err)
	}
	if err := SafeCall(func() error { return nil }); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestSafeCallRecovers(t *testing.T) {
	err := SafeCall(func() error { panic("bad state") })
	var perr *PanicError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PanicError, got %v", err)
	}
	if perr.Value != "bad state" || len(perr.Stack) == 0 {
		t.Errorf("unexpected panic error %+v", perr)
	}
}

func TestSafeCallWithResult(t *testing.T) {
	n, err := SafeCallWithResult(func() (int, error) { return 42, nil })
	if err != nil || n != 42 {
		t.Errorf("got %d, %v", n, err)
	}
	_, err = SafeCallWithResult(func() (int, error) { panic("x") })
	if err == nil {
		t.Error("expected error from panic")
	}
}

func TestRunE(t *testing.T) {
	wrapped := RunE(func(_ *struct{}, args []string) error {
		if len(args) == 0 {
			panic("no args")
		}
		return nil
	})
	if err := wrapped(nil, []string{"a"}); err != nil {
		t.Errorf("unexpected error %v", err)
	}
	if err := wrapped(nil, nil); err == nil {
		t.Error("expected recovered panic")
	}
}
