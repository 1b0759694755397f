// Package middleware wraps command bodies with panic recovery
package middleware

import (
	"fmt"
	"runtime/debug"

	"opsdeck/internal/logger"
)

// PanicError is returned when a wrapped function panicked
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// SafeCall calls fn, turning a panic into a *PanicError
func SafeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			logger.Error("panic recovered",
				"error", fmt.Sprintf("%v", r),
				"stack", string(stack),
			)
			err = &PanicError{Value: r, Stack: stack}
		}
	}()
	return fn()
}

// SafeCallWithResult is SafeCall for functions returning a value
func SafeCallWithResult[T any](fn func() (T, error)) (result T, err error) {
	err = SafeCall(func() error {
		var innerErr error
		result, innerErr = fn()
		return innerErr
	})
	return result, err
}

// RunE adapts a cobra-style RunE body so panics become errors
func RunE[C any](fn func(cmd C, args []string) error) func(cmd C, args []string) error {
	return func(cmd C, args []string) error {
		return SafeCall(func() error { return fn(cmd, args) })
	}
}
