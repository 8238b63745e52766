package terminal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dop251/goja"
)

// DefaultEvalTimeout bounds a single calc expression
const DefaultEvalTimeout = 100 * time.Millisecond

// Evaluator runs calc expressions
type Evaluator interface {
	Eval(ctx context.Context, expr string) (string, error)
}

// Sandbox evaluates JavaScript expressions in a fresh goja VM per call
type Sandbox struct {
	Timeout time.Duration
}

// NewSandbox creates a sandbox with the given timeout (DefaultEvalTimeout when zero)
func NewSandbox(timeout time.Duration) *Sandbox {
	if timeout <= 0 {
		timeout = DefaultEvalTimeout
	}
	return &Sandbox{Timeout: timeout}
}

// Eval runs expr and formats its value
func (s *Sandbox) Eval(ctx context.Context, expr string) (string, error) {
	vm := goja.New()
	vm.SetMaxCallStackSize(256)
	for _, name := range []string{"require", "process", "module", "exports"} {
		if err := vm.Set(name, goja.Undefined()); err != nil {
			return "", err
		}
	}

	timer := time.AfterFunc(s.Timeout, func() {
		vm.Interrupt("execution timeout exceeded")
	})
	defer timer.Stop()

	stop := context.AfterFunc(ctx, func() {
		vm.Interrupt("context cancelled")
	})
	defer stop()

	val, err := vm.RunString(expr)
	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			return "", fmt.Errorf("%v", interrupted.Value())
		}
		var exception *goja.Exception
		if errors.As(err, &exception) {
			return "", errors.New(exception.Value().String())
		}
		return "", err
	}

	if val == nil || goja.IsUndefined(val) {
		return "undefined", nil
	}
	if goja.IsNull(val) {
		return "null", nil
	}
	return val.String(), nil
}
