package supervise

import (
	"context"
	"errors"
	"time"

	"github.com/thejerf/suture/v4"
	"go.uber.org/zap"
)

// New creates a supervisor that logs its events through logger
func New(name string, logger *zap.Logger) *suture.Supervisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return suture.New(name, suture.Spec{
		EventHook: EventHook(logger),
		Timeout:   10 * time.Second,
	})
}

// EventHook maps supervisor events to log entries
func EventHook(logger *zap.Logger) suture.EventHook {
	return func(ei suture.Event) {
		switch e := ei.(type) {
		case suture.EventStopTimeout:
			logger.Warn("Service failed to terminate in a timely manner",
				zap.String("supervisor", e.SupervisorName),
				zap.String("service", e.ServiceName))
		case suture.EventServicePanic:
			logger.Error("Caught a service panic",
				zap.String("supervisor", e.SupervisorName),
				zap.String("service", e.ServiceName),
				zap.String("panic", e.PanicMsg),
				zap.String("stacktrace", e.Stacktrace))
		case suture.EventServiceTerminate:
			logger.Error("Service failed",
				zap.Any("error", e.Err),
				zap.Bool("restarting", e.Restarting),
				zap.String("supervisor", e.SupervisorName),
				zap.String("service", e.ServiceName))
		case suture.EventBackoff:
			logger.Warn("Too many service failures, entering backoff",
				zap.String("supervisor", e.SupervisorName))
		case suture.EventResume:
			logger.Info("Exiting backoff state",
				zap.String("supervisor", e.SupervisorName))
		default:
			logger.Warn("Unknown supervisor event", zap.Int("type", int(e.Type())))
		}
	}
}

// Service is a suture service with a name
type Service interface {
	String() string
	suture.Service
}

// Add registers service with sanitized error handling
func Add(super *suture.Supervisor, service Service) suture.ServiceToken {
	return super.Add(sanitized{Service: service})
}

type sanitized struct {
	Service
}

func (s sanitized) Serve(ctx context.Context) error {
	return SanitizeError(ctx, s.Service.Serve(ctx))
}

// SanitizeError hides context errors that did not come from ctx. Suture
// stops restarting a service once it returns a context error.
func SanitizeError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var errs []error
	if errors.Is(err, suture.ErrDoNotRestart) {
		errs = append(errs, suture.ErrDoNotRestart)
	}
	if errors.Is(err, suture.ErrTerminateSupervisorTree) {
		errs = append(errs, suture.ErrTerminateSupervisorTree)
	}
	errs = append(errs, errors.New(err.Error()))
	return errors.Join(errs...)
}

// Func adapts a function to Service
type Func struct {
	name string
	fn   func(ctx context.Context) error
}

// NewFunc creates a named service from fn
func NewFunc(name string, fn func(ctx context.Context) error) Func {
	return Func{name: name, fn: fn}
}

func (f Func) String() string {
	return f.name
}

// Serve runs the function
func (f Func) Serve(ctx context.Context) error {
	return f.fn(ctx)
}
