package supervise

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thejerf/suture/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeError(t *testing.T) {
	live := context.Background()
	done, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, SanitizeError(live, nil))

	plain := errors.New("boom")
	assert.Equal(t, plain, SanitizeError(live, plain))

	// A foreign cancellation is not reported as a context error
	err := SanitizeError(live, context.Canceled)
	require.Error(t, err)
	assert.False(t, errors.Is(err, context.Canceled))
	assert.Contains(t, err.Error(), "context canceled")

	// Our own cancellation is
	assert.ErrorIs(t, SanitizeError(done, plain), context.Canceled)

	err = SanitizeError(live, errors.Join(context.DeadlineExceeded, suture.ErrDoNotRestart))
	assert.ErrorIs(t, err, suture.ErrDoNotRestart)
	assert.False(t, errors.Is(err, context.DeadlineExceeded))
}

func TestFunc(t *testing.T) {
	called := false
	f := NewFunc("worker", func(ctx context.Context) error {
		called = true
		return nil
	})

	assert.Equal(t, "worker", f.String())
	require.NoError(t, f.Serve(context.Background()))
	assert.True(t, called)
}

func TestSupervisorRestartsFailedService(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	super := New("test", zap.New(core))

	var runs atomic.Int32
	Add(super, NewFunc("flaky", func(ctx context.Context) error {
		if runs.Add(1) == 1 {
			// Looks like a context error but ctx is still live
			return context.Canceled
		}
		<-ctx.Done()
		return ctx.Err()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := super.ServeBackground(ctx)

	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-errCh

	assert.GreaterOrEqual(t, logs.FilterMessage("Service failed").Len(), 1)
}

func TestEventHookLogsPanic(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	hook := EventHook(zap.New(core))

	hook(suture.EventServicePanic{SupervisorName: "root", ServiceName: "svc", PanicMsg: "oops"})
	hook(suture.EventBackoff{SupervisorName: "root"})

	require.Equal(t, 2, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Caught a service panic", entry.Message)
	assert.Equal(t, "svc", entry.ContextMap()["service"])
}
