package apartment

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherRunsJobsSerially(t *testing.T) {
	d, err := Start("test", nil)
	require.NoError(t, err)
	defer d.Close()

	var active, maxActive int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := d.Run(t.Context(), func() error {
				n := atomic.AddInt32(&active, 1)
				for {
					cur := atomic.LoadInt32(&maxActive)
					if n <= cur || atomic.CompareAndSwapInt32(&maxActive, cur, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&active, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&maxActive))
}

func TestDispatcherSetupAndTeardown(t *testing.T) {
	var setups, teardowns int32
	d, err := Start("test", func() (func(), error) {
		atomic.AddInt32(&setups, 1)
		return func() { atomic.AddInt32(&teardowns, 1) }, nil
	})
	require.NoError(t, err)
	require.NoError(t, d.Run(t.Context(), func() error { return nil }))
	d.Close()
	d.Close()
	assert.Equal(t, int32(1), atomic.LoadInt32(&setups))
	assert.Equal(t, int32(1), atomic.LoadInt32(&teardowns))
}

func TestDispatcherSetupFailure(t *testing.T) {
	_, err := Start("test", func() (func(), error) {
		return nil, errors.New("RoInitialize failed")
	})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInternal, errbuilder.CodeOf(err))
}

func TestDispatcherReturnsJobError(t *testing.T) {
	d, err := Start("test", nil)
	require.NoError(t, err)
	defer d.Close()

	want := errors.New("job failed")
	assert.ErrorIs(t, d.Run(t.Context(), func() error { return want }), want)
}

func TestDispatcherRecoversPanic(t *testing.T) {
	d, err := Start("test", nil)
	require.NoError(t, err)
	defer d.Close()

	err = d.Run(t.Context(), func() error { panic("boom") })
	require.Error(t, err)
	require.NoError(t, d.Run(t.Context(), func() error { return nil }))
}

func TestDispatcherCanceledContext(t *testing.T) {
	d, err := Start("test", nil)
	require.NoError(t, err)
	defer d.Close()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	ran := false
	err = d.Run(ctx, func() error {
		ran = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran)
}

func TestDispatcherRunAfterClose(t *testing.T) {
	d, err := Start("test", nil)
	require.NoError(t, err)
	d.Close()
	assert.ErrorIs(t, d.Run(t.Context(), func() error { return nil }), ErrClosed)
}

func TestCall(t *testing.T) {
	d, err := Start("test", nil)
	require.NoError(t, err)
	defer d.Close()

	got, err := Call(t.Context(), d, func() (string, error) { return "completed", nil })
	require.NoError(t, err)
	assert.Equal(t, "completed", got)

	_, err = Call(t.Context(), d, func() (int, error) { return 0, errors.New("nope") })
	assert.Error(t, err)
}
