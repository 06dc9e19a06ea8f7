// Package apartment runs jobs on a single locked OS thread. The store
// adapter uses it as the UI-associated context for calls that may show
// platform UI.
package apartment

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
)

// ErrClosed is returned by Run once the dispatcher has been closed.
var ErrClosed = errbuilder.New().
	WithCode(errbuilder.CodeInternal).
	WithMsg("apartment dispatcher is closed")

// SetupFunc prepares the locked thread and returns its teardown.
type SetupFunc func() (teardown func(), err error)

type job struct {
	ctx  context.Context
	fn   func() error
	errc chan error
}

type Dispatcher struct {
	name   string
	jobs   chan job
	closed chan struct{}
	done   chan struct{}
	once   sync.Once
}

// Start locks a new goroutine to its OS thread, runs setup on it and
// returns once the thread is ready for jobs.
func Start(name string, setup SetupFunc) (*Dispatcher, error) {
	d := &Dispatcher{
		name:   name,
		jobs:   make(chan job),
		closed: make(chan struct{}),
		done:   make(chan struct{}),
	}
	ready := make(chan error, 1)
	go d.loop(setup, ready)
	if err := <-ready; err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to start %s dispatcher", name)).
			WithCause(err)
	}
	return d, nil
}

func (d *Dispatcher) loop(setup SetupFunc, ready chan<- error) {
	runtime.LockOSThread()
	defer close(d.done)

	teardown := func() {}
	if setup != nil {
		td, err := setup()
		if err != nil {
			// The thread may be left in a half-initialized state, so it stays
			// locked and exits with the goroutine.
			ready <- err
			return
		}
		if td != nil {
			teardown = td
		}
	}
	defer runtime.UnlockOSThread()
	defer teardown()

	log.Debug().Str("dispatcher", d.name).Msg("apartment thread ready")
	ready <- nil
	for {
		select {
		case <-d.closed:
			log.Debug().Str("dispatcher", d.name).Msg("apartment thread stopping")
			return
		case j := <-d.jobs:
			j.errc <- runJob(j)
		}
	}
}

func runJob(j job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg(fmt.Sprintf("apartment job panicked: %v", r))
		}
	}()
	if err := j.ctx.Err(); err != nil {
		return err
	}
	return j.fn()
}

// Run executes fn on the dispatcher thread. It returns fn's error, the
// context error if ctx ends first, or ErrClosed.
func (d *Dispatcher) Run(ctx context.Context, fn func() error) error {
	j := job{ctx: ctx, fn: fn, errc: make(chan error, 1)}
	select {
	case <-d.closed:
		return ErrClosed
	default:
	}
	select {
	case d.jobs <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-d.closed:
		return ErrClosed
	}
	select {
	case err := <-j.errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the thread after the running job, if any, and waits for
// teardown. Safe to call more than once.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		close(d.closed)
	})
	<-d.done
}

// Call is Run for functions that produce a value.
func Call[T any](ctx context.Context, d *Dispatcher, fn func() (T, error)) (T, error) {
	values := make(chan T, 1)
	err := d.Run(ctx, func() error {
		v, err := fn()
		if err != nil {
			return err
		}
		values <- v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return <-values, nil
}
