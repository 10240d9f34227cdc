package shutdown_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"notesapi/pkg/shutdown"
)

func TestWaitExecutesHooksOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls atomic.Int32
	hook := func(context.Context) error {
		calls.Add(1)
		return nil
	}
	failing := func(context.Context) error {
		calls.Add(1)
		return errors.New("boom")
	}

	done := make(chan struct{})
	go func() {
		shutdown.Wait(ctx, time.Second, hook, failing, hook)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return")
	}
	assert.Equal(t, int32(3), calls.Load())
}

func TestWaitRespectsTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	slow := func(hookCtx context.Context) error {
		select {
		case <-time.After(5 * time.Second):
			return nil
		case <-hookCtx.Done():
			return hookCtx.Err()
		}
	}

	start := time.Now()
	done := make(chan struct{})
	go func() {
		shutdown.Wait(ctx, 200*time.Millisecond, slow)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Wait ignored the timeout")
	}
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestWaitHooksSeeLiveContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var hookErr atomic.Value
	hook := func(hookCtx context.Context) error {
		hookErr.Store(hookCtx.Err() == nil)
		return nil
	}

	done := make(chan struct{})
	go func() {
		shutdown.Wait(ctx, time.Second, hook)
		close(done)
	}()
	cancel()
	<-done

	assert.Equal(t, true, hookErr.Load(), "hook context must not inherit the parent cancellation")
}
