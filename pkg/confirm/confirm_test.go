package confirm

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlow(t *testing.T, opts Options) *Flow {
	t.Helper()
	f, err := New(opts)
	require.NoError(t, err)
	return f
}

func TestNew_RequiresDelete(t *testing.T) {
	t.Parallel()

	f, err := New(Options{})
	require.Error(t, err)
	assert.Nil(t, f)
}

func TestLifecycle_Success(t *testing.T) {
	t.Parallel()

	var order []string
	var deleted []int
	f := newFlow(t, Options{
		Delete: func(_ context.Context, id int) error {
			deleted = append(deleted, id)
			order = append(order, "delete")
			return nil
		},
		Revalidate: func(context.Context) { order = append(order, "revalidate") },
		Close:      func() { order = append(order, "close") },
	})

	assert.Equal(t, Idle, f.State())

	f.Request(7)
	assert.Equal(t, Confirming, f.State())
	target, ok := f.Target()
	assert.True(t, ok)
	assert.Equal(t, 7, target)

	require.NoError(t, f.Confirm(context.Background()))
	assert.Equal(t, Idle, f.State())
	assert.Equal(t, []int{7}, deleted)
	assert.Equal(t, []string{"delete", "revalidate", "close"}, order)
}

func TestConfirm_WithoutRequest(t *testing.T) {
	t.Parallel()

	f := newFlow(t, Options{Delete: func(context.Context, int) error { return nil }})
	assert.ErrorIs(t, f.Confirm(context.Background()), ErrNoTarget)
}

func TestConfirm_FailureStaysConfirming(t *testing.T) {
	t.Parallel()

	var calls int32
	var toast string
	f := newFlow(t, Options{
		Delete: func(context.Context, int) error {
			if atomic.AddInt32(&calls, 1) == 1 {
				return fmt.Errorf("api error 500: Internal Server Error")
			}
			return nil
		},
		OnError: func(msg string) { toast = msg },
	})

	f.Request(3)
	require.Error(t, f.Confirm(context.Background()))

	// The dialog stays open on the same target so the user can retry.
	assert.Equal(t, Confirming, f.State())
	target, ok := f.Target()
	assert.True(t, ok)
	assert.Equal(t, 3, target)
	assert.Contains(t, toast, "api error 500")
	require.Error(t, f.Err())

	// Retry succeeds without re-selecting.
	require.NoError(t, f.Confirm(context.Background()))
	assert.Equal(t, Idle, f.State())
	assert.NoError(t, f.Err())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestConfirm_RepeatedClicksIssueOneDelete(t *testing.T) {
	t.Parallel()

	var calls int32
	release := make(chan struct{})
	started := make(chan struct{})
	f := newFlow(t, Options{
		Delete: func(context.Context, int) error {
			atomic.AddInt32(&calls, 1)
			close(started)
			<-release
			return nil
		},
	})

	f.Request(5)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = f.Confirm(context.Background())
	}()

	<-started
	assert.Equal(t, Deleting, f.State())

	// Hammer the confirm button while the request is pending.
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, f.Confirm(context.Background()))
		}()
	}
	wg.Wait()

	close(release)
	<-done
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, Idle, f.State())
}

func TestCancel(t *testing.T) {
	t.Parallel()

	f := newFlow(t, Options{Delete: func(context.Context, int) error { return nil }})

	f.Request(2)
	f.Cancel()
	assert.Equal(t, Idle, f.State())
	_, ok := f.Target()
	assert.False(t, ok)
	assert.ErrorIs(t, f.Confirm(context.Background()), ErrNoTarget)
}

func TestRequest_IgnoredWhileDeleting(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	started := make(chan struct{})
	f := newFlow(t, Options{
		Delete: func(context.Context, int) error {
			close(started)
			<-release
			return nil
		},
	})

	f.Request(1)
	go func() { _ = f.Confirm(context.Background()) }()
	<-started

	f.Request(99)
	f.Cancel()
	assert.Equal(t, Deleting, f.State())

	close(release)
	require.Eventually(t, func() bool { return f.State() == Idle }, time.Second, 5*time.Millisecond)
}
