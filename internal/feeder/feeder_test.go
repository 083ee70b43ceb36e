package feeder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextReturnsAlreadyQueuedLineWithoutBlocking(t *testing.T) {
	f := New()
	f.Push("let x = 1")

	line, ok := f.Next()
	require.True(t, ok)
	assert.Equal(t, "let x = 1", line)
	assert.Equal(t, 0, f.Pending())
}

func TestNextBlocksUntilPush(t *testing.T) {
	f := New()
	result := make(chan string, 1)
	go func() {
		line, ok := f.Next()
		require.True(t, ok)
		result <- line
	}()

	time.Sleep(20 * time.Millisecond)
	select {
	case <-result:
		t.Fatal("Next returned before any line was pushed")
	default:
	}

	f.Push("x + 1")

	select {
	case line := <-result:
		assert.Equal(t, "x + 1", line)
	case <-time.After(2 * time.Second):
		t.Fatal("Next never returned after Push")
	}
}

func TestNextDrainsQueueBeforeReportingEnd(t *testing.T) {
	f := New()
	f.Push("a")
	f.Push("b")
	f.End()

	line, ok := f.Next()
	require.True(t, ok)
	assert.Equal(t, "a", line)

	line, ok = f.Next()
	require.True(t, ok)
	assert.Equal(t, "b", line)

	_, ok = f.Next()
	assert.False(t, ok)
}

func TestEndWakesABlockedConsumerWithNothingQueued(t *testing.T) {
	f := New()
	done := make(chan bool, 1)
	go func() {
		_, ok := f.Next()
		done <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	f.End()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("Next never woke up after End")
	}
}

func TestNextContextReturnsErrorWhenCancelledWhileBlocked(t *testing.T) {
	f := New()
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		_, _, err := f.NextContext(ctx)
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("NextContext never returned after cancel")
	}
}

func TestNextContextReturnsImmediatelyIfAlreadyCancelled(t *testing.T) {
	f := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok, err := f.NextContext(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPendingAndEndedReflectState(t *testing.T) {
	f := New()
	assert.Equal(t, 0, f.Pending())
	assert.False(t, f.Ended())

	f.Push("a")
	assert.Equal(t, 1, f.Pending())

	f.End()
	assert.True(t, f.Ended())
}
