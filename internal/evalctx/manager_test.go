package evalctx

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cantus-lang/cantus/internal/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu       sync.Mutex
	started  []string
	complete map[string]object.Value
	errs     map[string]error
	done     chan struct{}
}

func newRecordingSink(expectComplete int) *recordingSink {
	return &recordingSink{
		complete: map[string]object.Value{},
		errs:     map[string]error{},
		done:     make(chan struct{}, expectComplete),
	}
}

func (s *recordingSink) ThreadStarted(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = append(s.started, id)
}

func (s *recordingSink) EvalComplete(id string, result object.Value, err error) {
	s.mu.Lock()
	s.complete[id] = result
	s.errs[id] = err
	s.mu.Unlock()
	s.done <- struct{}{}
}

func (s *recordingSink) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-s.done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for EvalComplete")
		}
	}
}

func TestEvalAsyncPostsStartedThenComplete(t *testing.T) {
	sink := newRecordingSink(1)
	m := NewManager(sink)

	id := m.EvalAsync(context.Background(), func(ctx context.Context) (object.Value, error) {
		return object.NewText("done"), nil
	})

	sink.wait(t, 1)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Contains(t, sink.started, id)
	require.Contains(t, sink.complete, id)
	assert.Equal(t, "done", sink.complete[id].String())
	assert.NoError(t, sink.errs[id])
}

func TestEvalAsyncDeregistersBeforeComplete(t *testing.T) {
	sink := newRecordingSink(1)
	m := NewManager(sink)

	release := make(chan struct{})
	id := m.EvalAsync(context.Background(), func(ctx context.Context) (object.Value, error) {
		<-release
		return object.NewText("x"), nil
	})

	assert.Equal(t, 1, m.Count())
	assert.Contains(t, m.Active(), id)

	close(release)
	sink.wait(t, 1)
	assert.Equal(t, 0, m.Count())
}

func TestStopAllCancelsEveryWorkerExceptSpared(t *testing.T) {
	sink := newRecordingSink(3)
	m := NewManager(sink)

	makeRunner := func() Runner {
		return func(ctx context.Context) (object.Value, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}
	}

	a := m.EvalAsync(context.Background(), makeRunner())
	b := m.EvalAsync(context.Background(), makeRunner())
	spared := m.EvalAsync(context.Background(), func(ctx context.Context) (object.Value, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	m.StopAll(spared)
	sink.wait(t, 2)

	sink.mu.Lock()
	_, aDone := sink.complete[a]
	_, bDone := sink.complete[b]
	sink.mu.Unlock()
	assert.True(t, aDone)
	assert.True(t, bDone)

	assert.Equal(t, 1, m.Count())
	m.Stop(spared)
	sink.wait(t, 1)
	assert.Equal(t, 0, m.Count())
}

func TestStopReportsWhetherWorkerExisted(t *testing.T) {
	m := NewManager(nil)
	assert.False(t, m.Stop("not-a-real-id"))
}
