package confirm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskResolveAccept(t *testing.T) {
	b := NewBroker(0)

	ran := false
	p := b.Ask("delete?", "/casts", func(context.Context) error {
		ran = true
		return nil
	})

	require.NotEmpty(t, p.ID)
	assert.Equal(t, 1, b.Len())

	got, err := b.Resolve(context.Background(), p.ID, true)
	require.NoError(t, err)
	assert.Same(t, p, got)
	assert.True(t, ran)

	accepted, err := p.Wait(context.Background())
	require.NoError(t, err)
	assert.True(t, accepted)
}

func TestResolveDeclineSkipsAction(t *testing.T) {
	b := NewBroker(0)

	p := b.Ask("delete?", "/casts", func(context.Context) error {
		t.Fatal("accept action must not run on decline")
		return nil
	})

	_, err := b.Resolve(context.Background(), p.ID, false)
	require.NoError(t, err)

	accepted, err := p.Wait(context.Background())
	require.NoError(t, err)
	assert.False(t, accepted)
}

func TestResolveErrors(t *testing.T) {
	b := NewBroker(0)

	_, err := b.Resolve(context.Background(), "missing", true)
	require.ErrorIs(t, err, ErrPromptNotFound)

	p := b.Ask("delete?", "/", nil)

	_, err = b.Resolve(context.Background(), p.ID, true)
	require.NoError(t, err)

	_, err = b.Resolve(context.Background(), p.ID, false)
	require.ErrorIs(t, err, ErrPromptResolved)
}

func TestResolveActionError(t *testing.T) {
	b := NewBroker(0)
	boom := errors.New("boom")

	p := b.Ask("delete?", "/", func(context.Context) error { return boom })

	_, err := b.Resolve(context.Background(), p.ID, true)
	require.ErrorIs(t, err, boom)

	accepted, err := p.Wait(context.Background())
	assert.True(t, accepted)
	require.ErrorIs(t, err, boom)
}

func TestConcurrentPromptsAreIndependent(t *testing.T) {
	b := NewBroker(0)

	const n = 20

	prompts := make([]*Prompt, n)
	for i := range n {
		prompts[i] = b.Ask("prompt", "/", nil)
	}

	assert.Equal(t, n, b.Len())

	var wg sync.WaitGroup

	results := make([]bool, n)

	for i := range n {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			accepted, err := prompts[i].Wait(context.Background())
			assert.NoError(t, err)

			results[i] = accepted
		}(i)
	}

	for i := range n {
		_, err := b.Resolve(context.Background(), prompts[i].ID, i%2 == 0)
		require.NoError(t, err)
	}

	wg.Wait()

	for i := range n {
		assert.Equal(t, i%2 == 0, results[i], "prompt %d", i)
	}
}

func TestWaitContextCancelled(t *testing.T) {
	b := NewBroker(0)
	p := b.Ask("delete?", "/", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	accepted, err := p.Wait(ctx)
	assert.False(t, accepted)
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, p.Resolved())
}

func TestSweep(t *testing.T) {
	b := NewBroker(time.Minute)
	start := time.Date(2026, 1, 1, 20, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return start }

	pending := b.Ask("pending", "/", nil)
	answered := b.Ask("answered", "/", nil)

	_, err := b.Resolve(context.Background(), answered.ID, true)
	require.NoError(t, err)

	assert.Equal(t, 0, b.Sweep(start.Add(30*time.Second)))
	assert.Equal(t, 2, b.Sweep(start.Add(2*time.Minute)))
	assert.Equal(t, 0, b.Len())

	accepted, err := pending.Wait(context.Background())
	assert.False(t, accepted)
	require.ErrorIs(t, err, ErrPromptExpired)

	_, err = b.Get(pending.ID)
	require.ErrorIs(t, err, ErrPromptNotFound)
}

func TestRunStopsWithContext(t *testing.T) {
	b := NewBroker(time.Millisecond)
	b.Ask("stale", "/", nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		b.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return b.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestAskOptions(t *testing.T) {
	b := NewBroker(0)

	p := b.Ask("delete?", "/casts", nil, WithOperation("Deleting the cast"), WithSuccess("Deleted"), WithOwner("sid"))
	assert.Equal(t, "Deleting the cast", p.Operation)
	assert.Equal(t, "Deleted", p.Success)
	assert.Equal(t, "sid", p.Owner)

	got, err := b.Get(p.ID)
	require.NoError(t, err)
	assert.Same(t, p, got)
}
