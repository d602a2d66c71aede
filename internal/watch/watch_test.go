package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_BatchCreated(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, "intents_train.json")
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	events, err := w.Watch(ctx)
	require.NoError(t, err)

	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = os.WriteFile(filepath.Join(dir, "intents_train.json"), []byte(`{"intents": []}`), 0644)
	}()

	select {
	case ev := <-events:
		assert.Equal(t, Created, ev.Operation)
		assert.Equal(t, "intents_train.json", filepath.Base(ev.Path))
	case <-ctx.Done():
		t.Fatal("timeout waiting for event")
	}
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, "intents_train.json")
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	events, err := w.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "intents.json"), []byte("{}"), 0644))

	select {
	case ev := <-events:
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatch_MissingDir(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "nope"), "intents_train.json")
	require.NoError(t, err)
	defer w.Close()

	_, err = w.Watch(context.Background())
	assert.Error(t, err)
}

func TestWatch_ClosesChannelOnCancel(t *testing.T) {
	w, err := New(t.TempDir(), "intents_train.json")
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	events, err := w.Watch(ctx)
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel not closed")
	}
}

func TestOperationString(t *testing.T) {
	assert.Equal(t, "created", Created.String())
	assert.Equal(t, "modified", Modified.String())
}
