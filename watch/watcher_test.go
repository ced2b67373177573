package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mock types ---

type MockSynthesizer struct {
	mock.Mock
}

func (m *MockSynthesizer) Synthesize(ctx context.Context, text, dest string) error {
	args := m.Called(ctx, text, dest)
	return args.Error(0)
}

// --- Tests ---

func startWatcher(t *testing.T, w *Watcher) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestWatcher_SynthesizesWrittenFile(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()

	synth := new(MockSynthesizer)
	synth.On("Synthesize", mock.Anything, "hello world", filepath.Join(out, "note")).Return(nil).Once()

	w, err := New(dir, out, synth, WithDebounce(50*time.Millisecond))
	require.NoError(t, err)
	startWatcher(t, w)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "note.txt"), []byte("hello world\n"), 0o644))

	assert.Eventually(t, func() bool {
		return w.ProcessedCount() == 1
	}, 5*time.Second, 20*time.Millisecond)

	synth.AssertExpectations(t)
}

func TestWatcher_DebouncesRepeatedWrites(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()

	synth := new(MockSynthesizer)
	synth.On("Synthesize", mock.Anything, "final", mock.Anything).Return(nil).Once()

	w, err := New(dir, out, synth, WithDebounce(200*time.Millisecond))
	require.NoError(t, err)
	startWatcher(t, w)

	path := filepath.Join(dir, "draft.txt")
	require.NoError(t, os.WriteFile(path, []byte("partial"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("final"), 0o644))

	assert.Eventually(t, func() bool {
		return w.ProcessedCount() == 1
	}, 5*time.Second, 20*time.Millisecond)

	// No second synthesis fires after the debounce window drains.
	assert.Never(t, func() bool {
		return w.ProcessedCount() > 1
	}, 500*time.Millisecond, 50*time.Millisecond)

	synth.AssertExpectations(t)
}

func TestWatcher_IgnoresNonTextFiles(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()

	synth := new(MockSynthesizer)

	w, err := New(dir, out, synth, WithDebounce(50*time.Millisecond))
	require.NoError(t, err)
	startWatcher(t, w)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("ignored"), 0o644))

	assert.Never(t, func() bool {
		return w.ProcessedCount() > 0
	}, 500*time.Millisecond, 50*time.Millisecond)

	synth.AssertNotCalled(t, "Synthesize", mock.Anything, mock.Anything, mock.Anything)
}

func TestWatcher_SkipsEmptyFiles(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()

	synth := new(MockSynthesizer)

	w, err := New(dir, out, synth, WithDebounce(50*time.Millisecond))
	require.NoError(t, err)
	startWatcher(t, w)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.txt"), []byte("  \n"), 0o644))

	assert.Never(t, func() bool {
		return w.ProcessedCount() > 0 || w.FailedCount() > 0
	}, 500*time.Millisecond, 50*time.Millisecond)
}

func TestWatcher_CountsFailures(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()

	synth := new(MockSynthesizer)
	synth.On("Synthesize", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	w, err := New(dir, out, synth, WithDebounce(50*time.Millisecond))
	require.NoError(t, err)
	startWatcher(t, w)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "note.txt"), []byte("hello"), 0o644))

	assert.Eventually(t, func() bool {
		return w.FailedCount() == 1
	}, 5*time.Second, 20*time.Millisecond)
	assert.Zero(t, w.ProcessedCount())
}

func TestNew_MissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), t.TempDir(), new(MockSynthesizer))
	require.Error(t, err)
}

func TestNew_CreatesOutputDirectory(t *testing.T) {
	out := filepath.Join(t.TempDir(), "audio", "generated")

	_, err := New(t.TempDir(), out, new(MockSynthesizer))
	require.NoError(t, err)

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
