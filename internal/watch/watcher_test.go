package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeduplicate(t *testing.T) {
	now := time.Now()
	changes := []Change{
		{Path: "/ws/A.kt", Op: OpCreate, Time: now},
		{Path: "/ws/B.kt", Op: OpWrite, Time: now},
		{Path: "/ws/A.kt", Op: OpWrite, Time: now.Add(time.Millisecond)},
	}

	got := deduplicate(changes)

	require.Len(t, got, 2)
	assert.Equal(t, "/ws/A.kt", got[0].Path)
	assert.Equal(t, OpWrite, got[0].Op, "latest change wins")
	assert.Equal(t, "/ws/B.kt", got[1].Path)
}

func TestConvertOp(t *testing.T) {
	tests := []struct {
		in     fsnotify.Op
		want   Op
		wantOK bool
	}{
		{fsnotify.Create, OpCreate, true},
		{fsnotify.Write, OpWrite, true},
		{fsnotify.Write | fsnotify.Chmod, OpWrite, true},
		{fsnotify.Remove, OpRemove, true},
		{fsnotify.Rename, OpRename, true},
		{fsnotify.Chmod, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			got, ok := convertOp(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "create", OpCreate.String())
	assert.Equal(t, "rename", OpRename.String())
	assert.Equal(t, "unknown", Op(42).String())
}

func TestShouldIgnore(t *testing.T) {
	w, err := New("/ws", nil, Options{})
	require.NoError(t, err)
	defer w.Stop()

	assert.False(t, w.shouldIgnore("/ws/src/Main.kt"))
	assert.False(t, w.shouldIgnore("/ws/Main.kt"))
	assert.False(t, w.shouldIgnore("/ws/rebuild/Main.kt"))
	assert.True(t, w.shouldIgnore("/ws/build/generated/Main.kt"))
	assert.True(t, w.shouldIgnore("/ws/app/.gradle/x.kts"))
	assert.True(t, w.shouldIgnore("/ws/.git/hooks/x.kt"))

	assert.True(t, w.isSource("/ws/A.kt"))
	assert.True(t, w.isSource("/ws/build.gradle.kts"))
	assert.False(t, w.isSource("/ws/A.java"))
}

func TestWatcher_ReportsSavedKotlinFiles(t *testing.T) {
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "build"), 0755))

	batches := make(chan []Change, 10)
	w, err := New(root, func(changes []Change) { batches <- changes }, Options{Debounce: 50 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()
	assert.True(t, w.IsWatching())

	require.NoError(t, os.WriteFile(filepath.Join(root, "build", "Gen.kt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "notes.txt"), []byte("x"), 0644))
	target := filepath.Join(root, "src", "Main.kt")
	require.NoError(t, os.WriteFile(target, []byte("fun main() {}\n"), 0644))

	select {
	case batch := <-batches:
		paths := make([]string, 0, len(batch))
		for _, c := range batch {
			paths = append(paths, c.Path)
		}
		assert.Equal(t, []string{target}, paths)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, err := New(t.TempDir(), nil, Options{})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	w.Stop()
	w.Stop()
	assert.False(t, w.IsWatching())
}
