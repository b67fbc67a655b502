package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/raphaelgruber/omnimind/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// failingStore fails every operation.
type failingStore struct{}

func (failingStore) Get(string) (string, bool, error) { return "", false, errors.New("disk on fire") }
func (failingStore) Set(string, string) error         { return errors.New("disk on fire") }
func (failingStore) Clear(string) error               { return errors.New("disk on fire") }

func TestGateFreshSessionShowsBoot(t *testing.T) {
	g := NewGate(NewMemoryStore(), WithScheduler(schedule.NewManual()))
	assert.True(t, g.ShowBoot())
	assert.True(t, g.Booting())
}

func TestGateOtherFlagValueShowsBoot(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set(BootCompleteKey, "yes"))

	g := NewGate(store, WithScheduler(schedule.NewManual()))
	assert.True(t, g.ShowBoot())
}

func TestGateCompleteWritesImmediatelyAndHidesLater(t *testing.T) {
	sched := schedule.NewManual()
	store := NewMemoryStore()
	g := NewGate(store, WithScheduler(sched))

	g.Complete()

	v, ok, err := store.Get(BootCompleteKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", v)
	assert.False(t, g.Booting(), "booting ends immediately")
	assert.True(t, g.ShowBoot(), "boot screen stays for the exit transition")

	sched.Advance(499 * time.Millisecond)
	assert.True(t, g.ShowBoot())

	sched.Advance(time.Millisecond)
	assert.False(t, g.ShowBoot())
}

func TestGateReloadInSameSessionSkipsBoot(t *testing.T) {
	store := NewFileStore(t.TempDir(), "shell-42")

	first := NewGate(store, WithScheduler(schedule.NewManual()))
	require.True(t, first.ShowBoot())
	first.Complete()
	first.Close()

	// Reload: a new gate over the same session store.
	reloaded := NewGate(NewFileStore(filepath.Dir(store.Path()), "shell-42"), WithScheduler(schedule.NewManual()))
	assert.False(t, reloaded.ShowBoot())
	assert.False(t, reloaded.Booting())

	// A different session still boots.
	other := NewGate(NewFileStore(filepath.Dir(store.Path()), "shell-43"), WithScheduler(schedule.NewManual()))
	assert.True(t, other.ShowBoot())
}

func TestGateReset(t *testing.T) {
	sched := schedule.NewManual()
	store := NewMemoryStore()
	g := NewGate(store, WithScheduler(sched))

	g.Complete()
	g.Reset()

	assert.True(t, g.ShowBoot())
	assert.True(t, g.Booting())
	_, ok, _ := store.Get(BootCompleteKey)
	assert.False(t, ok)

	// The hide scheduled by the earlier Complete must not fire after Reset.
	sched.Advance(time.Second)
	assert.True(t, g.ShowBoot())
	assert.Zero(t, sched.Pending())
}

func TestGateCompleteTwiceSchedulesOneHide(t *testing.T) {
	sched := schedule.NewManual()
	g := NewGate(NewMemoryStore(), WithScheduler(sched))

	g.Complete()
	g.Complete()
	assert.Equal(t, 1, sched.Pending())
}

func TestGateZeroHideDelay(t *testing.T) {
	g := NewGate(NewMemoryStore(), WithScheduler(schedule.NewManual()), WithHideDelay(0))
	g.Complete()
	assert.False(t, g.ShowBoot())
}

func TestGateStoreFailuresFallBackToBoot(t *testing.T) {
	sched := schedule.NewManual()
	g := NewGate(failingStore{}, WithScheduler(sched), WithLogger(quietLogger()))
	assert.True(t, g.ShowBoot())

	assert.NotPanics(t, g.Complete)
	assert.False(t, g.Booting())
	sched.Advance(DefaultHideDelay)
	assert.False(t, g.ShowBoot())

	assert.NotPanics(t, g.Reset)
	assert.True(t, g.ShowBoot())
}

func TestGateRealSchedulerHides(t *testing.T) {
	g := NewGate(NewMemoryStore(), WithHideDelay(5*time.Millisecond))
	defer g.Close()

	g.Complete()
	assert.Eventually(t, func() bool { return !g.ShowBoot() }, 2*time.Second, 5*time.Millisecond)
}

func TestSteps(t *testing.T) {
	steps := Steps()
	require.Len(t, steps, 6)
	assert.Equal(t, "bios", steps[0].ID)
	assert.Equal(t, "systems", steps[5].ID)
	assert.Equal(t, 4800*time.Millisecond, TotalBootDuration())

	steps[0].ID = "mutated"
	assert.Equal(t, "bios", Steps()[0].ID, "Steps returns a copy")
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir, "tty/3:weird")
	assert.Equal(t, filepath.Join(dir, "session-tty_3_weird.yaml"), s.Path())

	_, ok, err := s.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set("a", "1"))
	require.NoError(t, s.Set("b", "2"))
	require.NoError(t, s.Clear("a"))
	require.NoError(t, s.Clear("never-set"))

	_, ok, _ = s.Get("a")
	assert.False(t, ok)
	v, ok, err := s.Get("b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", v)
}

func TestFileStoreCorruptFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax error", "a: [unclosed\n"},
		{"sequence", "- boot_complete\n- true\n"},
		{"scalar", "boot_complete\n"},
		{"nested value", "boot_complete:\n  nested: true\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewFileStore(t.TempDir(), "x")
			require.NoError(t, os.WriteFile(s.Path(), []byte(tt.content), 0o600))

			_, _, err := s.Get(BootCompleteKey)
			require.Error(t, err)

			g := NewGate(s, WithScheduler(schedule.NewManual()), WithLogger(quietLogger()))
			assert.True(t, g.ShowBoot())
		})
	}
}

func TestFileStoreEmptyFile(t *testing.T) {
	s := NewFileStore(t.TempDir(), "x")
	require.NoError(t, os.WriteFile(s.Path(), nil, 0o600))

	_, ok, err := s.Get(BootCompleteKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(BootCompleteKey, "true"))
	v, ok, err := s.Get(BootCompleteKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", v)
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "session.db")

	s, err := NewSQLiteStore(ctx, path, "shell-1")
	require.NoError(t, err)

	require.NoError(t, s.Set(BootCompleteKey, "true"))
	require.NoError(t, s.Set(BootCompleteKey, "true"), "upsert")

	other, err := NewSQLiteStore(ctx, path, "shell-2")
	require.NoError(t, err)
	_, ok, err := other.Get(BootCompleteKey)
	require.NoError(t, err)
	assert.False(t, ok, "sessions are isolated")
	require.NoError(t, other.Close())

	v, ok, err := s.Get(BootCompleteKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	g := NewGate(s, WithScheduler(schedule.NewManual()))
	assert.False(t, g.ShowBoot())

	require.NoError(t, s.Clear(BootCompleteKey))
	_, ok, err = s.Get(BootCompleteKey)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, s.Close())
}

func TestSQLiteStorePrune(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	old, err := NewSQLiteStore(ctx, path, "old-shell")
	require.NoError(t, err)
	require.NoError(t, old.Set(BootCompleteKey, "true"))
	require.NoError(t, old.Close())

	current, err := NewSQLiteStore(ctx, path, "new-shell")
	require.NoError(t, err)
	defer current.Close()

	n, err := current.PruneBefore(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestResolveID(t *testing.T) {
	assert.Equal(t, "explicit", ResolveID("explicit"))
	assert.Equal(t, "ppid-"+strconv.Itoa(os.Getppid()), ResolveID(""))
}
