package symbolindex

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/veldran/sigil/internal/workspace"
)

// watcherTestEnv sets up a project dir, workspace, and DB for watcher tests.
func watcherTestEnv(t *testing.T) (string, workspace.Provider, *DB) {
	t.Helper()
	projectDir := t.TempDir()
	ws, err := workspace.NewFS(projectDir)
	if err != nil {
		t.Fatal(err)
	}
	db := testDB(t)
	return projectDir, ws, db
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestWatcher_NewFileIndexed(t *testing.T) {
	projectDir, ws, db := watcherTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events []string

	go Watch(ctx, db, ws, projectDir, quietLogger(), func(kind, path string) {
		mu.Lock()
		events = append(events, kind+":"+path)
		mu.Unlock()
	})

	// Give the watcher a moment to install.
	time.Sleep(150 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(projectDir, "Button.tsx"), []byte("export const Button = 1;\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	eventually(t, 3*time.Second, 50*time.Millisecond, func() bool {
		locs, _ := db.Lookup("Button")
		return len(locs) == 1
	}, "Button never indexed")

	eventually(t, time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			if e == "indexed:Button.tsx" {
				return true
			}
		}
		return false
	}, "indexed event never fired")
}

func TestWatcher_RemoveDeletesSymbols(t *testing.T) {
	projectDir, ws, db := watcherTestEnv(t)

	file := filepath.Join(projectDir, "Gone.tsx")
	if err := os.WriteFile(file, []byte("export const Gone = 1;\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Sync(db, ws, quietLogger()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Watch(ctx, db, ws, projectDir, quietLogger(), nil)
	time.Sleep(150 * time.Millisecond)

	if err := os.Remove(file); err != nil {
		t.Fatal(err)
	}

	eventually(t, 3*time.Second, 50*time.Millisecond, func() bool {
		locs, _ := db.Lookup("Gone")
		return len(locs) == 0
	}, "Gone never removed from index")
}

func TestWatcher_NonSourceFileIgnored(t *testing.T) {
	projectDir, ws, db := watcherTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	fired := false
	go Watch(ctx, db, ws, projectDir, quietLogger(), func(string, string) {
		mu.Lock()
		fired = true
		mu.Unlock()
	})
	time.Sleep(150 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(projectDir, "notes.md"), []byte("# notes"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if fired {
		t.Error("callback fired for a non-source file")
	}
}

func TestSync_IndexesAndPrunes(t *testing.T) {
	projectDir, ws, db := watcherTestEnv(t)

	if err := os.WriteFile(filepath.Join(projectDir, "A.tsx"), []byte("export const A = 1;\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Sync(db, ws, quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if locs, _ := db.Lookup("A"); len(locs) != 1 {
		t.Fatalf("A not indexed: %+v", locs)
	}

	// Remove from disk; a second sync prunes the stale entry.
	if err := os.Remove(filepath.Join(projectDir, "A.tsx")); err != nil {
		t.Fatal(err)
	}
	if err := Sync(db, ws, quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if locs, _ := db.Lookup("A"); len(locs) != 0 {
		t.Errorf("A should be pruned: %+v", locs)
	}
}
