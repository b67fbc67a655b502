package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/raphaelgruber/omnimind/internal/config"
	"github.com/raphaelgruber/omnimind/internal/session"
)

// openBootStore opens the session store selected by OMNIMIND_BOOT_STORE.
// The returned close function is never nil.
func openBootStore(ctx context.Context) (session.Store, func() error, error) {
	noop := func() error { return nil }
	id := session.ResolveID(cfg.SessionID)

	switch cfg.BootStore {
	case config.BootStoreMemory:
		return session.NewMemoryStore(), noop, nil
	case config.BootStoreSQLite:
		s, err := session.NewSQLiteStore(ctx, filepath.Join(cfg.StateDir, "sessions.db"), id)
		if err != nil {
			return nil, noop, fmt.Errorf("open session database: %w", err)
		}
		return s, s.Close, nil
	default:
		return session.NewFileStore(cfg.StateDir, id), noop, nil
	}
}
