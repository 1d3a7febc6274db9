package root

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"traitline/internal/catalog"
	"traitline/internal/config"
	"traitline/internal/engine"
	"traitline/internal/storage"
	"traitline/internal/storage/pgstore"
	"traitline/internal/ui"
)

func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return nil, err
	}
	if opts.dbPath != "" {
		cfg.DBPath = opts.dbPath
	}
	if opts.verbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

func openDB(ctx context.Context, cfg *config.Config) (*sql.DB, func(), error) {
	path, err := storage.ResolveDBPath(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	db, err := storage.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = db.Close()
	}
	return db, cleanup, nil
}

// openRemote picks the remote store from the DSN scheme. An empty DSN means
// no remote store.
func openRemote(ctx context.Context, dsn string) (engine.Remote, func(), error) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case dsn == "":
		return nil, func() {}, nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		st, err := pgstore.Open(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		return st, func() { _ = st.Close() }, nil
	case strings.HasPrefix(dsn, "sqlite:"):
		path := strings.TrimPrefix(dsn, "sqlite:")
		if strings.TrimSpace(path) == "" {
			return nil, nil, fmt.Errorf("remote dsn %q: missing path", dsn)
		}
		path, err := storage.ResolveDBPath(path)
		if err != nil {
			return nil, nil, err
		}
		db, err := storage.OpenRemote(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		r := storage.NewSQLRemote(db)
		return r, func() { _ = r.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("remote dsn %q: unsupported scheme", dsn)
	}
}

func newLogger(cfg *config.Config) *log.Logger {
	if !cfg.Verbose {
		return log.New(io.Discard, "", 0)
	}
	return log.New(os.Stderr, "tl: ", log.LstdFlags)
}

// openService wires config, local database, remote store and catalog, then
// loads state. The cleanup waits for pending remote writes and reports any
// that failed before closing the stores.
func openService(cmd *cobra.Command, opts *rootOptions) (*engine.Service, *config.Config, func(), error) {
	ctx := cmd.Context()
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, nil, err
	}

	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		if cat, err = catalog.Load(cfg.CatalogPath); err != nil {
			return nil, nil, nil, err
		}
	}

	db, closeDB, err := openDB(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	userID := cfg.UserID
	if userID == "" {
		if userID, err = storage.NewSettingsRepo(db).Get(ctx, storage.SettingUserID); err != nil {
			closeDB()
			return nil, nil, nil, err
		}
	}

	var remote engine.Remote
	closeRemote := func() {}
	if userID != "" {
		if remote, closeRemote, err = openRemote(ctx, cfg.RemoteDSN); err != nil {
			closeDB()
			return nil, nil, nil, err
		}
	}

	svc := engine.NewService(db, engine.Options{
		Catalog:      cat,
		Remote:       remote,
		UserID:       userID,
		WriteTimeout: cfg.WriteTimeout,
		Logger:       newLogger(cfg),
	})

	errOut := cmd.ErrOrStderr()
	cleanup := func() {
		svc.Wait()
		printNotices(errOut, svc.Notices())
		closeRemote()
		closeDB()
	}

	res, err := svc.Load(ctx)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	if res.Migrated > 0 {
		fmt.Fprintln(errOut, ui.Muted.Render(fmt.Sprintf("%s Uploaded %d local record(s) to the shared store.", ui.IconInfo, res.Migrated)))
	}
	if res.Migration != nil {
		fmt.Fprintln(errOut, ui.Warn.Render(ui.IconWarn+" "+res.Migration.Error()))
	}
	return svc, cfg, cleanup, nil
}

func printNotices(w io.Writer, notices []engine.Notice) {
	for _, n := range notices {
		line := n.Message
		if n.Err != nil {
			line += ": " + n.Err.Error()
		}
		fmt.Fprintln(w, ui.Warn.Render(ui.IconWarn+" "+line))
	}
}

// resolveProfile matches a profile by id or, case-insensitively, by name.
func resolveProfile(svc *engine.Service, ref string) (*storage.Profile, error) {
	ref = strings.TrimSpace(ref)
	profiles := svc.Profiles()
	for i := range profiles {
		if profiles[i].ID == ref {
			return &profiles[i], nil
		}
	}
	for i := range profiles {
		if strings.EqualFold(profiles[i].Name, ref) {
			return &profiles[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", engine.ErrProfileNotFound, ref)
}

// requireProfile returns the active profile or a hint to create one.
func requireProfile(svc *engine.Service) (*storage.Profile, error) {
	p := svc.Current()
	if p == nil {
		return nil, fmt.Errorf("no active profile; create one with `tl profile create <name>`")
	}
	return p, nil
}
