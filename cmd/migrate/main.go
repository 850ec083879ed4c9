package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/greencycle/waste-pickup-exchange/internal/infrastructure/config"
)

const (
	migrationsTable = "schema_migrations"
	migrationsDir   = "migrations"
)

type migration struct {
	ID        string
	Filename  string
	AppliedAt time.Time
}

func main() {
	var (
		configPath = flag.String("config", "", "Path to configuration file")
		action     = flag.String("action", "up", "Migration action: up, down, status, create")
		name       = flag.String("name", "", "Migration name (for create action)")
		steps      = flag.Int("steps", 0, "Number of migrations to run (0 = all)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	m := &migrator{db: db}
	ctx := context.Background()

	switch *action {
	case "up":
		err = m.up(ctx, *steps)
	case "down":
		err = m.down(ctx, *steps)
	case "status":
		err = m.status(ctx)
	case "create":
		if *name == "" {
			slog.Error("migration name is required for create action")
			os.Exit(1)
		}
		err = m.create(*name)
	default:
		slog.Error("unknown action", "action", *action)
		os.Exit(1)
	}

	if err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}
}

type migrator struct {
	db *sql.DB
}

func (m *migrator) ensureTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(255) PRIMARY KEY,
			filename VARCHAR(255) NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`, migrationsTable))
	return err
}

func (m *migrator) applied(ctx context.Context) (map[string]migration, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, fmt.Errorf("ensuring migrations table: %w", err)
	}

	rows, err := m.db.QueryContext(ctx,
		fmt.Sprintf("SELECT id, filename, applied_at FROM %s ORDER BY applied_at", migrationsTable))
	if err != nil {
		return nil, fmt.Errorf("querying applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]migration)
	for rows.Next() {
		var mg migration
		if err := rows.Scan(&mg.ID, &mg.Filename, &mg.AppliedAt); err != nil {
			return nil, fmt.Errorf("scanning migration row: %w", err)
		}
		applied[mg.ID] = mg
	}
	return applied, rows.Err()
}

func (m *migrator) pending(ctx context.Context) ([]string, error) {
	applied, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}

	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.sql"))
	if err != nil {
		return nil, fmt.Errorf("listing migration files: %w", err)
	}
	sort.Strings(files)

	var pending []string
	for _, file := range files {
		if strings.HasSuffix(file, ".down.sql") {
			continue
		}
		if _, ok := applied[migrationID(file)]; !ok {
			pending = append(pending, file)
		}
	}
	return pending, nil
}

func (m *migrator) up(ctx context.Context, steps int) error {
	pending, err := m.pending(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		slog.Info("no pending migrations")
		return nil
	}
	if steps > 0 && steps < len(pending) {
		pending = pending[:steps]
	}

	for _, file := range pending {
		if err := m.apply(ctx, file); err != nil {
			return fmt.Errorf("applying %s: %w", file, err)
		}
		slog.Info("applied migration", "file", file)
	}
	slog.Info("migrations completed", "count", len(pending))
	return nil
}

func (m *migrator) apply(ctx context.Context, file string) error {
	contents, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, string(contents)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (id, filename) VALUES ($1, $2)", migrationsTable),
		migrationID(file), filepath.Base(file)); err != nil {
		return err
	}
	return tx.Commit()
}

func (m *migrator) down(ctx context.Context, steps int) error {
	applied, err := m.applied(ctx)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		slog.Info("no migrations to roll back")
		return nil
	}
	if steps <= 0 {
		steps = 1
	}

	ordered := make([]migration, 0, len(applied))
	for _, mg := range applied {
		ordered = append(ordered, mg)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].AppliedAt.After(ordered[j].AppliedAt)
	})
	if steps < len(ordered) {
		ordered = ordered[:steps]
	}

	for _, mg := range ordered {
		downFile := filepath.Join(migrationsDir,
			strings.TrimSuffix(mg.Filename, ".sql")+".down.sql")
		contents, err := os.ReadFile(downFile)
		if err != nil {
			return fmt.Errorf("no down migration for %s: %w", mg.Filename, err)
		}

		tx, err := m.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, string(contents)); err != nil {
			tx.Rollback()
			return fmt.Errorf("rolling back %s: %w", mg.Filename, err)
		}
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE id = $1", migrationsTable), mg.ID); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		slog.Info("rolled back migration", "file", mg.Filename)
	}
	return nil
}

func (m *migrator) status(ctx context.Context) error {
	applied, err := m.applied(ctx)
	if err != nil {
		return err
	}
	pending, err := m.pending(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Applied migrations: %d\n", len(applied))
	for _, mg := range applied {
		fmt.Printf("  %s (applied at %s)\n", mg.Filename, mg.AppliedAt.Format(time.RFC3339))
	}
	fmt.Printf("\nPending migrations: %d\n", len(pending))
	for _, file := range pending {
		fmt.Printf("  %s\n", filepath.Base(file))
	}
	return nil
}

func (m *migrator) create(name string) error {
	timestamp := time.Now().Format("20060102150405")
	base := fmt.Sprintf("%s_%s", timestamp, name)

	for _, suffix := range []string{".sql", ".down.sql"} {
		path := filepath.Join(migrationsDir, base+suffix)
		if err := os.WriteFile(path, []byte("-- "+name+"\n"), 0o644); err != nil {
			return err
		}
		slog.Info("created migration file", "path", path)
	}
	return nil
}

// migrationID is the filename's leading timestamp_name, without extension.
func migrationID(file string) string {
	return strings.TrimSuffix(filepath.Base(file), ".sql")
}
