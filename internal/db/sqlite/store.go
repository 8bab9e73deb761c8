// Package sqlite is a single-file restaurant catalog for deployments
// without a Postgres server.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/an26179529/GroupBot/internal/catalog"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationTable = "schema_migrations"

// Store implements catalog.Editor over SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ catalog.Editor = (*Store)(nil)

// Open opens the database at path and applies bundled migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := migrateUp(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ListActive(ctx context.Context) ([]catalog.Restaurant, error) {
	return s.restaurants(ctx, "WHERE active = 1")
}

func (s *Store) MenuFor(ctx context.Context, name string) (catalog.Menu, error) {
	var id int64
	err := s.sqlDB.QueryRowContext(ctx,
		"SELECT id FROM restaurants WHERE name = ? AND active = 1",
		catalog.NormalizeName(name),
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	menus, err := s.menus(ctx, "WHERE restaurant_id = ?", id)
	if err != nil {
		return nil, err
	}
	return menus[id], nil
}

func (s *Store) ListAll(ctx context.Context) ([]catalog.Restaurant, error) {
	restaurants, err := s.restaurants(ctx, "")
	if err != nil {
		return nil, err
	}
	menus, err := s.menus(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range restaurants {
		restaurants[i].Menu = menus[restaurants[i].ID]
	}
	return restaurants, nil
}

func (s *Store) restaurants(ctx context.Context, where string) ([]catalog.Restaurant, error) {
	rows, err := s.sqlDB.QueryContext(ctx, "SELECT id, name, active FROM restaurants "+where+" ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	restaurants := []catalog.Restaurant{}
	for rows.Next() {
		var r catalog.Restaurant
		if err := rows.Scan(&r.ID, &r.Name, &r.Active); err != nil {
			return nil, err
		}
		restaurants = append(restaurants, r)
	}
	return restaurants, rows.Err()
}

func (s *Store) menus(ctx context.Context, where string, args ...any) (map[int64]catalog.Menu, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT restaurant_id, name, price FROM menu_items "+where+" ORDER BY restaurant_id, position, name",
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	menus := make(map[int64]catalog.Menu)
	for rows.Next() {
		var (
			restaurantID int64
			item         catalog.MenuItem
			price        string
		)
		if err := rows.Scan(&restaurantID, &item.Name, &price); err != nil {
			return nil, err
		}
		if item.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("invalid price %q for %q: %w", price, item.Name, err)
		}
		menus[restaurantID] = append(menus[restaurantID], item)
	}
	return menus, rows.Err()
}

func (s *Store) CreateRestaurant(ctx context.Context, name string) (catalog.Restaurant, error) {
	var r catalog.Restaurant
	err := s.sqlDB.QueryRowContext(ctx,
		`INSERT INTO restaurants (name, active) VALUES (?, 1)
		ON CONFLICT (name) DO NOTHING
		RETURNING id, name, active`,
		catalog.NormalizeName(name),
	).Scan(&r.ID, &r.Name, &r.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Restaurant{}, catalog.ErrExists
	}
	if err != nil {
		return catalog.Restaurant{}, err
	}
	return r, nil
}

func (s *Store) SetActive(ctx context.Context, id int64, active bool) error {
	result, err := s.sqlDB.ExecContext(ctx, "UPDATE restaurants SET active = ? WHERE id = ?", active, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (s *Store) SetMenuItem(ctx context.Context, id int64, item catalog.MenuItem) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var found int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM restaurants WHERE id = ?", id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.ErrNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO menu_items (restaurant_id, name, price, position)
		VALUES (?1, ?2, ?3,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM menu_items WHERE restaurant_id = ?1))
		ON CONFLICT (restaurant_id, name) DO UPDATE SET price = excluded.price`,
		id, item.Name, item.Price.String(),
	); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) RemoveMenuItem(ctx context.Context, id int64, item string) error {
	result, err := s.sqlDB.ExecContext(ctx,
		"DELETE FROM menu_items WHERE restaurant_id = ? AND name = ?",
		id, item,
	)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// migrateUp applies the embedded migrations with golang-migrate. The
// migrate instance is not closed because its driver would close sqlDB.
func migrateUp(sqlDB *sql.DB) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	defer source.Close()

	driver, err := migratesqlite.WithInstance(sqlDB, &migratesqlite.Config{MigrationsTable: migrationTable})
	if err != nil {
		return fmt.Errorf("create migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
