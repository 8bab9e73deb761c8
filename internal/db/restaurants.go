package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/an26179529/GroupBot/internal/catalog"
)

const foreignKeyViolation = "23503"

var _ catalog.Editor = (*DB)(nil)

func (db *DB) ListActive(ctx context.Context) ([]catalog.Restaurant, error) {
	rows, err := db.pool.Query(ctx,
		"SELECT id, name, active FROM restaurants WHERE active ORDER BY id",
	)
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

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return restaurants, nil
}

func (db *DB) MenuFor(ctx context.Context, name string) (catalog.Menu, error) {
	var id int64
	err := db.pool.QueryRow(ctx,
		"SELECT id FROM restaurants WHERE name = $1 AND active",
		catalog.NormalizeName(name),
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	menus, err := db.menus(ctx, "WHERE restaurant_id = $1", id)
	if err != nil {
		return nil, err
	}
	return menus[id], nil
}

func (db *DB) ListAll(ctx context.Context) ([]catalog.Restaurant, error) {
	rows, err := db.pool.Query(ctx, "SELECT id, name, active FROM restaurants ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var restaurants []catalog.Restaurant
	for rows.Next() {
		var r catalog.Restaurant
		if err := rows.Scan(&r.ID, &r.Name, &r.Active); err != nil {
			return nil, err
		}
		restaurants = append(restaurants, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	menus, err := db.menus(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range restaurants {
		restaurants[i].Menu = menus[restaurants[i].ID]
	}
	return restaurants, nil
}

// menus loads menu items grouped by restaurant id, in display order.
func (db *DB) menus(ctx context.Context, where string, args ...any) (map[int64]catalog.Menu, error) {
	rows, err := db.pool.Query(ctx,
		"SELECT restaurant_id, name, price::text FROM menu_items "+where+" ORDER BY restaurant_id, position, name",
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

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return menus, nil
}

func (db *DB) CreateRestaurant(ctx context.Context, name string) (catalog.Restaurant, error) {
	var r catalog.Restaurant
	err := db.pool.QueryRow(ctx,
		`INSERT INTO restaurants (name, active) VALUES ($1, TRUE)
		ON CONFLICT (name) DO NOTHING
		RETURNING id, name, active`,
		catalog.NormalizeName(name),
	).Scan(&r.ID, &r.Name, &r.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.Restaurant{}, catalog.ErrExists
	}
	if err != nil {
		return catalog.Restaurant{}, err
	}
	return r, nil
}

func (db *DB) SetActive(ctx context.Context, id int64, active bool) error {
	result, err := db.pool.Exec(ctx,
		"UPDATE restaurants SET active = $2 WHERE id = $1",
		id, active,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (db *DB) SetMenuItem(ctx context.Context, id int64, item catalog.MenuItem) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO menu_items (restaurant_id, name, price, position)
		VALUES ($1, $2, $3::numeric,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM menu_items WHERE restaurant_id = $1))
		ON CONFLICT (restaurant_id, name) DO UPDATE SET price = EXCLUDED.price`,
		id, item.Name, item.Price.String(),
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return catalog.ErrNotFound
	}
	return err
}

func (db *DB) RemoveMenuItem(ctx context.Context, id int64, item string) error {
	result, err := db.pool.Exec(ctx,
		"DELETE FROM menu_items WHERE restaurant_id = $1 AND name = $2",
		id, item,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}
