// Package catalog describes the read-only restaurant catalog the ordering
// session consults when an order is opened or a restaurant is picked.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("restaurant not found")
	ErrExists   = errors.New("restaurant already exists")
)

type Restaurant struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
	Menu   Menu   `json:"menu,omitempty"`
}

type MenuItem struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Menu keeps the catalog's display order.
type Menu []MenuItem

// Price returns the price of the named item, matched exactly.
func (m Menu) Price(item string) (decimal.Decimal, bool) {
	for _, it := range m {
		if it.Name == item {
			return it.Price, true
		}
	}
	return decimal.Zero, false
}

// Catalog is implemented by every restaurant store (postgres, sqlite, memory).
type Catalog interface {
	// ListActive returns active restaurants ordered by id. An empty slice is valid.
	ListActive(ctx context.Context) ([]Restaurant, error)
	// MenuFor returns the menu of the active restaurant with the given name,
	// or ErrNotFound.
	MenuFor(ctx context.Context, name string) (Menu, error)
}

// Editor is the write side used by the admin API and seeding.
type Editor interface {
	Catalog
	// ListAll returns every restaurant, active or not, with menus.
	ListAll(ctx context.Context) ([]Restaurant, error)
	CreateRestaurant(ctx context.Context, name string) (Restaurant, error)
	SetActive(ctx context.Context, id int64, active bool) error
	SetMenuItem(ctx context.Context, id int64, item MenuItem) error
	RemoveMenuItem(ctx context.Context, id int64, item string) error
}

// Seed fills an empty catalog with restaurants. It is a no-op when the
// catalog already has entries.
func Seed(ctx context.Context, ed Editor, restaurants []Restaurant) (int, error) {
	existing, err := ed.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list restaurants: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}
	for _, r := range restaurants {
		created, err := ed.CreateRestaurant(ctx, r.Name)
		if err != nil {
			return 0, fmt.Errorf("create %q: %w", r.Name, err)
		}
		for _, it := range r.Menu {
			if err := ed.SetMenuItem(ctx, created.ID, it); err != nil {
				return 0, fmt.Errorf("add %q to %q: %w", it.Name, r.Name, err)
			}
		}
		if !r.Active {
			if err := ed.SetActive(ctx, created.ID, false); err != nil {
				return 0, fmt.Errorf("deactivate %q: %w", r.Name, err)
			}
		}
	}
	return len(restaurants), nil
}

// NormalizeName trims the surrounding whitespace of a restaurant name.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}
