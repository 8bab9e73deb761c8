package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// Memory is an in-process Catalog, used for tests and when no database is configured.
type Memory struct {
	mu          sync.RWMutex
	restaurants []Restaurant
	nextID      int64
}

func NewMemory(restaurants ...Restaurant) *Memory {
	m := &Memory{nextID: 1}
	for _, r := range restaurants {
		m.Add(r)
	}
	return m
}

// Add stores a copy of r, assigning an id when r.ID is zero.
func (m *Memory) Add(r Restaurant) Restaurant {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addLocked(r)
}

func (m *Memory) addLocked(r Restaurant) Restaurant {
	if r.ID == 0 {
		r.ID = m.nextID
	}
	if r.ID >= m.nextID {
		m.nextID = r.ID + 1
	}
	r.Menu = append(Menu(nil), r.Menu...)
	m.restaurants = append(m.restaurants, r)
	sort.Slice(m.restaurants, func(i, j int) bool { return m.restaurants[i].ID < m.restaurants[j].ID })
	return r
}

func (m *Memory) ListActive(ctx context.Context) ([]Restaurant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Restaurant, 0, len(m.restaurants))
	for _, r := range m.restaurants {
		if r.Active {
			out = append(out, Restaurant{ID: r.ID, Name: r.Name, Active: true})
		}
	}
	return out, nil
}

func (m *Memory) MenuFor(ctx context.Context, name string) (Menu, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name = NormalizeName(name)
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.restaurants {
		if r.Active && r.Name == name {
			return append(Menu(nil), r.Menu...), nil
		}
	}
	return nil, ErrNotFound
}

// Defaults is the restaurant list seeded into an empty catalog.
func Defaults() []Restaurant {
	return []Restaurant{
		{Name: "八方雲集", Active: true, Menu: Menu{
			{Name: "招牌鍋貼", Price: decimal.NewFromInt(6)},
			{Name: "韭菜水餃", Price: decimal.NewFromInt(6)},
			{Name: "酸辣湯", Price: decimal.NewFromInt(35)},
		}},
		{Name: "池上便當", Active: true, Menu: Menu{
			{Name: "雞腿飯", Price: decimal.NewFromInt(100)},
			{Name: "排骨飯", Price: decimal.NewFromInt(90)},
			{Name: "素食便當", Price: decimal.NewFromInt(80)},
		}},
		{Name: "50嵐", Active: true, Menu: Menu{
			{Name: "珍珠奶茶", Price: decimal.NewFromInt(55)},
			{Name: "四季春青茶", Price: decimal.NewFromInt(30)},
			{Name: "波霸綠", Price: decimal.NewFromInt(45)},
		}},
	}
}

func (m *Memory) ListAll(ctx context.Context) ([]Restaurant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Restaurant, 0, len(m.restaurants))
	for _, r := range m.restaurants {
		r.Menu = append(Menu(nil), r.Menu...)
		out = append(out, r)
	}
	return out, nil
}

func (m *Memory) CreateRestaurant(ctx context.Context, name string) (Restaurant, error) {
	if err := ctx.Err(); err != nil {
		return Restaurant{}, err
	}
	name = NormalizeName(name)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.restaurants {
		if r.Name == name {
			return Restaurant{}, ErrExists
		}
	}
	return m.addLocked(Restaurant{Name: name, Active: true}), nil
}

func (m *Memory) SetActive(ctx context.Context, id int64, active bool) error {
	return m.update(ctx, id, func(r *Restaurant) { r.Active = active })
}

func (m *Memory) SetMenuItem(ctx context.Context, id int64, item MenuItem) error {
	return m.update(ctx, id, func(r *Restaurant) {
		for i := range r.Menu {
			if r.Menu[i].Name == item.Name {
				r.Menu[i].Price = item.Price
				return
			}
		}
		r.Menu = append(r.Menu, item)
	})
}

func (m *Memory) RemoveMenuItem(ctx context.Context, id int64, item string) error {
	var found bool
	err := m.update(ctx, id, func(r *Restaurant) {
		for i := range r.Menu {
			if r.Menu[i].Name == item {
				r.Menu = append(r.Menu[:i], r.Menu[i+1:]...)
				found = true
				return
			}
		}
	})
	if err == nil && !found {
		return ErrNotFound
	}
	return err
}

func (m *Memory) update(ctx context.Context, id int64, fn func(*Restaurant)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.restaurants {
		if m.restaurants[i].ID == id {
			fn(&m.restaurants[i])
			return nil
		}
	}
	return ErrNotFound
}
