package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/an26179529/GroupBot/internal/catalog"
	"github.com/an26179529/GroupBot/internal/order"
)

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("GroupBot is running!"))
}

// Public handlers
func (a *API) handlePublicRestaurants(w http.ResponseWriter, r *http.Request) {
	restaurants, err := a.catalog.ListActive(r.Context())
	if err != nil {
		log.Printf("Failed to list restaurants: %v", err)
		http.Error(w, "failed to list restaurants", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, restaurants)
}

// publicSession is the unauthenticated view of an order. It names
// participants but never exposes their platform user ids.
type publicSession struct {
	ID         string       `json:"id"`
	Restaurant string       `json:"restaurant,omitempty"`
	Menu       catalog.Menu `json:"menu,omitempty"`
	Lines      []publicLine `json:"lines"`
	OpenedAt   time.Time    `json:"opened_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

type publicLine struct {
	ParticipantName string    `json:"participant_name"`
	Item            string    `json:"item"`
	Quantity        int       `json:"quantity"`
	At              time.Time `json:"at"`
}

type orderView struct {
	Session        publicSession     `json:"session"`
	Totals         []order.ItemTotal `json:"totals"`
	EstimatedTotal *decimal.Decimal  `json:"estimated_total,omitempty"`
}

func newPublicSession(s *order.Session) publicSession {
	p := publicSession{
		ID:         s.ID,
		Restaurant: s.Restaurant,
		Menu:       s.Menu,
		Lines:      make([]publicLine, 0, len(s.Lines)),
		OpenedAt:   s.OpenedAt,
		UpdatedAt:  s.UpdatedAt,
	}
	for _, l := range s.Lines {
		p.Lines = append(p.Lines, publicLine{
			ParticipantName: l.ParticipantName,
			Item:            l.Item,
			Quantity:        l.Quantity,
			At:              l.At,
		})
	}
	return p
}

func (a *API) handlePublicOrder(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	session, ok := a.orders.Session(key)
	if !ok {
		http.Error(w, "no open order", http.StatusNotFound)
		return
	}

	totals, sum, priced := session.Totals()
	view := orderView{Session: newPublicSession(session), Totals: totals}
	if view.Totals == nil {
		view.Totals = []order.ItemTotal{}
	}
	if priced {
		view.EstimatedTotal = &sum
	}
	writeJSON(w, http.StatusOK, view)
}

// Admin handlers
func (a *API) handleListRestaurants(w http.ResponseWriter, r *http.Request) {
	restaurants, err := a.catalog.ListAll(r.Context())
	if err != nil {
		log.Printf("Failed to list restaurants: %v", err)
		http.Error(w, "failed to list restaurants", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, restaurants)
}

func (a *API) handleCreateRestaurant(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	restaurant, err := a.catalog.CreateRestaurant(r.Context(), req.Name)
	if err != nil {
		a.catalogError(w, "create restaurant", err)
		return
	}
	log.Printf("Restaurant %q created by %s", restaurant.Name, claimsFrom(r.Context()).UserID)
	writeJSON(w, http.StatusCreated, restaurant)
}

func (a *API) handleSetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := restaurantID(w, r)
	if !ok {
		return
	}

	var req struct {
		Active *bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Active == nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := a.catalog.SetActive(r.Context(), id, *req.Active); err != nil {
		a.catalogError(w, "update restaurant", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "restaurant updated",
	})
}

func (a *API) handleSetMenuItem(w http.ResponseWriter, r *http.Request) {
	id, ok := restaurantID(w, r)
	if !ok {
		return
	}
	item := strings.TrimSpace(mux.Vars(r)["item"])
	if item == "" {
		http.Error(w, "item is required", http.StatusBadRequest)
		return
	}

	var req struct {
		Price decimal.Decimal `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Price.IsNegative() {
		http.Error(w, "price must not be negative", http.StatusBadRequest)
		return
	}

	if err := a.catalog.SetMenuItem(r.Context(), id, catalog.MenuItem{Name: item, Price: req.Price}); err != nil {
		a.catalogError(w, "update menu", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "menu item saved",
	})
}

func (a *API) handleRemoveMenuItem(w http.ResponseWriter, r *http.Request) {
	id, ok := restaurantID(w, r)
	if !ok {
		return
	}

	if err := a.catalog.RemoveMenuItem(r.Context(), id, mux.Vars(r)["item"]); err != nil {
		a.catalogError(w, "delete menu item", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "menu item deleted",
	})
}

// Helper functions
func restaurantID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (a *API) catalogError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, catalog.ErrExists):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		log.Printf("Failed to %s: %v", action, err)
		http.Error(w, "failed to "+action, http.StatusInternalServerError)
	}
}
