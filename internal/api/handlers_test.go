package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/an26179529/GroupBot/internal/catalog"
	"github.com/an26179529/GroupBot/internal/config"
	"github.com/an26179529/GroupBot/internal/identity"
	"github.com/an26179529/GroupBot/internal/order"
)

func newTestAPI(t *testing.T) (*API, *order.Service, *catalog.Memory) {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:           "test-secret",
		AdminUserIDs:        []string{"admin"},
		DiscordClientID:     "client",
		DiscordClientSecret: "secret",
		DiscordRedirectURI:  "http://localhost:3000/api/auth/callback",
	}
	cat := catalog.NewMemory(catalog.Defaults()...)
	svc := order.NewService(order.NewStore(), cat, nil)
	deps := Deps{
		Orders:  svc,
		Catalog: cat,
		LineWebhook: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("line"))
		}),
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("metrics"))
		}),
	}
	return New(cfg, deps), svc, cat
}

func (a *API) serve(t *testing.T, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	a, _, _ := newTestAPI(t)
	w := a.serve(t, "GET", "/", "", "")
	if w.Code != http.StatusOK || w.Body.String() != "GroupBot is running!" {
		t.Errorf("GET / = %d %q", w.Code, w.Body.String())
	}
}

func TestMountedHandlers(t *testing.T) {
	a, _, _ := newTestAPI(t)
	if w := a.serve(t, "POST", "/callback", "", "{}"); w.Body.String() != "line" {
		t.Errorf("POST /callback = %q", w.Body.String())
	}
	if w := a.serve(t, "GET", "/metrics", "", ""); w.Body.String() != "metrics" {
		t.Errorf("GET /metrics = %q", w.Body.String())
	}
}

func TestWithoutOptionalHandlers(t *testing.T) {
	a := New(&config.Config{}, Deps{Catalog: catalog.NewMemory()})
	if w := a.serve(t, "POST", "/callback", "", "{}"); w.Code != http.StatusNotFound {
		t.Errorf("POST /callback = %d, want 404", w.Code)
	}
	if w := a.serve(t, "GET", "/api/auth/login", "", ""); w.Code != http.StatusServiceUnavailable {
		t.Errorf("GET /api/auth/login = %d, want 503", w.Code)
	}
}

func TestPublicRestaurants(t *testing.T) {
	a, _, _ := newTestAPI(t)
	w := a.serve(t, "GET", "/api/public/restaurants", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got []catalog.Restaurant
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != len(catalog.Defaults()) || got[0].Name != "八方雲集" {
		t.Errorf("restaurants = %+v", got)
	}
}

func TestPublicOrder(t *testing.T) {
	a, svc, _ := newTestAPI(t)
	ctx := context.Background()
	key := "line:C1"

	if w := a.serve(t, "GET", "/api/public/orders/"+key, "", ""); w.Code != http.StatusNotFound {
		t.Errorf("status without session = %d, want 404", w.Code)
	}

	actor := identity.Actor{Platform: "line", UserID: "U1", Hint: "小明"}
	for _, text := range []string{"/order", "/order 池上便當", "/join 雞腿飯 2", "/join 排骨飯 1", "/join 雞腿飯 1"} {
		svc.HandleCommand(ctx, key, actor, text)
	}

	w := a.serve(t, "GET", "/api/public/orders/"+key, "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body := w.Body.String(); strings.Contains(body, "participant_id") || strings.Contains(body, "U1") {
		t.Errorf("public order exposes user ids: %s", body)
	}
	var got struct {
		Session        order.Session     `json:"session"`
		Totals         []order.ItemTotal `json:"totals"`
		EstimatedTotal *decimal.Decimal  `json:"estimated_total"`
	}
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Session.Restaurant != "池上便當" || len(got.Session.Lines) != 3 || got.Session.Lines[0].ParticipantName != "小明" {
		t.Errorf("session = %+v", got.Session)
	}
	want := []order.ItemTotal{{Item: "雞腿飯", Quantity: 3}, {Item: "排骨飯", Quantity: 1}}
	if len(got.Totals) != 2 || got.Totals[0] != want[0] || got.Totals[1] != want[1] {
		t.Errorf("totals = %+v, want %+v", got.Totals, want)
	}
	if got.EstimatedTotal == nil || !got.EstimatedTotal.Equal(decimal.NewFromInt(390)) {
		t.Errorf("estimated_total = %v, want 390", got.EstimatedTotal)
	}
}

func TestAdminAuth(t *testing.T) {
	a, _, _ := newTestAPI(t)
	adminToken, _ := a.issueToken("admin", "boss", time.Now())
	userToken, _ := a.issueToken("someone", "user", time.Now())
	expired, _ := a.issueToken("admin", "boss", time.Now().Add(-48*time.Hour))

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{name: "no token", want: http.StatusUnauthorized},
		{name: "garbage token", token: "abc", want: http.StatusUnauthorized},
		{name: "expired token", token: expired, want: http.StatusUnauthorized},
		{name: "not an admin", token: userToken, want: http.StatusForbidden},
		{name: "admin", token: adminToken, want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := a.serve(t, "GET", "/api/restaurants", tt.token, ""); w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestAdminCatalogEdits(t *testing.T) {
	a, _, cat := newTestAPI(t)
	ctx := context.Background()
	token, err := a.issueToken("admin", "boss", time.Now())
	if err != nil {
		t.Fatalf("issueToken() error = %v", err)
	}

	w := a.serve(t, "POST", "/api/restaurants", token, `{"name":"麥當勞"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body.String())
	}
	var created catalog.Restaurant
	json.NewDecoder(w.Body).Decode(&created)

	if w := a.serve(t, "POST", "/api/restaurants", token, `{"name":"麥當勞"}`); w.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", w.Code)
	}
	if w := a.serve(t, "POST", "/api/restaurants", token, `{"name":"  "}`); w.Code != http.StatusBadRequest {
		t.Errorf("blank name status = %d, want 400", w.Code)
	}

	menuPath := "/api/restaurants/" + itoa(created.ID) + "/menu/" + url.PathEscape("大麥克")
	if w := a.serve(t, "PUT", menuPath, token, `{"price":"75"}`); w.Code != http.StatusOK {
		t.Fatalf("set menu status = %d: %s", w.Code, w.Body.String())
	}
	if w := a.serve(t, "PUT", menuPath, token, `{"price":-1}`); w.Code != http.StatusBadRequest {
		t.Errorf("negative price status = %d, want 400", w.Code)
	}
	menu, err := cat.MenuFor(ctx, "麥當勞")
	if err != nil || len(menu) != 1 || menu[0].Name != "大麥克" || !menu[0].Price.Equal(decimal.NewFromInt(75)) {
		t.Errorf("menu = %+v, %v", menu, err)
	}

	if w := a.serve(t, "DELETE", menuPath, token, ""); w.Code != http.StatusOK {
		t.Errorf("delete status = %d", w.Code)
	}
	if w := a.serve(t, "DELETE", menuPath, token, ""); w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}

	activePath := "/api/restaurants/" + itoa(created.ID) + "/active"
	if w := a.serve(t, "PUT", activePath, token, `{"active":false}`); w.Code != http.StatusOK {
		t.Errorf("deactivate status = %d", w.Code)
	}
	if w := a.serve(t, "PUT", activePath, token, `{}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing active status = %d, want 400", w.Code)
	}
	if w := a.serve(t, "PUT", "/api/restaurants/999/active", token, `{"active":true}`); w.Code != http.StatusNotFound {
		t.Errorf("unknown restaurant status = %d, want 404", w.Code)
	}
	if _, err := cat.MenuFor(ctx, "麥當勞"); err == nil {
		t.Error("deactivated restaurant still has a menu")
	}
}

func TestLoginAndCallback(t *testing.T) {
	a, _, _ := newTestAPI(t)

	discord := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth2/token":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"discord-token","token_type":"Bearer","expires_in":3600}`))
		case "/users/@me":
			if r.Header.Get("Authorization") != "Bearer discord-token" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			w.Write([]byte(`{"id":"admin","username":"boss","global_name":"老闆"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer discord.Close()
	a.oauthConfig.Endpoint.TokenURL = discord.URL + "/oauth2/token"
	a.discordAPIBase = discord.URL

	w := a.serve(t, "GET", "/api/auth/login", "", "")
	var login map[string]string
	json.NewDecoder(w.Body).Decode(&login)
	if login["state"] == "" || !strings.Contains(login["auth_url"], "client_id=client") {
		t.Errorf("login = %+v", login)
	}

	if w := a.serve(t, "GET", "/api/auth/callback", "", ""); w.Code != http.StatusBadRequest {
		t.Errorf("callback without code = %d, want 400", w.Code)
	}

	w = a.serve(t, "GET", "/api/auth/callback?code=abc", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("callback status = %d: %s", w.Code, w.Body.String())
	}
	var got struct {
		Token    string `json:"token"`
		UserID   string `json:"user_id"`
		Username string `json:"username"`
		IsAdmin  bool   `json:"is_admin"`
	}
	json.NewDecoder(w.Body).Decode(&got)
	if got.UserID != "admin" || got.Username != "老闆" || !got.IsAdmin {
		t.Errorf("callback = %+v", got)
	}
	if w := a.serve(t, "GET", "/api/restaurants", got.Token, ""); w.Code != http.StatusOK {
		t.Errorf("issued token rejected: %d", w.Code)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
