package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lookup_bot/internal/domain"
	"lookup_bot/internal/ledger"
	"lookup_bot/internal/service"

	"github.com/gin-gonic/gin"
)

type nopStore struct{}

func (nopStore) SaveLedger(ctx context.Context, snap *domain.Snapshot) error { return nil }
func (nopStore) LoadLedger(ctx context.Context) (*domain.Snapshot, error) {
	return domain.NewSnapshot(), nil
}
func (nopStore) SaveBans(ctx context.Context, ids []int64) error { return nil }
func (nopStore) LoadBans(ctx context.Context) ([]int64, error)   { return nil, nil }
func (nopStore) Ping(ctx context.Context) error                  { return nil }

func newTestRouter(t *testing.T) (*gin.Engine, *Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	l, err := ledger.New(context.Background(), ledger.Config{
		DailyCredits:    3,
		ReferralCredits: 3,
	}, nopStore{})
	if err != nil {
		t.Fatalf("ledger.New: %v", err)
	}

	h := NewHandler(l, nopStore{}, "test-admin-key")

	r := gin.New()
	r.POST("/auth", h.Auth)
	r.GET("/admin/stats", h.Stats)
	r.GET("/admin/users/:id", h.User)
	r.POST("/admin/users/:id/credits", h.AddCredits)
	r.POST("/admin/users/:id/ban", h.Ban)
	r.DELETE("/admin/users/:id/ban", h.Unban)
	r.POST("/admin/users/:id/grant", h.Grant)
	r.DELETE("/admin/users/:id/grant", h.RevokeGrant)
	r.GET("/admin/referrals/top", h.TopReferrers)
	return r, h
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthExchange(t *testing.T) {
	service.InitJWT("test-secret")
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/auth", `{"key": "test-admin-key"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := service.ValidateAdminJWT(resp.Token); err != nil {
		t.Errorf("issued token invalid: %v", err)
	}
}

func TestAuthRejectsWrongKey(t *testing.T) {
	service.InitJWT("test-secret")
	r, _ := newTestRouter(t)

	for body, want := range map[string]int{
		`{"key": "wrong"}`: http.StatusUnauthorized,
		`{}`:               http.StatusBadRequest,
		``:                 http.StatusBadRequest,
	} {
		w := doJSON(r, http.MethodPost, "/auth", body)
		if w.Code != want {
			t.Errorf("body %q: status = %d, want %d", body, w.Code, want)
		}
	}
}

func TestAddCreditsEndpoint(t *testing.T) {
	r, h := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/admin/users/10/credits", `{"amount": 5}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Balance int64 `json:"balance"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Balance != 5 {
		t.Errorf("balance = %d, want 5", resp.Balance)
	}

	if w := doJSON(r, http.MethodPost, "/admin/users/10/credits", `{"amount": -1}`); w.Code != http.StatusBadRequest {
		t.Errorf("negative amount: status = %d, want 400", w.Code)
	}
	if w := doJSON(r, http.MethodPost, "/admin/users/abc/credits", `{"amount": 5}`); w.Code != http.StatusBadRequest {
		t.Errorf("bad user id: status = %d, want 400", w.Code)
	}

	balance, _, _ := h.Ledger.Balance(context.Background(), 10)
	if balance != 5 {
		t.Errorf("ledger balance = %d, want 5", balance)
	}
}

func TestBanUnbanEndpoints(t *testing.T) {
	r, h := newTestRouter(t)

	if w := doJSON(r, http.MethodPost, "/admin/users/10/ban", `{"reason": "spam"}`); w.Code != http.StatusOK {
		t.Fatalf("ban status = %d", w.Code)
	}
	if !h.Ledger.IsBanned(10) {
		t.Error("ban not applied")
	}

	w := doJSON(r, http.MethodDelete, "/admin/users/10/ban", "")
	if w.Code != http.StatusOK {
		t.Fatalf("unban status = %d", w.Code)
	}
	var resp struct {
		WasBanned bool `json:"was_banned"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.WasBanned || h.Ledger.IsBanned(10) {
		t.Error("unban not applied")
	}
}

func TestGrantEndpoints(t *testing.T) {
	r, h := newTestRouter(t)
	ctx := context.Background()

	if w := doJSON(r, http.MethodPost, "/admin/users/10/grant", `{}`); w.Code != http.StatusOK {
		t.Fatalf("grant status = %d", w.Code)
	}
	if !h.Ledger.IsUnlimited(ctx, 10) {
		t.Error("permanent grant not applied")
	}
	if _, permanent, _ := h.Ledger.GrantExpiry(10); !permanent {
		t.Error("grant without duration not permanent")
	}

	if w := doJSON(r, http.MethodPost, "/admin/users/11/grant", `{"duration_hours": 24}`); w.Code != http.StatusOK {
		t.Fatalf("timed grant status = %d", w.Code)
	}
	if _, permanent, exists := h.Ledger.GrantExpiry(11); !exists || permanent {
		t.Error("timed grant not recorded with expiry")
	}

	if w := doJSON(r, http.MethodDelete, "/admin/users/10/grant", ""); w.Code != http.StatusOK {
		t.Fatalf("revoke status = %d", w.Code)
	}
	if h.Ledger.IsUnlimited(ctx, 10) {
		t.Error("revoke not applied")
	}
}

func TestUserEndpoint(t *testing.T) {
	r, h := newTestRouter(t)
	ctx := context.Background()

	_ = h.Ledger.Touch(ctx, 10)
	_ = h.Ledger.AppendSearch(ctx, 10, "9798423774")

	w := doJSON(r, http.MethodGet, "/admin/users/10", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		UserID  int64 `json:"user_id"`
		Known   bool  `json:"known"`
		Balance int64 `json:"balance"`
		History []struct {
			Number string `json:"number"`
		} `json:"history"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.UserID != 10 || !resp.Known || resp.Balance != 3 {
		t.Errorf("resp = %+v", resp)
	}
	if len(resp.History) != 1 || resp.History[0].Number != "9798423774" {
		t.Errorf("history = %+v", resp.History)
	}
}

func TestStatsEndpoint(t *testing.T) {
	r, h := newTestRouter(t)
	ctx := context.Background()
	_ = h.Ledger.Touch(ctx, 1)
	_ = h.Ledger.Touch(ctx, 2)

	w := doJSON(r, http.MethodGet, "/admin/stats", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		TotalUsers int `json:"total_users"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.TotalUsers != 2 {
		t.Errorf("total_users = %d, want 2", resp.TotalUsers)
	}
}
