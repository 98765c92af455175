package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/moriyama/internmatch/internal/middleware"
	"github.com/moriyama/internmatch/internal/model"
)

// mockProfileService はProfileServiceInterfaceのモック実装。
type mockProfileService struct {
	fetchFunc  func(ctx context.Context, userID string) (*model.Profile, error)
	upsertFunc func(ctx context.Context, userID string, partial map[string]any) (*model.Profile, error)
}

func (m *mockProfileService) Fetch(ctx context.Context, userID string) (*model.Profile, error) {
	return m.fetchFunc(ctx, userID)
}

func (m *mockProfileService) Upsert(ctx context.Context, userID string, partial map[string]any) (*model.Profile, error) {
	return m.upsertFunc(ctx, userID, partial)
}

// withProfile はリクエストに認証済みプロフィールを付与する。
func withProfile(req *http.Request, p *model.Profile) *http.Request {
	return req.WithContext(middleware.ContextWithProfile(req.Context(), p))
}

func TestProfileHandler_GetMine_IncludesEmail(t *testing.T) {
	svc := &mockProfileService{
		fetchFunc: func(ctx context.Context, userID string) (*model.Profile, error) {
			if userID != "user-1" {
				t.Errorf("userID = %q, want user-1", userID)
			}
			return &model.Profile{ID: "user-1", Email: "taro@example.com", Name: "山田太郎", Role: model.RoleStudent}, nil
		},
	}
	h := NewProfileHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/profiles/me", nil)
	req = withProfile(req, &model.Profile{ID: "user-1", Role: model.RoleStudent})
	w := httptest.NewRecorder()

	h.GetMine(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]any
	json.NewDecoder(w.Body).Decode(&resp)
	if resp["email"] != "taro@example.com" {
		t.Errorf("email = %v, want taro@example.com", resp["email"])
	}
}

func TestProfileHandler_Get_HidesEmailFromOthers(t *testing.T) {
	svc := &mockProfileService{
		fetchFunc: func(ctx context.Context, userID string) (*model.Profile, error) {
			return &model.Profile{ID: "user-2", Email: "hanako@example.com", Name: "佐藤花子", Role: model.RoleStudent}, nil
		},
	}
	h := NewProfileHandler(svc)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "user-2")
	req := httptest.NewRequest(http.MethodGet, "/api/profiles/user-2", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	h.Get(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]any
	json.NewDecoder(w.Body).Decode(&resp)
	if _, ok := resp["email"]; ok {
		t.Error("email should not be exposed to other users")
	}
	if resp["name"] != "佐藤花子" {
		t.Errorf("name = %v, want 佐藤花子", resp["name"])
	}
}

func TestProfileHandler_Get_NotFound(t *testing.T) {
	svc := &mockProfileService{
		fetchFunc: func(ctx context.Context, userID string) (*model.Profile, error) {
			return nil, nil
		},
	}
	h := NewProfileHandler(svc)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "no-such-user")
	req := httptest.NewRequest(http.MethodGet, "/api/profiles/no-such-user", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	h.Get(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestProfileHandler_Update_PassesPartial(t *testing.T) {
	var gotPartial map[string]any
	svc := &mockProfileService{
		upsertFunc: func(ctx context.Context, userID string, partial map[string]any) (*model.Profile, error) {
			gotPartial = partial
			return &model.Profile{ID: userID, Role: model.RoleStudent, Name: "山田太郎", Bio: "更新後の自己紹介"}, nil
		},
	}
	h := NewProfileHandler(svc)

	body := `{"bio":"更新後の自己紹介","graduationYear":2028}`
	req := httptest.NewRequest(http.MethodPut, "/api/profiles/me", strings.NewReader(body))
	req = withProfile(req, &model.Profile{ID: "user-1", Role: model.RoleStudent})
	w := httptest.NewRecorder()

	h.Update(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotPartial["bio"] != "更新後の自己紹介" {
		t.Errorf("partial bio = %v", gotPartial["bio"])
	}
	if gotPartial["graduationYear"] != float64(2028) {
		t.Errorf("partial graduationYear = %v", gotPartial["graduationYear"])
	}

	var resp map[string]any
	json.NewDecoder(w.Body).Decode(&resp)
	if resp["bio"] != "更新後の自己紹介" {
		t.Errorf("response bio = %v", resp["bio"])
	}
}

func TestProfileHandler_Update_Unauthenticated_Returns401(t *testing.T) {
	h := NewProfileHandler(&mockProfileService{})

	req := httptest.NewRequest(http.MethodPut, "/api/profiles/me", strings.NewReader(`{}`))
	w := httptest.NewRecorder()

	h.Update(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}
