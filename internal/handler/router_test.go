package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/moriyama/internmatch/internal/internship"
	"github.com/moriyama/internmatch/internal/middleware"
	"github.com/moriyama/internmatch/internal/model"
	"github.com/moriyama/internmatch/internal/repository"
)

// stubInternshipService は全メソッドが空の結果を返すスタブ。
type stubInternshipService struct{}

func (s *stubInternshipService) Create(ctx context.Context, companyID string, input internship.ListingInput) (*model.Internship, error) {
	return &model.Internship{ID: "listing-1", CompanyID: companyID, Status: model.ListingStatusDraft}, nil
}

func (s *stubInternshipService) Update(ctx context.Context, companyID, listingID string, input internship.ListingInput) (*model.Internship, error) {
	return &model.Internship{ID: listingID, CompanyID: companyID}, nil
}

func (s *stubInternshipService) Publish(ctx context.Context, companyID, listingID string) (*model.Internship, error) {
	return &model.Internship{ID: listingID, CompanyID: companyID, Status: model.ListingStatusPublished}, nil
}

func (s *stubInternshipService) Close(ctx context.Context, companyID, listingID string) (*model.Internship, error) {
	return &model.Internship{ID: listingID, CompanyID: companyID, Status: model.ListingStatusClosed}, nil
}

func (s *stubInternshipService) Get(ctx context.Context, viewerID, listingID string) (*model.Internship, error) {
	return &model.Internship{ID: listingID, Status: model.ListingStatusPublished}, nil
}

func (s *stubInternshipService) Search(ctx context.Context, query repository.InternshipSearchQuery) ([]*model.Internship, error) {
	return []*model.Internship{}, nil
}

func (s *stubInternshipService) ListMine(ctx context.Context, companyID string) ([]*model.Internship, error) {
	return []*model.Internship{}, nil
}

type stubApplicationService struct{}

func (s *stubApplicationService) Apply(ctx context.Context, studentID, internshipID, coverLetter string) (*model.Application, error) {
	return &model.Application{ID: "app-1", StudentID: studentID, InternshipID: internshipID, Status: model.ApplicationStatusPending}, nil
}

func (s *stubApplicationService) UpdateStatus(ctx context.Context, companyID, applicationID string, status model.ApplicationStatus) (*model.Application, error) {
	return &model.Application{ID: applicationID, Status: status}, nil
}

func (s *stubApplicationService) ListMine(ctx context.Context, studentID string) ([]repository.ApplicationWithListing, error) {
	return []repository.ApplicationWithListing{}, nil
}

func (s *stubApplicationService) ListForListing(ctx context.Context, companyID, internshipID string) ([]*model.Application, error) {
	return []*model.Application{}, nil
}

type stubMessageService struct{}

func (s *stubMessageService) Send(ctx context.Context, senderID, receiverID, content string) (*model.Message, error) {
	return &model.Message{ID: "msg-1", SenderID: senderID, ReceiverID: receiverID, Content: content}, nil
}

func (s *stubMessageService) Conversation(ctx context.Context, userID, partnerID string) ([]*model.Message, error) {
	return []*model.Message{}, nil
}

func (s *stubMessageService) Conversations(ctx context.Context, userID string) ([]repository.ConversationSummary, error) {
	return []repository.ConversationSummary{}, nil
}

type stubNotificationStore struct{}

func (s *stubNotificationStore) List(ctx context.Context, userID string) ([]model.Notification, error) {
	return []model.Notification{}, nil
}

func (s *stubNotificationStore) UnreadCount(ctx context.Context, userID string) (int, error) {
	return 0, nil
}

func (s *stubNotificationStore) MarkRead(ctx context.Context, userID, notificationID string) error {
	return nil
}

func (s *stubNotificationStore) MarkAllRead(ctx context.Context, userID string) error {
	return nil
}

func (s *stubNotificationStore) Clear(ctx context.Context, userID string) error {
	return nil
}

// testResolver はセッショントークンからプロフィールを引く簡易リゾルバー。
type testResolver struct {
	profiles map[string]*model.Profile
}

func (r *testResolver) CurrentUser(ctx context.Context, sessionID string) (*model.Profile, error) {
	if p, ok := r.profiles[sessionID]; ok {
		return p, nil
	}
	return nil, model.NewUnauthorizedError()
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	limiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(limiter.Stop)

	resolver := &testResolver{
		profiles: map[string]*model.Profile{
			"student-token": {ID: "student-1", Role: model.RoleStudent, Name: "山田太郎"},
			"company-token": {ID: "company-1", Role: model.RoleCompany, Name: "株式会社サンプル"},
		},
	}

	return NewRouter(&RouterDeps{
		UserResolver:      resolver,
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       limiter,
		AuthService: &mockAuthService{
			currentUserFunc: func(ctx context.Context, sessionID string) (*model.Profile, error) {
				return resolver.CurrentUser(ctx, sessionID)
			},
		},
		ProfileService: &mockProfileService{
			fetchFunc: func(ctx context.Context, userID string) (*model.Profile, error) {
				return &model.Profile{ID: userID, Role: model.RoleStudent, Name: "山田太郎"}, nil
			},
		},
		InternshipService:  &stubInternshipService{},
		ApplicationService: &stubApplicationService{},
		MessageService:     &stubMessageService{},
		NotificationStore:  &stubNotificationStore{},
	})
}

func TestRouter_HealthCheck_NoAuthRequired(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRouter_PublicSearch_NoAuthRequired(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/internships/search?q=backend", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRouter_ProtectedRoute_WithoutToken_Returns401(t *testing.T) {
	router := newTestRouter(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/profiles/me"},
		{http.MethodGet, "/api/internships/listing-1"},
		{http.MethodGet, "/api/messages/"},
		{http.MethodGet, "/api/notifications/"},
	}
	for _, p := range paths {
		req := httptest.NewRequest(p.method, p.path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want %d", p.method, p.path, w.Code, http.StatusUnauthorized)
		}
	}
}

func TestRouter_ProtectedRoute_WithToken_Succeeds(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/profiles/me", nil)
	req.Header.Set("Authorization", "Bearer student-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRouter_CompanyOnlyRoute_StudentToken_Returns403(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/internships/mine", nil)
	req.Header.Set("Authorization", "Bearer student-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
	// 自分の役割のホームへのリダイレクト先を付与する
	if loc := w.Header().Get("Location"); loc != "/student/dashboard" {
		t.Errorf("Location = %q, want /student/dashboard", loc)
	}
}

func TestRouter_StudentOnlyRoute_CompanyToken_Returns403(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/applications/", nil)
	req.Header.Set("Authorization", "Bearer company-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestRouter_CompanyRoute_CompanyToken_Succeeds(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/internships/mine", nil)
	req.Header.Set("Authorization", "Bearer company-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRouter_CORSHeaders(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q, want http://localhost:3000", got)
	}
}
