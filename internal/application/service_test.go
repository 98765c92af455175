package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/moriyama/internmatch/internal/model"
	"github.com/moriyama/internmatch/internal/repository"
)

// mockApplicationRepo はApplicationRepositoryのモック実装。
type mockApplicationRepo struct {
	findByIDFunc             func(ctx context.Context, id string) (*model.Application, error)
	findByListingStudentFunc func(ctx context.Context, internshipID, studentID string) (*model.Application, error)
	createFunc               func(ctx context.Context, application *model.Application) error
	updateStatusFunc         func(ctx context.Context, id string, status model.ApplicationStatus, updatedAt time.Time) error
	listByStudentFunc        func(ctx context.Context, studentID string) ([]repository.ApplicationWithListing, error)
	listByInternshipFunc     func(ctx context.Context, internshipID string) ([]*model.Application, error)
}

func (m *mockApplicationRepo) FindByID(ctx context.Context, id string) (*model.Application, error) {
	return m.findByIDFunc(ctx, id)
}

func (m *mockApplicationRepo) FindByListingAndStudent(ctx context.Context, internshipID, studentID string) (*model.Application, error) {
	return m.findByListingStudentFunc(ctx, internshipID, studentID)
}

func (m *mockApplicationRepo) Create(ctx context.Context, application *model.Application) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, application)
	}
	return nil
}

func (m *mockApplicationRepo) UpdateStatus(ctx context.Context, id string, status model.ApplicationStatus, updatedAt time.Time) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status, updatedAt)
	}
	return nil
}

func (m *mockApplicationRepo) ListByStudentID(ctx context.Context, studentID string) ([]repository.ApplicationWithListing, error) {
	return m.listByStudentFunc(ctx, studentID)
}

func (m *mockApplicationRepo) ListByInternshipID(ctx context.Context, internshipID string) ([]*model.Application, error) {
	return m.listByInternshipFunc(ctx, internshipID)
}

// mockInternshipRepo は応募処理が参照する範囲だけを実装したモック。
type mockInternshipRepo struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Internship, error)
}

func (m *mockInternshipRepo) FindByID(ctx context.Context, id string) (*model.Internship, error) {
	return m.findByIDFunc(ctx, id)
}

func (m *mockInternshipRepo) Create(ctx context.Context, internship *model.Internship) error {
	return nil
}

func (m *mockInternshipRepo) Update(ctx context.Context, internship *model.Internship) error {
	return nil
}

func (m *mockInternshipRepo) ListByCompanyID(ctx context.Context, companyID string) ([]*model.Internship, error) {
	return nil, nil
}

func (m *mockInternshipRepo) SearchPublished(ctx context.Context, query repository.InternshipSearchQuery) ([]*model.Internship, error) {
	return nil, nil
}

// recordingNotifier は発行された通知を記録する。
type recordingNotifier struct {
	userIDs []string
	titles  []string
	kinds   []model.NotificationKind
}

func (n *recordingNotifier) Add(ctx context.Context, userID, title, message string, kind model.NotificationKind) error {
	n.userIDs = append(n.userIDs, userID)
	n.titles = append(n.titles, title)
	n.kinds = append(n.kinds, kind)
	return nil
}

type trimSanitizer struct{}

func (trimSanitizer) SanitizeText(raw string) string {
	return strings.TrimSpace(raw)
}

func publishedListing() *model.Internship {
	return &model.Internship{
		ID:                  "listing-1",
		CompanyID:           "company-1",
		Title:               "バックエンドエンジニアインターン",
		Status:              model.ListingStatusPublished,
		ApplicationDeadline: time.Now().AddDate(0, 1, 0),
	}
}

func assertAPIErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Code != code {
		t.Errorf("expected code %s, got %s", code, apiErr.Code)
	}
}

func TestApply_Success(t *testing.T) {
	appRepo := &mockApplicationRepo{
		findByListingStudentFunc: func(ctx context.Context, internshipID, studentID string) (*model.Application, error) {
			return nil, nil
		},
	}
	listingRepo := &mockInternshipRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Internship, error) {
			return publishedListing(), nil
		},
	}
	notifier := &recordingNotifier{}
	svc := NewService(appRepo, listingRepo, notifier, trimSanitizer{})

	app, err := svc.Apply(context.Background(), "student-1", "listing-1", "  よろしくお願いします。  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if app.Status != model.ApplicationStatusPending {
		t.Errorf("new application must be pending, got %s", app.Status)
	}
	if app.CoverLetter != "よろしくお願いします。" {
		t.Errorf("cover letter must be sanitized, got %q", app.CoverLetter)
	}

	// 掲載した企業に通知が届く
	if len(notifier.userIDs) != 1 || notifier.userIDs[0] != "company-1" {
		t.Errorf("expected notification to company-1, got %v", notifier.userIDs)
	}
}

func TestApply_Rejections(t *testing.T) {
	closed := publishedListing()
	closed.Status = model.ListingStatusClosed

	pastDeadline := publishedListing()
	pastDeadline.ApplicationDeadline = time.Now().AddDate(0, 0, -1)

	tests := []struct {
		name     string
		listing  *model.Internship
		existing *model.Application
		wantCode string
	}{
		{"掲載が存在しない", nil, nil, model.ErrCodeListingNotFound},
		{"掲載が非公開", closed, nil, model.ErrCodeListingNotPublished},
		{"締切超過", pastDeadline, nil, model.ErrCodeDeadlinePassed},
		{"重複応募", publishedListing(), &model.Application{ID: "app-1"}, model.ErrCodeDuplicateApplication},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appRepo := &mockApplicationRepo{
				findByListingStudentFunc: func(ctx context.Context, internshipID, studentID string) (*model.Application, error) {
					return tt.existing, nil
				},
			}
			listingRepo := &mockInternshipRepo{
				findByIDFunc: func(ctx context.Context, id string) (*model.Internship, error) {
					return tt.listing, nil
				},
			}
			svc := NewService(appRepo, listingRepo, &recordingNotifier{}, trimSanitizer{})

			_, err := svc.Apply(context.Background(), "student-1", "listing-1", "志望動機")
			assertAPIErrorCode(t, err, tt.wantCode)
		})
	}
}

func TestUpdateStatus_Success(t *testing.T) {
	appRepo := &mockApplicationRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Application, error) {
			return &model.Application{
				ID:           id,
				InternshipID: "listing-1",
				StudentID:    "student-1",
				Status:       model.ApplicationStatusPending,
			}, nil
		},
	}
	listingRepo := &mockInternshipRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Internship, error) {
			return publishedListing(), nil
		},
	}
	notifier := &recordingNotifier{}
	svc := NewService(appRepo, listingRepo, notifier, trimSanitizer{})

	app, err := svc.UpdateStatus(context.Background(), "company-1", "app-1", model.ApplicationStatusAccepted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if app.Status != model.ApplicationStatusAccepted {
		t.Errorf("expected accepted, got %s", app.Status)
	}

	// 学生に成功種別の通知が届く
	if len(notifier.userIDs) != 1 || notifier.userIDs[0] != "student-1" {
		t.Fatalf("expected notification to student-1, got %v", notifier.userIDs)
	}
	if notifier.kinds[0] != model.NotificationKindSuccess {
		t.Errorf("expected success kind for accepted, got %s", notifier.kinds[0])
	}
}

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	svc := NewService(&mockApplicationRepo{}, &mockInternshipRepo{}, &recordingNotifier{}, trimSanitizer{})

	_, err := svc.UpdateStatus(context.Background(), "company-1", "app-1", "hired")
	assertAPIErrorCode(t, err, model.ErrCodeInvalidStatus)
}

func TestUpdateStatus_OtherCompanyForbidden(t *testing.T) {
	appRepo := &mockApplicationRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Application, error) {
			return &model.Application{ID: id, InternshipID: "listing-1", StudentID: "student-1"}, nil
		},
	}
	listingRepo := &mockInternshipRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Internship, error) {
			return publishedListing(), nil
		},
	}
	svc := NewService(appRepo, listingRepo, &recordingNotifier{}, trimSanitizer{})

	// 他社の掲載への応募は存在しないものとして扱う
	_, err := svc.UpdateStatus(context.Background(), "company-2", "app-1", model.ApplicationStatusReviewing)
	assertAPIErrorCode(t, err, model.ErrCodeApplicationNotFound)
}

func TestListForListing_OwnershipCheck(t *testing.T) {
	listingRepo := &mockInternshipRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Internship, error) {
			return publishedListing(), nil
		},
	}
	appRepo := &mockApplicationRepo{
		listByInternshipFunc: func(ctx context.Context, internshipID string) ([]*model.Application, error) {
			return []*model.Application{{ID: "app-1"}}, nil
		},
	}
	svc := NewService(appRepo, listingRepo, &recordingNotifier{}, trimSanitizer{})

	apps, err := svc.ListForListing(context.Background(), "company-1", "listing-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(apps) != 1 {
		t.Errorf("expected 1 application, got %d", len(apps))
	}

	_, err = svc.ListForListing(context.Background(), "company-2", "listing-1")
	assertAPIErrorCode(t, err, model.ErrCodeListingNotFound)
}
