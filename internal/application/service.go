// Package application は応募と選考ステータス管理のドメインロジックを提供する。
package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/moriyama/internmatch/internal/model"
	"github.com/moriyama/internmatch/internal/repository"
)

// Notifier はアプリ内通知の発行インターフェース。
// 通知の失敗は応募処理自体を失敗させない。
type Notifier interface {
	Add(ctx context.Context, userID, title, message string, kind model.NotificationKind) error
}

// Sanitizer は志望動機のプレーンテキスト化インターフェース。
type Sanitizer interface {
	SanitizeText(raw string) string
}

// Service は応募管理のサービス層。
type Service struct {
	applicationRepo repository.ApplicationRepository
	internshipRepo  repository.InternshipRepository
	notifier        Notifier
	sanitizer       Sanitizer
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	applicationRepo repository.ApplicationRepository,
	internshipRepo repository.InternshipRepository,
	notifier Notifier,
	sanitizer Sanitizer,
) *Service {
	return &Service{
		applicationRepo: applicationRepo,
		internshipRepo:  internshipRepo,
		notifier:        notifier,
		sanitizer:       sanitizer,
	}
}

// statusLabels は選考ステータスの表示名。通知メッセージに使う。
var statusLabels = map[model.ApplicationStatus]string{
	model.ApplicationStatusPending:   "応募受付",
	model.ApplicationStatusReviewing: "書類選考中",
	model.ApplicationStatusInterview: "面接",
	model.ApplicationStatusAccepted:  "採用",
	model.ApplicationStatusRejected:  "不採用",
}

// Apply は学生がインターンシップに応募する。
// 公開中かつ締切前の掲載に対してのみ応募でき、同一掲載への応募は1回まで。
func (s *Service) Apply(ctx context.Context, studentID, internshipID, coverLetter string) (*model.Application, error) {
	listing, err := s.internshipRepo.FindByID(ctx, internshipID)
	if err != nil {
		return nil, fmt.Errorf("掲載の取得に失敗しました: %w", err)
	}
	if listing == nil {
		return nil, model.NewListingNotFoundError(internshipID)
	}
	if listing.Status != model.ListingStatusPublished {
		return nil, model.NewListingNotPublishedError()
	}
	if time.Now().After(listing.ApplicationDeadline) {
		return nil, model.NewDeadlinePassedError()
	}

	existing, err := s.applicationRepo.FindByListingAndStudent(ctx, internshipID, studentID)
	if err != nil {
		return nil, fmt.Errorf("応募の重複チェックに失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewDuplicateApplicationError()
	}

	now := time.Now()
	app := &model.Application{
		ID:           uuid.New().String(),
		InternshipID: internshipID,
		StudentID:    studentID,
		Status:       model.ApplicationStatusPending,
		CoverLetter:  s.sanitizer.SanitizeText(coverLetter),
		AppliedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.applicationRepo.Create(ctx, app); err != nil {
		return nil, fmt.Errorf("応募の作成に失敗しました: %w", err)
	}

	slog.Info("application submitted",
		slog.String("application_id", app.ID),
		slog.String("listing_id", internshipID),
		slog.String("student_id", studentID),
	)

	s.notify(ctx, listing.CompanyID, "新しい応募があります",
		fmt.Sprintf("「%s」に新しい応募が届きました。", listing.Title),
		model.NotificationKindInfo)

	return app, nil
}

// UpdateStatus は企業が応募の選考ステータスを更新する。
// 自社掲載への応募のみ更新でき、更新後に学生へ通知が届く。
func (s *Service) UpdateStatus(ctx context.Context, companyID, applicationID string, status model.ApplicationStatus) (*model.Application, error) {
	if !status.IsValid() {
		return nil, model.NewInvalidStatusError(string(status))
	}

	app, err := s.applicationRepo.FindByID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("応募の取得に失敗しました: %w", err)
	}
	if app == nil {
		return nil, model.NewApplicationNotFoundError(applicationID)
	}

	listing, err := s.internshipRepo.FindByID(ctx, app.InternshipID)
	if err != nil {
		return nil, fmt.Errorf("掲載の取得に失敗しました: %w", err)
	}
	if listing == nil || listing.CompanyID != companyID {
		// 他社掲載への応募は存在しないものとして扱う
		return nil, model.NewApplicationNotFoundError(applicationID)
	}

	now := time.Now()
	if err := s.applicationRepo.UpdateStatus(ctx, applicationID, status, now); err != nil {
		return nil, fmt.Errorf("選考ステータスの更新に失敗しました: %w", err)
	}
	app.Status = status
	app.UpdatedAt = now

	slog.Info("application status updated",
		slog.String("application_id", applicationID),
		slog.String("status", string(status)),
	)

	s.notify(ctx, app.StudentID, "選考ステータスが更新されました",
		fmt.Sprintf("「%s」の選考ステータスが「%s」になりました。", listing.Title, statusLabels[status]),
		notificationKindForStatus(status))

	return app, nil
}

// ListMine は学生自身の応募一覧を掲載情報付きで返す。
func (s *Service) ListMine(ctx context.Context, studentID string) ([]repository.ApplicationWithListing, error) {
	results, err := s.applicationRepo.ListByStudentID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("応募一覧の取得に失敗しました: %w", err)
	}
	return results, nil
}

// ListForListing は自社掲載への応募一覧を返す。
func (s *Service) ListForListing(ctx context.Context, companyID, internshipID string) ([]*model.Application, error) {
	listing, err := s.internshipRepo.FindByID(ctx, internshipID)
	if err != nil {
		return nil, fmt.Errorf("掲載の取得に失敗しました: %w", err)
	}
	if listing == nil || listing.CompanyID != companyID {
		return nil, model.NewListingNotFoundError(internshipID)
	}

	results, err := s.applicationRepo.ListByInternshipID(ctx, internshipID)
	if err != nil {
		return nil, fmt.Errorf("応募一覧の取得に失敗しました: %w", err)
	}
	return results, nil
}

// notify は通知を発行する。失敗してもログに残すだけで処理は続行する。
func (s *Service) notify(ctx context.Context, userID, title, message string, kind model.NotificationKind) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Add(ctx, userID, title, message, kind); err != nil {
		slog.Warn("通知の発行に失敗",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}

// notificationKindForStatus は選考ステータスに応じた通知種別を返す。
func notificationKindForStatus(status model.ApplicationStatus) model.NotificationKind {
	switch status {
	case model.ApplicationStatusAccepted:
		return model.NotificationKindSuccess
	case model.ApplicationStatusRejected:
		return model.NotificationKindWarning
	}
	return model.NotificationKindInfo
}
