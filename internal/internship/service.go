// Package internship はインターンシップ掲載のドメインロジックを提供する。
package internship

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/moriyama/internmatch/internal/model"
	"github.com/moriyama/internmatch/internal/repository"
)

// Sanitizer は掲載説明文のHTMLサニタイズのインターフェース。
type Sanitizer interface {
	SanitizeRichText(rawHTML string) string
}

// ListingInput は掲載の作成・更新の入力。
type ListingInput struct {
	Title               string
	Description         string
	Requirements        []string
	Responsibilities    []string
	Location            string
	IsRemote            bool
	SalaryAmount        int
	SalaryPeriod        model.SalaryPeriod
	StartDate           time.Time
	EndDate             time.Time
	HoursPerWeek        int
	ApplicationDeadline time.Time
	Industry            string
	Skills              []string
}

// Service はインターンシップ掲載のサービス層。
type Service struct {
	internshipRepo repository.InternshipRepository
	sanitizer      Sanitizer
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(internshipRepo repository.InternshipRepository, sanitizer Sanitizer) *Service {
	return &Service{
		internshipRepo: internshipRepo,
		sanitizer:      sanitizer,
	}
}

// Create は下書き状態の掲載を作成する。説明文はサニタイズ済みで保存される。
func (s *Service) Create(ctx context.Context, companyID string, input ListingInput) (*model.Internship, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	now := time.Now()
	listing := &model.Internship{
		ID:                  uuid.New().String(),
		CompanyID:           companyID,
		Title:               input.Title,
		Description:         s.sanitizer.SanitizeRichText(input.Description),
		Requirements:        input.Requirements,
		Responsibilities:    input.Responsibilities,
		Location:            input.Location,
		IsRemote:            input.IsRemote,
		SalaryAmount:        input.SalaryAmount,
		SalaryPeriod:        input.SalaryPeriod,
		StartDate:           input.StartDate,
		EndDate:             input.EndDate,
		HoursPerWeek:        input.HoursPerWeek,
		ApplicationDeadline: input.ApplicationDeadline,
		Industry:            input.Industry,
		Skills:              input.Skills,
		Status:              model.ListingStatusDraft,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.internshipRepo.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("掲載の作成に失敗しました: %w", err)
	}

	slog.Info("internship listing created",
		slog.String("listing_id", listing.ID),
		slog.String("company_id", companyID),
	)
	return listing, nil
}

// Update は掲載を更新する。自社の掲載のみ更新できる。
func (s *Service) Update(ctx context.Context, companyID, listingID string, input ListingInput) (*model.Internship, error) {
	listing, err := s.findOwned(ctx, companyID, listingID)
	if err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	listing.Title = input.Title
	listing.Description = s.sanitizer.SanitizeRichText(input.Description)
	listing.Requirements = input.Requirements
	listing.Responsibilities = input.Responsibilities
	listing.Location = input.Location
	listing.IsRemote = input.IsRemote
	listing.SalaryAmount = input.SalaryAmount
	listing.SalaryPeriod = input.SalaryPeriod
	listing.StartDate = input.StartDate
	listing.EndDate = input.EndDate
	listing.HoursPerWeek = input.HoursPerWeek
	listing.ApplicationDeadline = input.ApplicationDeadline
	listing.Industry = input.Industry
	listing.Skills = input.Skills
	listing.UpdatedAt = time.Now()

	if err := s.internshipRepo.Update(ctx, listing); err != nil {
		return nil, fmt.Errorf("掲載の更新に失敗しました: %w", err)
	}
	return listing, nil
}

// Publish は掲載を公開する。公開後は検索・応募の対象になる。
func (s *Service) Publish(ctx context.Context, companyID, listingID string) (*model.Internship, error) {
	return s.transition(ctx, companyID, listingID, model.ListingStatusPublished)
}

// Close は掲載の募集を終了する。
func (s *Service) Close(ctx context.Context, companyID, listingID string) (*model.Internship, error) {
	return s.transition(ctx, companyID, listingID, model.ListingStatusClosed)
}

// Get は掲載を取得する。下書きは掲載した企業自身にしか見えない。
func (s *Service) Get(ctx context.Context, viewerID, listingID string) (*model.Internship, error) {
	listing, err := s.internshipRepo.FindByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("掲載の取得に失敗しました: %w", err)
	}
	if listing == nil {
		return nil, model.NewListingNotFoundError(listingID)
	}
	if listing.Status == model.ListingStatusDraft && listing.CompanyID != viewerID {
		// 存在自体を漏らさない
		return nil, model.NewListingNotFoundError(listingID)
	}
	return listing, nil
}

// Search は公開中の掲載を検索する。
func (s *Service) Search(ctx context.Context, query repository.InternshipSearchQuery) ([]*model.Internship, error) {
	results, err := s.internshipRepo.SearchPublished(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("掲載の検索に失敗しました: %w", err)
	}
	return results, nil
}

// ListMine は企業自身の掲載一覧を返す。下書きも含む。
func (s *Service) ListMine(ctx context.Context, companyID string) ([]*model.Internship, error) {
	results, err := s.internshipRepo.ListByCompanyID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("掲載一覧の取得に失敗しました: %w", err)
	}
	return results, nil
}

// transition は掲載のステータスを変更する。
func (s *Service) transition(ctx context.Context, companyID, listingID string, status model.ListingStatus) (*model.Internship, error) {
	listing, err := s.findOwned(ctx, companyID, listingID)
	if err != nil {
		return nil, err
	}

	listing.Status = status
	listing.UpdatedAt = time.Now()
	if err := s.internshipRepo.Update(ctx, listing); err != nil {
		return nil, fmt.Errorf("掲載ステータスの更新に失敗しました: %w", err)
	}

	slog.Info("internship listing status changed",
		slog.String("listing_id", listingID),
		slog.String("status", string(status)),
	)
	return listing, nil
}

// findOwned は自社の掲載を取得する。他社の掲載は存在しないものとして扱う。
func (s *Service) findOwned(ctx context.Context, companyID, listingID string) (*model.Internship, error) {
	listing, err := s.internshipRepo.FindByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("掲載の取得に失敗しました: %w", err)
	}
	if listing == nil {
		return nil, model.NewListingNotFoundError(listingID)
	}
	if listing.CompanyID != companyID {
		return nil, model.NewListingNotFoundError(listingID)
	}
	return listing, nil
}

// validateInput は掲載入力の整合性を検証する。
func validateInput(input ListingInput) error {
	if input.Title == "" {
		return model.NewValidationError("タイトルを入力してください。")
	}
	if input.Description == "" {
		return model.NewValidationError("募集内容を入力してください。")
	}
	if input.SalaryAmount < 0 {
		return model.NewValidationError("給与額には0以上の値を指定してください。")
	}
	if input.SalaryPeriod != model.SalaryPeriodHourly && input.SalaryPeriod != model.SalaryPeriodMonthly {
		return model.NewValidationError("給与単位には hourly または monthly を指定してください。")
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() || input.ApplicationDeadline.IsZero() {
		return model.NewValidationError("開始日・終了日・応募締切を入力してください。")
	}
	if input.EndDate.Before(input.StartDate) {
		return model.NewValidationError("終了日は開始日以降の日付を指定してください。")
	}
	if input.ApplicationDeadline.After(input.StartDate) {
		return model.NewValidationError("応募締切は開始日以前の日付を指定してください。")
	}
	return nil
}
