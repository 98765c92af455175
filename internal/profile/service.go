package profile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/moriyama/internmatch/internal/model"
	"github.com/moriyama/internmatch/internal/repository"
)

// IconFinder は企業サイトのアイコンURL探索インターフェース。
// 取得失敗は致命的エラーとして扱わない。
type IconFinder interface {
	FindIconURL(ctx context.Context, siteURL string) (string, error)
}

// Service はプロフィールゲートウェイのサービス層。
// 部分更新のマージ、キー命名の正規化、roleの保存不変条件を担う。
type Service struct {
	profileRepo repository.ProfileRepository
	iconFinder  IconFinder
}

// NewService はServiceを生成する。iconFinderはnilでもよい。
func NewService(profileRepo repository.ProfileRepository, iconFinder IconFinder) *Service {
	return &Service{
		profileRepo: profileRepo,
		iconFinder:  iconFinder,
	}
}

// Fetch は指定ユーザーのプロフィールを取得する。見つからない場合はnilを返す。
func (s *Service) Fetch(ctx context.Context, userID string) (*model.Profile, error) {
	p, err := s.profileRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return p, nil
}

// Upsert はプロフィールの部分更新（初回は作成）を行い、保存後のレコードを返す。
//
// roleの扱い:
//   - 初回作成時のみ、partialで指定されたuser_typeを受け付ける（必須）。
//   - 既存レコードがある場合、partialのuser_typeは無視され、保存済みの
//     roleが常に再設定される。呼び出し側がroleを省略しても欠落しない。
//
// partialのキーはcamelCase・snake_caseのどちらでもよく、値がnullの
// フィールドは送られなかったものとして扱う。返り値は保存後のレコードで
// あり、クライアント側マージの結果ではない。
func (s *Service) Upsert(ctx context.Context, userID string, partial map[string]any) (*model.Profile, error) {
	normalized := NormalizeKeys(partial)

	existing, err := s.profileRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read existing profile: %w", err)
	}

	now := time.Now()
	var p model.Profile
	if existing == nil {
		// 初回作成: roleは必須で、このときだけクライアント指定を受け付ける
		roleStr, _ := normalized["user_type"].(string)
		role := model.Role(roleStr)
		if !role.IsValid() {
			return nil, model.NewInvalidRoleError(roleStr)
		}
		p = model.Profile{
			ID:        userID,
			Role:      role,
			CreatedAt: now,
		}
	} else {
		// 既存レコードを起点にする。applyPartialはuser_typeを適用しないため、
		// 保存済みのroleがそのまま引き継がれる。
		p = *existing
	}
	p.UpdatedAt = now

	applyPartial(&p, normalized)

	// 企業プロフィールでサイトURLがあり、アバター未設定ならアイコンを補完する
	if s.iconFinder != nil && p.Role == model.RoleCompany && p.WebsiteURL != "" && p.AvatarURL == "" {
		iconURL, err := s.iconFinder.FindIconURL(ctx, p.WebsiteURL)
		if err != nil {
			slog.Warn("企業サイトのアイコン取得に失敗",
				slog.String("user_id", userID),
				slog.String("website_url", p.WebsiteURL),
				slog.String("error", err.Error()),
			)
		} else if iconURL != "" {
			p.AvatarURL = iconURL
		}
	}

	saved, err := s.profileRepo.Save(ctx, &p)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}
	return saved, nil
}

// applyPartial は正規化済みの部分更新マップをプロフィールに適用する。
// user_type、id、created_at、updated_atはここでは適用しない
// （roleはUpsertが、それ以外はサービスが管理する）。未知のキーは無視する。
func applyPartial(p *model.Profile, partial map[string]any) {
	for key, value := range partial {
		switch key {
		case "email":
			if v, ok := value.(string); ok {
				p.Email = v
			}
		case "name":
			if v, ok := value.(string); ok {
				p.Name = v
			}
		case "location":
			if v, ok := value.(string); ok {
				p.Location = v
			}
		case "bio":
			if v, ok := value.(string); ok {
				p.Bio = v
			}
		case "avatar_url":
			if v, ok := value.(string); ok {
				p.AvatarURL = v
			}
		case "website_url":
			if v, ok := value.(string); ok {
				p.WebsiteURL = v
			}
		case "university":
			if v, ok := value.(string); ok {
				p.University = v
			}
		case "major":
			if v, ok := value.(string); ok {
				p.Major = v
			}
		case "graduation_year":
			if v, ok := toInt(value); ok {
				p.GraduationYear = v
			}
		case "skills":
			if v, ok := toStringSlice(value); ok {
				p.Skills = v
			}
		case "resume_url":
			if v, ok := value.(string); ok {
				p.ResumeURL = v
			}
		case "preferred_industries":
			if v, ok := toStringSlice(value); ok {
				p.PreferredIndustries = v
			}
		case "preferred_locations":
			if v, ok := toStringSlice(value); ok {
				p.PreferredLocations = v
			}
		case "company_name":
			if v, ok := value.(string); ok {
				p.CompanyName = v
			}
		case "industry":
			if v, ok := value.(string); ok {
				p.Industry = v
			}
		case "company_size":
			if v, ok := value.(string); ok {
				p.CompanySize = v
			}
		}
	}
}

// toInt はJSONデコード後の数値（float64またはint）をintに変換する。
func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	}
	return 0, false
}

// toStringSlice はJSONデコード後の配列を[]stringに変換する。
func toStringSlice(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case []any:
		result := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			result = append(result, s)
		}
		return result, true
	}
	return nil, false
}

// ToResponseMap はプロフィールをレスポンス用のcamelCaseキーのマップに変換する。
// ゼロ値の任意項目は出力から落とす（nullフィールドを転送しない規約と対応）。
func ToResponseMap(p *model.Profile) map[string]any {
	m := map[string]any{
		"id":         p.ID,
		"email":      p.Email,
		"name":       p.Name,
		"user_type":  string(p.Role),
		"created_at": p.CreatedAt,
		"updated_at": p.UpdatedAt,
	}
	putNonEmpty(m, "location", p.Location)
	putNonEmpty(m, "bio", p.Bio)
	putNonEmpty(m, "avatar_url", p.AvatarURL)
	putNonEmpty(m, "website_url", p.WebsiteURL)
	putNonEmpty(m, "university", p.University)
	putNonEmpty(m, "major", p.Major)
	if p.GraduationYear != 0 {
		m["graduation_year"] = p.GraduationYear
	}
	if len(p.Skills) > 0 {
		m["skills"] = p.Skills
	}
	putNonEmpty(m, "resume_url", p.ResumeURL)
	if len(p.PreferredIndustries) > 0 {
		m["preferred_industries"] = p.PreferredIndustries
	}
	if len(p.PreferredLocations) > 0 {
		m["preferred_locations"] = p.PreferredLocations
	}
	putNonEmpty(m, "company_name", p.CompanyName)
	putNonEmpty(m, "industry", p.Industry)
	putNonEmpty(m, "company_size", p.CompanySize)

	return CamelizeKeys(m)
}

func putNonEmpty(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}
