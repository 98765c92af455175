// Package auth はメールアドレスとパスワードによる認証とセッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/moriyama/internmatch/internal/guard"
	"github.com/moriyama/internmatch/internal/model"
	"github.com/moriyama/internmatch/internal/repository"
)

// ProfileGateway はプロフィールの取得と作成のインターフェース。
// 登録時のデフォルトプロフィール合成とログイン時の取得に使う。
type ProfileGateway interface {
	Fetch(ctx context.Context, userID string) (*model.Profile, error)
	Upsert(ctx context.Context, userID string, partial map[string]any) (*model.Profile, error)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	accountRepo repository.AccountRepository
	sessionRepo repository.SessionRepository
	profiles    ProfileGateway
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	accountRepo repository.AccountRepository,
	sessionRepo repository.SessionRepository,
	profiles ProfileGateway,
	config ServiceConfig,
) *Service {
	return &Service{
		accountRepo: accountRepo,
		sessionRepo: sessionRepo,
		profiles:    profiles,
		config:      config,
	}
}

// AuthResult は登録・ログイン成功時の結果。
// RedirectToはクライアントが遷移すべき画面パス。
type AuthResult struct {
	Session    *model.Session
	Profile    *model.Profile
	RedirectTo string
}

// Register は新規アカウントを登録し、初期プロフィールを合成してセッションを発行する。
// メールアドレス重複時はローカライズ済みのエラーを返す
// （ストレージ層の生のエラーメッセージをそのまま返さない）。
// 登録直後の遷移先はプロフィール編集画面。
func (s *Service) Register(ctx context.Context, email, password, name string, role model.Role) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, model.NewValidationError("メールアドレスとパスワードを入力してください。")
	}
	if len(password) < MinPasswordLength {
		return nil, model.NewValidationError(fmt.Sprintf("パスワードは%d文字以上で入力してください。", MinPasswordLength))
	}
	// 管理者は自己登録できない
	if role != model.RoleStudent && role != model.RoleCompany {
		return nil, model.NewInvalidRoleError(string(role))
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	account := &model.Account{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, model.NewDuplicateAccountError()
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	// 役割に応じた初期プロフィールを合成する
	partial := map[string]any{
		"user_type": string(role),
		"email":     email,
		"name":      name,
	}
	switch role {
	case model.RoleStudent:
		// 卒業予定年のデフォルトは4年後
		partial["graduation_year"] = now.Year() + 4
	case model.RoleCompany:
		partial["company_name"] = name
	}

	profile, err := s.profiles.Upsert(ctx, account.ID, partial)
	if err != nil {
		return nil, fmt.Errorf("failed to create initial profile: %w", err)
	}

	session, err := s.createSession(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("new account registered",
		slog.String("user_id", account.ID),
		slog.String("role", string(role)),
	)

	return &AuthResult{
		Session:    session,
		Profile:    profile,
		RedirectTo: fmt.Sprintf("/%s/profile", role),
	}, nil
}

// Login はメールアドレスとパスワードを検証し、セッションを発行する。
// アカウント未存在とパスワード不一致は同じエラーとして返し、
// どちらが誤っているかを呼び出し側に漏らさない。
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, model.NewValidationError("メールアドレスとパスワードを入力してください。")
	}

	account, err := s.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	if account == nil || !VerifyPassword(account.PasswordHash, password) {
		return nil, model.NewInvalidCredentialsError()
	}

	// アカウントがあってもプロフィールが無ければログインさせない（フェイルクローズ）
	profile, err := s.profiles.Fetch(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	if profile == nil {
		return nil, model.NewProfileNotFoundError()
	}

	session, err := s.createSession(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("user logged in",
		slog.String("user_id", account.ID),
		slog.String("role", string(profile.Role)),
	)

	home, ok := guard.RoleHomePath(profile.Role)
	if !ok {
		home = guard.LoginPath
	}
	return &AuthResult{
		Session:    session,
		Profile:    profile,
		RedirectTo: home,
	}, nil
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out", slog.String("session_id", sessionID))
	return nil
}

// CurrentUser はセッションIDから現在のユーザーのプロフィールを取得する。
// セッションが有効でもプロフィールが無い場合はセッションを破棄して
// 認証エラーを返す。削除済みユーザーの既存トークンを無効化するため。
func (s *Service) CurrentUser(ctx context.Context, sessionID string) (*model.Profile, error) {
	if sessionID == "" {
		return nil, model.NewUnauthorizedError()
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, model.NewUnauthorizedError()
	}

	profile, err := s.profiles.Fetch(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	if profile == nil {
		if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
			slog.Warn("孤立セッションの削除に失敗",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
		}
		return nil, model.NewProfileNotFoundError()
	}

	return profile, nil
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, userID string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
