// Package model はドメインモデルを定義する。
package model

import "time"

// Role はユーザーの役割を表す。作成時に一度だけ設定され、以後変更されない。
type Role string

const (
	// RoleStudent はインターンシップを探す学生ユーザー。
	RoleStudent Role = "student"
	// RoleCompany はインターンシップを掲載する企業ユーザー。
	RoleCompany Role = "company"
	// RoleAdmin は管理者ユーザー。
	RoleAdmin Role = "admin"
)

// IsValid は既知の役割かどうかを判定する。
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleCompany, RoleAdmin:
		return true
	}
	return false
}

// Profile は認証済みユーザーのプロフィールを表す。
// Roleは作成時に確定し、部分更新で上書き・欠落させてはならない。
type Profile struct {
	ID        string
	Email     string
	Name      string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time

	// 共通の任意項目
	Location   string
	Bio        string
	AvatarURL  string
	WebsiteURL string

	// 学生固有の項目
	University          string
	Major               string
	GraduationYear      int
	Skills              []string
	ResumeURL           string
	PreferredIndustries []string
	PreferredLocations  []string

	// 企業固有の項目
	CompanyName string
	Industry    string
	CompanySize string
}

// Account は認証情報（メールアドレスとパスワードハッシュ）を表す。
// プロフィールとは別テーブルで管理し、パスワードハッシュが
// プロフィールAPIのレスポンスに混入しないようにする。
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Session はユーザーのログインセッションを表す。
// IDがそのままBearerトークンとしてクライアントに渡される。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
