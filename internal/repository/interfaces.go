// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/moriyama/internmatch/internal/model"
)

// AccountRepository は認証情報の永続化インターフェース。
type AccountRepository interface {
	// Create はアカウントを作成する。メールアドレス重複時はErrDuplicateEmailを返す。
	Create(ctx context.Context, account *model.Account) error

	// FindByEmail はメールアドレスでアカウントを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.Account, error)

	// FindByID は指定IDのアカウントを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Account, error)
}

// ProfileRepository はプロフィールの永続化インターフェース。
type ProfileRepository interface {
	// FindByID は指定IDのプロフィールを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Profile, error)

	// Save はプロフィールをUPSERTし、保存後のレコードを返す。
	// 呼び出し側がrole保存の不変条件を守る前提で、行全体を書き込む。
	Save(ctx context.Context, profile *model.Profile) (*model.Profile, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// InternshipSearchQuery は公開掲載の検索条件。
type InternshipSearchQuery struct {
	Keyword  string // タイトル・説明・業種への部分一致（大文字小文字を区別しない）
	Location string // 勤務地への部分一致
	Limit    int
	Offset   int
}

// InternshipRepository はインターンシップ掲載の永続化インターフェース。
type InternshipRepository interface {
	// FindByID は指定IDの掲載を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Internship, error)

	// Create は掲載を作成する。
	Create(ctx context.Context, internship *model.Internship) error

	// Update は掲載を上書き更新する。
	Update(ctx context.Context, internship *model.Internship) error

	// ListByCompanyID は企業の掲載一覧を作成日時降順で返す。
	ListByCompanyID(ctx context.Context, companyID string) ([]*model.Internship, error)

	// SearchPublished は公開中の掲載を検索する。
	SearchPublished(ctx context.Context, query InternshipSearchQuery) ([]*model.Internship, error)
}

// ApplicationWithListing は応募と掲載情報を結合した構造体。
type ApplicationWithListing struct {
	model.Application
	InternshipTitle string
	CompanyName     string
}

// ApplicationRepository は応募データの永続化インターフェース。
type ApplicationRepository interface {
	// FindByID は指定IDの応募を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Application, error)

	// FindByListingAndStudent は掲載IDと学生IDで応募を検索する。見つからない場合はnilを返す。
	FindByListingAndStudent(ctx context.Context, internshipID, studentID string) (*model.Application, error)

	// Create は応募を作成する。
	Create(ctx context.Context, application *model.Application) error

	// UpdateStatus は応募の選考ステータスを更新する。
	UpdateStatus(ctx context.Context, id string, status model.ApplicationStatus, updatedAt time.Time) error

	// ListByStudentID は学生の応募一覧を掲載情報付きで応募日時降順に返す。
	ListByStudentID(ctx context.Context, studentID string) ([]ApplicationWithListing, error)

	// ListByInternshipID は掲載への応募一覧を応募日時降順に返す。
	ListByInternshipID(ctx context.Context, internshipID string) ([]*model.Application, error)
}

// ConversationSummary は会話相手ごとの要約。
type ConversationSummary struct {
	PartnerID   string
	PartnerName string
	LastMessage model.Message
	UnreadCount int
}

// MessageRepository はダイレクトメッセージの永続化インターフェース。
type MessageRepository interface {
	// Create はメッセージを作成する。
	Create(ctx context.Context, message *model.Message) error

	// ListConversation は2ユーザー間のメッセージを作成日時昇順で返す。
	ListConversation(ctx context.Context, userID, partnerID string) ([]*model.Message, error)

	// ListConversationSummaries はユーザーの会話一覧（相手ごとの最新1件と未読数）を返す。
	ListConversationSummaries(ctx context.Context, userID string) ([]ConversationSummary, error)

	// MarkConversationRead は相手からの未読メッセージを既読にする。
	MarkConversationRead(ctx context.Context, userID, partnerID string) error
}

// StateStore はキー・バリュー形式の永続化インターフェース。
// 通知ストアが notifications_<user_id> キーでJSON配列を保存するのに使う。
type StateStore interface {
	// Get はキーに対応する値を返す。キーが存在しない場合はnilを返す。
	Get(ctx context.Context, key string) ([]byte, error)
	// Set はキーに値を保存する（UPSERT）。
	Set(ctx context.Context, key string, value []byte) error
	// Delete はキーを削除する。存在しないキーはエラーにしない。
	Delete(ctx context.Context, key string) error
	// Keys は指定プレフィックスを持つ全キーを返す。
	Keys(ctx context.Context, prefix string) ([]string, error)
}
