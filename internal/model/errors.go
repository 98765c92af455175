// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, listing, application, message, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized         = "UNAUTHORIZED"
	ErrCodeInvalidCredentials   = "INVALID_CREDENTIALS"
	ErrCodeDuplicateAccount     = "DUPLICATE_ACCOUNT"
	ErrCodeProfileNotFound      = "PROFILE_NOT_FOUND"
	ErrCodeInvalidRole          = "INVALID_ROLE"
	ErrCodeValidation           = "VALIDATION_FAILED"
	ErrCodeForbidden            = "FORBIDDEN"
	ErrCodeUserNotFound         = "USER_NOT_FOUND"
	ErrCodeListingNotFound      = "LISTING_NOT_FOUND"
	ErrCodeListingNotPublished  = "LISTING_NOT_PUBLISHED"
	ErrCodeDeadlinePassed       = "DEADLINE_PASSED"
	ErrCodeDuplicateApplication = "DUPLICATE_APPLICATION"
	ErrCodeApplicationNotFound  = "APPLICATION_NOT_FOUND"
	ErrCodeInvalidStatus        = "INVALID_STATUS"
)

// NewUnauthorizedError は認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewInvalidCredentialsError は認証情報不一致エラーを生成する。
// メールアドレスとパスワードのどちらが誤っているかは明かさない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewDuplicateAccountError はメールアドレス重複エラーを生成する。
// プロバイダーの生メッセージではなく、ローカライズ済みメッセージを返す。
func NewDuplicateAccountError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateAccount,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "auth",
		Action:   "ログイン画面からログインするか、別のメールアドレスで登録してください。",
	}
}

// NewProfileNotFoundError はプロフィール未存在エラーを生成する。
// 有効なセッショントークンに対応するプロフィールが無い場合は
// セッション自体を無効として扱う（フェイルクローズ）。
func NewProfileNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeProfileNotFound,
		Message:  "プロフィールが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewInvalidRoleError は不正な役割エラーを生成する。
func NewInvalidRoleError(role string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRole,
		Message:  fmt.Sprintf("無効なユーザー種別です: %s", role),
		Category: "validation",
		Action:   "ユーザー種別には student または company を指定してください。",
	}
}

// NewValidationError は入力検証エラーを生成する。
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  message,
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewForbiddenError は権限不足エラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "この操作を行う権限がありません。",
		Category: "auth",
		Action:   "ご自身のアカウント種別でアクセス可能な画面をご利用ください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "宛先のユーザーIDを確認してください。",
	}
}

// NewListingNotFoundError は掲載が見つからない場合のエラーを生成する。
func NewListingNotFoundError(listingID string) *APIError {
	return &APIError{
		Code:     ErrCodeListingNotFound,
		Message:  fmt.Sprintf("指定されたインターンシップが見つかりません: %s", listingID),
		Category: "listing",
		Action:   "掲載IDを確認してください。",
	}
}

// NewListingNotPublishedError は非公開掲載への応募エラーを生成する。
func NewListingNotPublishedError() *APIError {
	return &APIError{
		Code:     ErrCodeListingNotPublished,
		Message:  "このインターンシップは現在応募を受け付けていません。",
		Category: "application",
		Action:   "公開中の掲載から応募先を選んでください。",
	}
}

// NewDeadlinePassedError は応募締切超過エラーを生成する。
func NewDeadlinePassedError() *APIError {
	return &APIError{
		Code:     ErrCodeDeadlinePassed,
		Message:  "このインターンシップの応募締切を過ぎています。",
		Category: "application",
		Action:   "募集中の他の掲載をご確認ください。",
	}
}

// NewDuplicateApplicationError は重複応募エラーを生成する。
func NewDuplicateApplicationError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateApplication,
		Message:  "このインターンシップには既に応募済みです。",
		Category: "application",
		Action:   "応募一覧から選考状況を確認してください。",
	}
}

// NewApplicationNotFoundError は応募が見つからない場合のエラーを生成する。
func NewApplicationNotFoundError(applicationID string) *APIError {
	return &APIError{
		Code:     ErrCodeApplicationNotFound,
		Message:  fmt.Sprintf("指定された応募が見つかりません: %s", applicationID),
		Category: "application",
		Action:   "応募IDを確認してください。",
	}
}

// NewInvalidStatusError は無効なステータス指定エラーを生成する。
func NewInvalidStatusError(status string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidStatus,
		Message:  fmt.Sprintf("無効なステータスです: %s", status),
		Category: "validation",
		Action:   "pending、reviewing、interview、accepted、rejected のいずれかを指定してください。",
	}
}
