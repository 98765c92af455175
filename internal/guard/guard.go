// Package guard は役割制限付き画面のアクセス判定を提供する。
//
// Decideは内部状態を持たない純粋な判定関数で、ナビゲーションのたびに
// 同期的に呼び出されることを前提とする。判定はセッションの状態のみに
// 依存し、副作用を持たない。
package guard

import "github.com/moriyama/internmatch/internal/model"

// State は判定対象となるセッションの状態スナップショット。
type State struct {
	Loading       bool
	Authenticated bool
	Role          model.Role
}

// DecisionKind はアクセス判定の結果種別。
type DecisionKind string

const (
	// ShowLoadingPlaceholder はセッション確認中のため描画を保留する。
	ShowLoadingPlaceholder DecisionKind = "loading"
	// RedirectToLogin は未認証のためログイン画面へ誘導する。
	RedirectToLogin DecisionKind = "redirect_login"
	// RedirectToRoleHome は役割不一致のため当人のダッシュボードへ誘導する。
	RedirectToRoleHome DecisionKind = "redirect_role_home"
	// UnknownRole は未知の役割のためアクセスを拒否する。
	// 未知roleをそのまま通すと誘導先が解決できないため、明示的な結果として扱う。
	UnknownRole DecisionKind = "unknown_role"
	// Render は要求された画面をそのまま描画してよい。
	Render DecisionKind = "render"
)

// Decision はアクセス判定の結果。RedirectToの値は
// RedirectToLoginとRedirectToRoleHomeの場合のみ設定される。
type Decision struct {
	Kind       DecisionKind
	RedirectTo string
}

// LoginPath はログイン画面のパス。
const LoginPath = "/login"

// roleHomePaths は役割ごとのダッシュボードパス。
var roleHomePaths = map[model.Role]string{
	model.RoleStudent: "/student/dashboard",
	model.RoleCompany: "/company/dashboard",
	model.RoleAdmin:   "/admin/dashboard",
}

// RoleHomePath は役割に対応するダッシュボードパスを返す。
// 未知の役割の場合は空文字列とfalseを返す。
func RoleHomePath(role model.Role) (string, bool) {
	path, ok := roleHomePaths[role]
	return path, ok
}

// Decide はセッション状態と要求役割からアクセス可否を判定する。
// 判定は次の順に評価される:
//  1. セッション確認中なら ShowLoadingPlaceholder
//  2. 未認証なら RedirectToLogin
//  3. 要求役割が指定されていて一致しないなら、本人の役割のダッシュボードへ
//     RedirectToRoleHome（本人の役割が未知なら UnknownRole）
//  4. それ以外は Render
//
// requiredRoleが空文字列の場合は役割制限なしとして扱う。
func Decide(state State, requiredRole model.Role) Decision {
	if state.Loading {
		return Decision{Kind: ShowLoadingPlaceholder}
	}
	if !state.Authenticated {
		return Decision{Kind: RedirectToLogin, RedirectTo: LoginPath}
	}
	if requiredRole != "" && state.Role != requiredRole {
		home, ok := RoleHomePath(state.Role)
		if !ok {
			return Decision{Kind: UnknownRole}
		}
		return Decision{Kind: RedirectToRoleHome, RedirectTo: home}
	}
	return Decision{Kind: Render}
}
