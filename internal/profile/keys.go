// Package profile はプロフィールゲートウェイのドメインロジックを提供する。
//
// フロントエンドはcamelCase、データベースはsnake_caseのキー命名を使うため、
// ゲートウェイが両方向の変換を担う。変換は可逆（ロスレス）であり、
// 値がnullのフィールドは転送せずに落とす。そのため、このインターフェース経由で
// 「フィールドを空にする」操作は表現できない。
package profile

import "strings"

// ToSnakeKey はcamelCaseのキーをsnake_caseに変換する。
// すでにsnake_caseのキーはそのまま返る（graduationYear → graduation_year）。
func ToSnakeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ToCamelKey はsnake_caseのキーをcamelCaseに変換する。
// graduation_year → graduationYear。
func ToCamelKey(key string) string {
	var b strings.Builder
	upper := false
	for _, r := range key {
		if r == '_' {
			upper = true
			continue
		}
		if upper && r >= 'a' && r <= 'z' {
			b.WriteRune(r - 'a' + 'A')
			upper = false
			continue
		}
		upper = false
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizeKeys は部分更新マップのキーをsnake_caseに正規化する。
// 値がnilのエントリは削除の意味ではなく「送られていない」として落とす。
func NormalizeKeys(partial map[string]any) map[string]any {
	result := make(map[string]any, len(partial))
	for key, value := range partial {
		if value == nil {
			continue
		}
		result[ToSnakeKey(key)] = value
	}
	return result
}

// CamelizeKeys はレスポンス用マップのキーをcamelCaseに変換する。
// 値がnilのエントリは落とす。
func CamelizeKeys(m map[string]any) map[string]any {
	result := make(map[string]any, len(m))
	for key, value := range m {
		if value == nil {
			continue
		}
		result[ToCamelKey(key)] = value
	}
	return result
}
