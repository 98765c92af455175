// Package model はドメインモデルを定義する。
package model

import "time"

// NotificationKind はアプリ内通知の種別を表す。
type NotificationKind string

const (
	// NotificationKindInfo は情報通知。
	NotificationKindInfo NotificationKind = "info"
	// NotificationKindSuccess は成功通知。
	NotificationKindSuccess NotificationKind = "success"
	// NotificationKindWarning は警告通知。
	NotificationKindWarning NotificationKind = "warning"
	// NotificationKindError はエラー通知。
	NotificationKindError NotificationKind = "error"
)

// Notification はユーザー単位のアプリ内通知を表す。
// 通知は必ず1人のユーザーに属し、他ユーザーのリストに混入してはならない。
type Notification struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Kind      NotificationKind `json:"kind"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}
