// Package model はドメインモデルを定義する。
package model

import "time"

// Message はユーザー間のダイレクトメッセージを表す。
type Message struct {
	ID         string
	SenderID   string
	ReceiverID string
	Content    string
	IsRead     bool
	CreatedAt  time.Time
}
