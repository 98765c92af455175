// Package cleanup はセッションと通知の自動整理ジョブを提供する。
// 期限切れセッションの削除と、ユーザーごとの通知履歴の保持件数超過分の
// 削除を日次バッチで実行する。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SessionPurger は期限切れセッションの削除を抽象化するインターフェース。
type SessionPurger interface {
	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// NotificationTrimmer は通知履歴の保持件数超過分の削除を抽象化するインターフェース。
type NotificationTrimmer interface {
	// Trim は各ユーザーの通知をkeep件まで残して削除し、削除件数を返す。
	Trim(ctx context.Context, keep int) (int, error)
}

// CleanupJob は期限切れセッションと古い通知の自動削除ジョブ。
// 日次実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type CleanupJob struct {
	sessions      SessionPurger
	notifications NotificationTrimmer
	logger        *slog.Logger

	// NotificationKeep はユーザーごとに保持する通知件数（デフォルト: 100）。
	NotificationKeep int
}

// NewCleanupJob は新しいCleanupJobを生成する。
// デフォルトの通知保持件数は100件。
func NewCleanupJob(sessions SessionPurger, notifications NotificationTrimmer, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		sessions:         sessions,
		notifications:    notifications,
		logger:           logger,
		NotificationKeep: 100,
	}
}

// Run は期限切れセッションと保持件数を超えた通知を削除する。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	purged, err := j.sessions.DeleteExpired(ctx, time.Now())
	if err != nil {
		j.logger.Error("期限切れセッションの削除に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("期限切れセッションの削除に失敗: %w", err)
	}

	trimmed, err := j.notifications.Trim(ctx, j.NotificationKeep)
	if err != nil {
		j.logger.Error("通知履歴の整理に失敗しました",
			slog.String("error", err.Error()),
			slog.Int("keep", j.NotificationKeep),
		)
		return fmt.Errorf("通知履歴の整理に失敗: %w", err)
	}

	duration := time.Since(start)
	j.logger.Info("クリーンアップジョブが完了しました",
		slog.Int64("purged_sessions", purged),
		slog.Int("trimmed_notifications", trimmed),
		slog.Int("notification_keep", j.NotificationKeep),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}
