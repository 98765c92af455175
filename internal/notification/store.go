// Package notification はユーザー単位のアプリ内通知ストアを提供する。
// 通知はユーザーIDごとに独立したキーでJSON配列として永続化され、
// あるユーザーの操作が他ユーザーのリストに影響することはない。
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/moriyama/internmatch/internal/model"
	"github.com/moriyama/internmatch/internal/repository"
)

// keyPrefix は通知リストの保存キーのプレフィックス。
// キーは keyPrefix + ユーザーID の形で組み立てる。
const keyPrefix = "notifications_"

// MetricsRecorder は通知発行メトリクスの記録を抽象化するインターフェース。
type MetricsRecorder interface {
	RecordNotificationIssued()
}

// Store はユーザー単位の通知リストを管理する。
type Store struct {
	state   repository.StateStore
	metrics MetricsRecorder
}

// NewStore はStoreを生成する。
func NewStore(state repository.StateStore) *Store {
	return &Store{state: state}
}

// SetMetricsCollector は通知発行メトリクスの記録先を設定する。nilなら記録しない。
func (s *Store) SetMetricsCollector(m MetricsRecorder) {
	s.metrics = m
}

// storageKey は指定ユーザーの通知リストの保存キーを返す。
func storageKey(userID string) string {
	return keyPrefix + userID
}

// Add は指定ユーザーに通知を追加する。新しい通知がリストの先頭に来る。
// userIDが空の場合は何もしない（未ログイン状態での発火を握りつぶす）。
func (s *Store) Add(ctx context.Context, userID, title, message string, kind model.NotificationKind) error {
	if userID == "" {
		return nil
	}

	list, err := s.List(ctx, userID)
	if err != nil {
		return err
	}

	n := model.Notification{
		ID:        uuid.New().String(),
		Title:     title,
		Message:   message,
		Kind:      kind,
		IsRead:    false,
		CreatedAt: time.Now(),
	}
	list = append([]model.Notification{n}, list...)

	if err := s.save(ctx, userID, list); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.RecordNotificationIssued()
	}
	return nil
}

// List は指定ユーザーの通知を新しい順で返す。通知が無い場合は空スライスを返す。
func (s *Store) List(ctx context.Context, userID string) ([]model.Notification, error) {
	raw, err := s.state.Get(ctx, storageKey(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to load notifications: %w", err)
	}
	if raw == nil {
		return []model.Notification{}, nil
	}

	var list []model.Notification
	if err := json.Unmarshal(raw, &list); err != nil {
		// 壊れたデータは空リストとして扱い、次の保存で上書きする
		slog.Warn("通知リストのデコードに失敗",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return []model.Notification{}, nil
	}
	return list, nil
}

// UnreadCount は指定ユーザーの未読通知数を返す。
func (s *Store) UnreadCount(ctx context.Context, userID string) (int, error) {
	list, err := s.List(ctx, userID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, n := range list {
		if !n.IsRead {
			count++
		}
	}
	return count, nil
}

// MarkRead は指定通知を既読にする。存在しないIDは無視する。
func (s *Store) MarkRead(ctx context.Context, userID, notificationID string) error {
	list, err := s.List(ctx, userID)
	if err != nil {
		return err
	}

	changed := false
	for i := range list {
		if list[i].ID == notificationID && !list[i].IsRead {
			list[i].IsRead = true
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.save(ctx, userID, list)
}

// MarkAllRead は指定ユーザーの全通知を既読にする。
func (s *Store) MarkAllRead(ctx context.Context, userID string) error {
	list, err := s.List(ctx, userID)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return nil
	}

	for i := range list {
		list[i].IsRead = true
	}
	return s.save(ctx, userID, list)
}

// Clear は指定ユーザーの通知をすべて削除する。
func (s *Store) Clear(ctx context.Context, userID string) error {
	if err := s.state.Delete(ctx, storageKey(userID)); err != nil {
		return fmt.Errorf("failed to clear notifications: %w", err)
	}
	return nil
}

// Trim は各ユーザーの通知リストを新しい順にkeep件まで切り詰める。
// 定期クリーンアップから呼ばれ、切り詰めた通知の総数を返す。
func (s *Store) Trim(ctx context.Context, keep int) (int, error) {
	keys, err := s.state.Keys(ctx, keyPrefix)
	if err != nil {
		return 0, fmt.Errorf("failed to list notification keys: %w", err)
	}

	trimmed := 0
	for _, key := range keys {
		userID := key[len(keyPrefix):]
		list, err := s.List(ctx, userID)
		if err != nil {
			return trimmed, err
		}
		if len(list) <= keep {
			continue
		}
		if err := s.save(ctx, userID, list[:keep]); err != nil {
			return trimmed, err
		}
		trimmed += len(list) - keep
	}
	return trimmed, nil
}

// save は通知リストをJSONにエンコードして永続化する。
func (s *Store) save(ctx context.Context, userID string, list []model.Notification) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to encode notifications: %w", err)
	}
	if err := s.state.Set(ctx, storageKey(userID), raw); err != nil {
		return fmt.Errorf("failed to save notifications: %w", err)
	}
	return nil
}
