// Package message はユーザー間ダイレクトメッセージのドメインロジックを提供する。
package message

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/moriyama/internmatch/internal/model"
	"github.com/moriyama/internmatch/internal/repository"
)

// Notifier はアプリ内通知の発行インターフェース。
type Notifier interface {
	Add(ctx context.Context, userID, title, message string, kind model.NotificationKind) error
}

// Sanitizer はメッセージ本文のプレーンテキスト化インターフェース。
type Sanitizer interface {
	SanitizeText(raw string) string
}

// Service はダイレクトメッセージのサービス層。
type Service struct {
	messageRepo repository.MessageRepository
	profileRepo repository.ProfileRepository
	notifier    Notifier
	sanitizer   Sanitizer
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	messageRepo repository.MessageRepository,
	profileRepo repository.ProfileRepository,
	notifier Notifier,
	sanitizer Sanitizer,
) *Service {
	return &Service{
		messageRepo: messageRepo,
		profileRepo: profileRepo,
		notifier:    notifier,
		sanitizer:   sanitizer,
	}
}

// Send はメッセージを送信する。本文はサニタイズされ、宛先ユーザーに通知が届く。
func (s *Service) Send(ctx context.Context, senderID, receiverID, content string) (*model.Message, error) {
	if receiverID == "" {
		return nil, model.NewValidationError("宛先を指定してください。")
	}
	if receiverID == senderID {
		return nil, model.NewValidationError("自分宛てにメッセージは送れません。")
	}

	content = s.sanitizer.SanitizeText(content)
	if content == "" {
		return nil, model.NewValidationError("メッセージ本文を入力してください。")
	}

	receiver, err := s.profileRepo.FindByID(ctx, receiverID)
	if err != nil {
		return nil, fmt.Errorf("宛先ユーザーの取得に失敗しました: %w", err)
	}
	if receiver == nil {
		return nil, model.NewUserNotFoundError()
	}

	sender, err := s.profileRepo.FindByID(ctx, senderID)
	if err != nil {
		return nil, fmt.Errorf("送信者の取得に失敗しました: %w", err)
	}
	if sender == nil {
		return nil, model.NewUserNotFoundError()
	}

	msg := &model.Message{
		ID:         uuid.New().String(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		IsRead:     false,
		CreatedAt:  time.Now(),
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("メッセージの送信に失敗しました: %w", err)
	}

	if s.notifier != nil {
		if err := s.notifier.Add(ctx, receiverID, "新着メッセージ",
			fmt.Sprintf("%sさんからメッセージが届きました。", sender.Name),
			model.NotificationKindInfo); err != nil {
			slog.Warn("通知の発行に失敗",
				slog.String("user_id", receiverID),
				slog.String("error", err.Error()),
			)
		}
	}

	return msg, nil
}

// Conversation は相手との会話を古い順で返し、相手からの未読を既読にする。
func (s *Service) Conversation(ctx context.Context, userID, partnerID string) ([]*model.Message, error) {
	messages, err := s.messageRepo.ListConversation(ctx, userID, partnerID)
	if err != nil {
		return nil, fmt.Errorf("会話の取得に失敗しました: %w", err)
	}

	if err := s.messageRepo.MarkConversationRead(ctx, userID, partnerID); err != nil {
		// 既読化の失敗は取得結果の返却を妨げない
		slog.Warn("既読化に失敗",
			slog.String("user_id", userID),
			slog.String("partner_id", partnerID),
			slog.String("error", err.Error()),
		)
	}

	return messages, nil
}

// Conversations はユーザーの会話一覧（相手ごとの最新1件と未読数）を返す。
func (s *Service) Conversations(ctx context.Context, userID string) ([]repository.ConversationSummary, error) {
	summaries, err := s.messageRepo.ListConversationSummaries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("会話一覧の取得に失敗しました: %w", err)
	}
	return summaries, nil
}
