package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/moriyama/internmatch/internal/model"
)

// PostgresMessageRepo はPostgreSQLを使用したメッセージリポジトリ。
type PostgresMessageRepo struct {
	db *sql.DB
}

// NewPostgresMessageRepo はPostgresMessageRepoを生成する。
func NewPostgresMessageRepo(db *sql.DB) *PostgresMessageRepo {
	return &PostgresMessageRepo{db: db}
}

// Create はメッセージを作成する。
func (r *PostgresMessageRepo) Create(ctx context.Context, m *model.Message) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (id, sender_id, receiver_id, content, is_read, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.SenderID, m.ReceiverID, m.Content, m.IsRead, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

// ListConversation は2ユーザー間のメッセージを作成日時昇順で返す。
func (r *PostgresMessageRepo) ListConversation(ctx context.Context, userID, partnerID string) ([]*model.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, sender_id, receiver_id, content, is_read, created_at
		 FROM messages
		 WHERE (sender_id = $1 AND receiver_id = $2)
		    OR (sender_id = $2 AND receiver_id = $1)
		 ORDER BY created_at ASC`,
		userID, partnerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversation: %w", err)
	}
	defer rows.Close()

	var results []*model.Message
	for rows.Next() {
		m := &model.Message{}
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}
	return results, nil
}

// ListConversationSummaries はユーザーの会話一覧（相手ごとの最新1件と未読数）を返す。
// 最新メッセージの新しい順に並べる。
func (r *PostgresMessageRepo) ListConversationSummaries(ctx context.Context, userID string) ([]ConversationSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`WITH conversation AS (
			SELECT m.*,
			       CASE WHEN m.sender_id = $1 THEN m.receiver_id ELSE m.sender_id END AS partner_id,
			       ROW_NUMBER() OVER (
			           PARTITION BY CASE WHEN m.sender_id = $1 THEN m.receiver_id ELSE m.sender_id END
			           ORDER BY m.created_at DESC
			       ) AS rn
			FROM messages m
			WHERE m.sender_id = $1 OR m.receiver_id = $1
		)
		SELECT c.partner_id, p.name,
		       c.id, c.sender_id, c.receiver_id, c.content, c.is_read, c.created_at,
		       (SELECT count(*) FROM messages u
		        WHERE u.sender_id = c.partner_id AND u.receiver_id = $1 AND NOT u.is_read) AS unread_count
		FROM conversation c
		JOIN profiles p ON p.id = c.partner_id
		WHERE c.rn = 1
		ORDER BY c.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversation summaries: %w", err)
	}
	defer rows.Close()

	var results []ConversationSummary
	for rows.Next() {
		var s ConversationSummary
		err := rows.Scan(
			&s.PartnerID, &s.PartnerName,
			&s.LastMessage.ID, &s.LastMessage.SenderID, &s.LastMessage.ReceiverID,
			&s.LastMessage.Content, &s.LastMessage.IsRead, &s.LastMessage.CreatedAt,
			&s.UnreadCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation summary: %w", err)
		}
		results = append(results, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conversation summaries: %w", err)
	}
	return results, nil
}

// MarkConversationRead は相手からの未読メッセージを既読にする。
func (r *PostgresMessageRepo) MarkConversationRead(ctx context.Context, userID, partnerID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE messages SET is_read = TRUE
		 WHERE receiver_id = $1 AND sender_id = $2 AND NOT is_read`,
		userID, partnerID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark conversation read: %w", err)
	}
	return nil
}

// compile-time interface check
var _ MessageRepository = (*PostgresMessageRepo)(nil)
