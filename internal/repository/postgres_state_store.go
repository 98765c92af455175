package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStateStore はapp_stateテーブルを使用したキー・バリューストア。
// 値はJSONBカラムに保存される。
type PostgresStateStore struct {
	db *sql.DB
}

// NewPostgresStateStore はPostgresStateStoreを生成する。
func NewPostgresStateStore(db *sql.DB) *PostgresStateStore {
	return &PostgresStateStore{db: db}
}

// Get はキーに対応する値を返す。キーが存在しない場合はnilを返す。
func (s *PostgresStateStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM app_state WHERE key = $1`, key,
	).Scan(&value)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get state for key %q: %w", key, err)
	}
	return value, nil
}

// Set はキーに値を保存する（UPSERT）。
func (s *PostgresStateStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO app_state (key, value, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set state for key %q: %w", key, err)
	}
	return nil
}

// Delete はキーを削除する。存在しないキーはエラーにしない。
func (s *PostgresStateStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM app_state WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete state for key %q: %w", key, err)
	}
	return nil
}

// Keys は指定プレフィックスを持つ全キーを返す。
func (s *PostgresStateStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key FROM app_state WHERE key LIKE $1 || '%' ORDER BY key`, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list state keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan state key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate state keys: %w", err)
	}
	return keys, nil
}

// compile-time interface check
var _ StateStore = (*PostgresStateStore)(nil)
