package repository

import (
	"testing"
)

// 各PostgresリポジトリがインターフェースをImplementsすることを検証
func TestPostgresAccountRepo_ImplementsInterface(t *testing.T) {
	var _ AccountRepository = (*PostgresAccountRepo)(nil)
}

func TestPostgresSessionRepo_ImplementsInterface(t *testing.T) {
	var _ SessionRepository = (*PostgresSessionRepo)(nil)
}

func TestPostgresProfileRepo_ImplementsInterface(t *testing.T) {
	var _ ProfileRepository = (*PostgresProfileRepo)(nil)
}

func TestPostgresInternshipRepo_ImplementsInterface(t *testing.T) {
	var _ InternshipRepository = (*PostgresInternshipRepo)(nil)
}

func TestPostgresApplicationRepo_ImplementsInterface(t *testing.T) {
	var _ ApplicationRepository = (*PostgresApplicationRepo)(nil)
}

func TestPostgresMessageRepo_ImplementsInterface(t *testing.T) {
	var _ MessageRepository = (*PostgresMessageRepo)(nil)
}

func TestPostgresStateStore_ImplementsInterface(t *testing.T) {
	var _ StateStore = (*PostgresStateStore)(nil)
}

// 各コンストラクタが非nilのリポジトリを返すことを検証
func TestConstructors_ReturnNonNil(t *testing.T) {
	if NewPostgresAccountRepo(nil) == nil {
		t.Error("NewPostgresAccountRepo returned nil")
	}
	if NewPostgresSessionRepo(nil) == nil {
		t.Error("NewPostgresSessionRepo returned nil")
	}
	if NewPostgresProfileRepo(nil) == nil {
		t.Error("NewPostgresProfileRepo returned nil")
	}
	if NewPostgresInternshipRepo(nil) == nil {
		t.Error("NewPostgresInternshipRepo returned nil")
	}
	if NewPostgresApplicationRepo(nil) == nil {
		t.Error("NewPostgresApplicationRepo returned nil")
	}
	if NewPostgresMessageRepo(nil) == nil {
		t.Error("NewPostgresMessageRepo returned nil")
	}
	if NewPostgresStateStore(nil) == nil {
		t.Error("NewPostgresStateStore returned nil")
	}
}
