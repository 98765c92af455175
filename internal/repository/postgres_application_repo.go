package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/moriyama/internmatch/internal/model"
)

// PostgresApplicationRepo はPostgreSQLを使用した応募リポジトリ。
type PostgresApplicationRepo struct {
	db *sql.DB
}

// NewPostgresApplicationRepo はPostgresApplicationRepoを生成する。
func NewPostgresApplicationRepo(db *sql.DB) *PostgresApplicationRepo {
	return &PostgresApplicationRepo{db: db}
}

// FindByID は指定IDの応募を取得する。見つからない場合はnilを返す。
func (r *PostgresApplicationRepo) FindByID(ctx context.Context, id string) (*model.Application, error) {
	app := &model.Application{}
	var status string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, internship_id, student_id, status, cover_letter, applied_at, updated_at
		 FROM applications WHERE id = $1`,
		id,
	).Scan(&app.ID, &app.InternshipID, &app.StudentID, &status, &app.CoverLetter, &app.AppliedAt, &app.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find application by ID: %w", err)
	}
	app.Status = model.ApplicationStatus(status)
	return app, nil
}

// FindByListingAndStudent は掲載IDと学生IDで応募を検索する。見つからない場合はnilを返す。
func (r *PostgresApplicationRepo) FindByListingAndStudent(ctx context.Context, internshipID, studentID string) (*model.Application, error) {
	app := &model.Application{}
	var status string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, internship_id, student_id, status, cover_letter, applied_at, updated_at
		 FROM applications WHERE internship_id = $1 AND student_id = $2`,
		internshipID, studentID,
	).Scan(&app.ID, &app.InternshipID, &app.StudentID, &status, &app.CoverLetter, &app.AppliedAt, &app.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find application: %w", err)
	}
	app.Status = model.ApplicationStatus(status)
	return app, nil
}

// Create は応募を作成する。
func (r *PostgresApplicationRepo) Create(ctx context.Context, app *model.Application) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO applications (id, internship_id, student_id, status, cover_letter, applied_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		app.ID, app.InternshipID, app.StudentID, string(app.Status), app.CoverLetter, app.AppliedAt, app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert application: %w", err)
	}
	return nil
}

// UpdateStatus は応募の選考ステータスを更新する。
func (r *PostgresApplicationRepo) UpdateStatus(ctx context.Context, id string, status model.ApplicationStatus, updatedAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE applications SET status = $2, updated_at = $3 WHERE id = $1`,
		id, string(status), updatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update application status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("application not found: %s", id)
	}
	return nil
}

// ListByStudentID は学生の応募一覧を掲載情報付きで応募日時降順に返す。
func (r *PostgresApplicationRepo) ListByStudentID(ctx context.Context, studentID string) ([]ApplicationWithListing, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT a.id, a.internship_id, a.student_id, a.status, a.cover_letter, a.applied_at, a.updated_at,
		        i.title, p.company_name
		 FROM applications a
		 JOIN internships i ON i.id = a.internship_id
		 JOIN profiles p ON p.id = i.company_id
		 WHERE a.student_id = $1
		 ORDER BY a.applied_at DESC`,
		studentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications by student: %w", err)
	}
	defer rows.Close()

	var results []ApplicationWithListing
	for rows.Next() {
		var item ApplicationWithListing
		var status string
		err := rows.Scan(
			&item.ID, &item.InternshipID, &item.StudentID, &status,
			&item.CoverLetter, &item.AppliedAt, &item.UpdatedAt,
			&item.InternshipTitle, &item.CompanyName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		item.Status = model.ApplicationStatus(status)
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate applications: %w", err)
	}
	return results, nil
}

// ListByInternshipID は掲載への応募一覧を応募日時降順に返す。
func (r *PostgresApplicationRepo) ListByInternshipID(ctx context.Context, internshipID string) ([]*model.Application, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, internship_id, student_id, status, cover_letter, applied_at, updated_at
		 FROM applications WHERE internship_id = $1
		 ORDER BY applied_at DESC`,
		internshipID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications by internship: %w", err)
	}
	defer rows.Close()

	var results []*model.Application
	for rows.Next() {
		app := &model.Application{}
		var status string
		err := rows.Scan(&app.ID, &app.InternshipID, &app.StudentID, &status,
			&app.CoverLetter, &app.AppliedAt, &app.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		app.Status = model.ApplicationStatus(status)
		results = append(results, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate applications: %w", err)
	}
	return results, nil
}

// compile-time interface check
var _ ApplicationRepository = (*PostgresApplicationRepo)(nil)
