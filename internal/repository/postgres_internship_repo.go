package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/moriyama/internmatch/internal/model"
)

// internshipColumns はinternshipsテーブルのSELECT対象カラム。
const internshipColumns = `id, company_id, title, description, requirements, responsibilities,
	location, is_remote, salary_amount, salary_period, start_date, end_date,
	hours_per_week, application_deadline, industry, skills, status, created_at, updated_at`

// defaultSearchLimit は検索結果の最大取得件数（デフォルト）。
const defaultSearchLimit = 50

// PostgresInternshipRepo はPostgreSQLを使用したインターンシップ掲載リポジトリ。
type PostgresInternshipRepo struct {
	db *sql.DB
}

// NewPostgresInternshipRepo はPostgresInternshipRepoを生成する。
func NewPostgresInternshipRepo(db *sql.DB) *PostgresInternshipRepo {
	return &PostgresInternshipRepo{db: db}
}

// FindByID は指定IDの掲載を取得する。見つからない場合はnilを返す。
func (r *PostgresInternshipRepo) FindByID(ctx context.Context, id string) (*model.Internship, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+internshipColumns+` FROM internships WHERE id = $1`, id)
	in, err := scanInternship(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find internship by ID: %w", err)
	}
	return in, nil
}

// Create は掲載を作成する。
func (r *PostgresInternshipRepo) Create(ctx context.Context, in *model.Internship) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO internships (
			id, company_id, title, description, requirements, responsibilities,
			location, is_remote, salary_amount, salary_period, start_date, end_date,
			hours_per_week, application_deadline, industry, skills, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		in.ID, in.CompanyID, in.Title, in.Description,
		pq.Array(in.Requirements), pq.Array(in.Responsibilities),
		in.Location, in.IsRemote, in.SalaryAmount, string(in.SalaryPeriod),
		in.StartDate, in.EndDate, in.HoursPerWeek, in.ApplicationDeadline,
		in.Industry, pq.Array(in.Skills), string(in.Status), in.CreatedAt, in.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert internship: %w", err)
	}
	return nil
}

// Update は掲載を上書き更新する。
func (r *PostgresInternshipRepo) Update(ctx context.Context, in *model.Internship) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE internships SET
			title = $2, description = $3, requirements = $4, responsibilities = $5,
			location = $6, is_remote = $7, salary_amount = $8, salary_period = $9,
			start_date = $10, end_date = $11, hours_per_week = $12,
			application_deadline = $13, industry = $14, skills = $15,
			status = $16, updated_at = $17
		 WHERE id = $1`,
		in.ID, in.Title, in.Description,
		pq.Array(in.Requirements), pq.Array(in.Responsibilities),
		in.Location, in.IsRemote, in.SalaryAmount, string(in.SalaryPeriod),
		in.StartDate, in.EndDate, in.HoursPerWeek, in.ApplicationDeadline,
		in.Industry, pq.Array(in.Skills), string(in.Status), in.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update internship: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("internship not found: %s", in.ID)
	}
	return nil
}

// ListByCompanyID は企業の掲載一覧を作成日時降順で返す。
func (r *PostgresInternshipRepo) ListByCompanyID(ctx context.Context, companyID string) ([]*model.Internship, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+internshipColumns+` FROM internships
		 WHERE company_id = $1 ORDER BY created_at DESC`,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list internships by company: %w", err)
	}
	defer rows.Close()

	return collectInternships(rows)
}

// SearchPublished は公開中の掲載を検索する。
// キーワードはタイトル・説明・業種への部分一致（ILIKE）、勤務地は部分一致で絞り込む。
func (r *PostgresInternshipRepo) SearchPublished(ctx context.Context, query InternshipSearchQuery) ([]*model.Internship, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+internshipColumns+` FROM internships
		 WHERE status = 'published'
		   AND ($1 = '' OR title ILIKE '%' || $1 || '%'
		        OR description ILIKE '%' || $1 || '%'
		        OR industry ILIKE '%' || $1 || '%')
		   AND ($2 = '' OR location ILIKE '%' || $2 || '%')
		 ORDER BY created_at DESC
		 LIMIT $3 OFFSET $4`,
		query.Keyword, query.Location, limit, query.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search internships: %w", err)
	}
	defer rows.Close()

	return collectInternships(rows)
}

// collectInternships は複数行の掲載をスキャンする。
func collectInternships(rows *sql.Rows) ([]*model.Internship, error) {
	var results []*model.Internship
	for rows.Next() {
		in, err := scanInternship(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan internship: %w", err)
		}
		results = append(results, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate internships: %w", err)
	}
	return results, nil
}

// scanInternship は1行分の掲載をスキャンする。
func scanInternship(row rowScanner) (*model.Internship, error) {
	in := &model.Internship{}
	var salaryPeriod, status string
	err := row.Scan(
		&in.ID, &in.CompanyID, &in.Title, &in.Description,
		pq.Array(&in.Requirements), pq.Array(&in.Responsibilities),
		&in.Location, &in.IsRemote, &in.SalaryAmount, &salaryPeriod,
		&in.StartDate, &in.EndDate, &in.HoursPerWeek, &in.ApplicationDeadline,
		&in.Industry, pq.Array(&in.Skills), &status, &in.CreatedAt, &in.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	in.SalaryPeriod = model.SalaryPeriod(salaryPeriod)
	in.Status = model.ListingStatus(status)
	return in, nil
}

// compile-time interface check
var _ InternshipRepository = (*PostgresInternshipRepo)(nil)
