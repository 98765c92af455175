package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/moriyama/internmatch/internal/model"
)

// profileColumns はprofilesテーブルのSELECT対象カラム。
const profileColumns = `id, email, name, user_type, location, bio, avatar_url, website_url,
	university, major, graduation_year, skills, resume_url,
	preferred_industries, preferred_locations,
	company_name, industry, company_size, created_at, updated_at`

// PostgresProfileRepo はPostgreSQLを使用したプロフィールリポジトリ。
type PostgresProfileRepo struct {
	db *sql.DB
}

// NewPostgresProfileRepo はPostgresProfileRepoを生成する。
func NewPostgresProfileRepo(db *sql.DB) *PostgresProfileRepo {
	return &PostgresProfileRepo{db: db}
}

// FindByID は指定IDのプロフィールを取得する。見つからない場合はnilを返す。
func (r *PostgresProfileRepo) FindByID(ctx context.Context, id string) (*model.Profile, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`,
		id,
	)
	profile, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find profile by ID: %w", err)
	}
	return profile, nil
}

// Save はプロフィールをUPSERTし、保存後のレコードを返す。
// roleの保存不変条件（省略時は既存値を維持）はサービス層が担保する。
func (r *PostgresProfileRepo) Save(ctx context.Context, p *model.Profile) (*model.Profile, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO profiles (
			id, email, name, user_type, location, bio, avatar_url, website_url,
			university, major, graduation_year, skills, resume_url,
			preferred_industries, preferred_locations,
			company_name, industry, company_size, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			user_type = EXCLUDED.user_type,
			location = EXCLUDED.location,
			bio = EXCLUDED.bio,
			avatar_url = EXCLUDED.avatar_url,
			website_url = EXCLUDED.website_url,
			university = EXCLUDED.university,
			major = EXCLUDED.major,
			graduation_year = EXCLUDED.graduation_year,
			skills = EXCLUDED.skills,
			resume_url = EXCLUDED.resume_url,
			preferred_industries = EXCLUDED.preferred_industries,
			preferred_locations = EXCLUDED.preferred_locations,
			company_name = EXCLUDED.company_name,
			industry = EXCLUDED.industry,
			company_size = EXCLUDED.company_size,
			updated_at = EXCLUDED.updated_at
		RETURNING `+profileColumns,
		p.ID, p.Email, p.Name, string(p.Role), p.Location, p.Bio, p.AvatarURL, p.WebsiteURL,
		p.University, p.Major, p.GraduationYear, pq.Array(p.Skills), p.ResumeURL,
		pq.Array(p.PreferredIndustries), pq.Array(p.PreferredLocations),
		p.CompanyName, p.Industry, p.CompanySize, p.CreatedAt, p.UpdatedAt,
	)

	saved, err := scanProfile(row)
	if err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return saved, nil
}

// rowScanner はsql.Rowとsql.Rowsの両方を受け付けるための抽象。
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanProfile は1行分のプロフィールをスキャンする。
func scanProfile(row rowScanner) (*model.Profile, error) {
	p := &model.Profile{}
	var role string
	err := row.Scan(
		&p.ID, &p.Email, &p.Name, &role, &p.Location, &p.Bio, &p.AvatarURL, &p.WebsiteURL,
		&p.University, &p.Major, &p.GraduationYear, pq.Array(&p.Skills), &p.ResumeURL,
		pq.Array(&p.PreferredIndustries), pq.Array(&p.PreferredLocations),
		&p.CompanyName, &p.Industry, &p.CompanySize, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Role = model.Role(role)
	return p, nil
}

// compile-time interface check
var _ ProfileRepository = (*PostgresProfileRepo)(nil)
