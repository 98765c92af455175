// Package model はドメインモデルを定義する。
package model

import "time"

// ListingStatus はインターンシップ掲載のステータスを表す。
type ListingStatus string

const (
	// ListingStatusDraft は下書き状態（学生には非公開）。
	ListingStatusDraft ListingStatus = "draft"
	// ListingStatusPublished は公開中（検索・応募の対象）。
	ListingStatusPublished ListingStatus = "published"
	// ListingStatusClosed は募集終了。
	ListingStatusClosed ListingStatus = "closed"
)

// SalaryPeriod は給与の支払い単位を表す。
type SalaryPeriod string

const (
	// SalaryPeriodHourly は時給。
	SalaryPeriodHourly SalaryPeriod = "hourly"
	// SalaryPeriodMonthly は月給。
	SalaryPeriodMonthly SalaryPeriod = "monthly"
)

// Internship はインターンシップ掲載を表す。
type Internship struct {
	ID                  string
	CompanyID           string
	Title               string
	Description         string
	Requirements        []string
	Responsibilities    []string
	Location            string
	IsRemote            bool
	SalaryAmount        int
	SalaryPeriod        SalaryPeriod
	StartDate           time.Time
	EndDate             time.Time
	HoursPerWeek        int
	ApplicationDeadline time.Time
	Industry            string
	Skills              []string
	Status              ListingStatus
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
