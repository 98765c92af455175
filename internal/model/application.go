// Package model はドメインモデルを定義する。
package model

import "time"

// ApplicationStatus は応募の選考ステータスを表す。
type ApplicationStatus string

const (
	// ApplicationStatusPending は応募直後の未対応状態。
	ApplicationStatusPending ApplicationStatus = "pending"
	// ApplicationStatusReviewing は書類選考中。
	ApplicationStatusReviewing ApplicationStatus = "reviewing"
	// ApplicationStatusInterview は面接段階。
	ApplicationStatusInterview ApplicationStatus = "interview"
	// ApplicationStatusAccepted は採用決定。
	ApplicationStatusAccepted ApplicationStatus = "accepted"
	// ApplicationStatusRejected は不採用。
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// IsValid は既知の選考ステータスかどうかを判定する。
func (s ApplicationStatus) IsValid() bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusReviewing,
		ApplicationStatusInterview, ApplicationStatusAccepted, ApplicationStatusRejected:
		return true
	}
	return false
}

// Application は学生からインターンシップへの応募を表す。
// 同一の学生が同一の掲載に応募できるのは1回まで。
type Application struct {
	ID           string
	InternshipID string
	StudentID    string
	Status       ApplicationStatus
	CoverLetter  string
	AppliedAt    time.Time
	UpdatedAt    time.Time
}
