package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/moriyama/internmatch/internal/metrics"
	"github.com/moriyama/internmatch/internal/middleware"
	"github.com/moriyama/internmatch/internal/model"
	"github.com/moriyama/internmatch/internal/repository"
)

// ApplicationServiceInterface は応募ハンドラーが必要とするサービスインターフェース。
type ApplicationServiceInterface interface {
	Apply(ctx context.Context, studentID, internshipID, coverLetter string) (*model.Application, error)
	UpdateStatus(ctx context.Context, companyID, applicationID string, status model.ApplicationStatus) (*model.Application, error)
	ListMine(ctx context.Context, studentID string) ([]repository.ApplicationWithListing, error)
	ListForListing(ctx context.Context, companyID, internshipID string) ([]*model.Application, error)
}

// ApplicationHandler は応募管理のHTTPハンドラー。
type ApplicationHandler struct {
	service   ApplicationServiceInterface
	collector metrics.MetricsCollector
}

// NewApplicationHandler はApplicationHandlerを生成する。collectorはnilでもよい。
func NewApplicationHandler(service ApplicationServiceInterface, collector metrics.MetricsCollector) *ApplicationHandler {
	return &ApplicationHandler{
		service:   service,
		collector: collector,
	}
}

// applyRequest は応募リクエストのボディ。
type applyRequest struct {
	InternshipID string `json:"internshipId"`
	CoverLetter  string `json:"coverLetter"`
}

// statusRequest は選考ステータス更新リクエストのボディ。
type statusRequest struct {
	Status string `json:"status"`
}

// applicationResponse は応募のAPIレスポンス。
type applicationResponse struct {
	ID              string    `json:"id"`
	InternshipID    string    `json:"internshipId"`
	StudentID       string    `json:"studentId"`
	Status          string    `json:"status"`
	CoverLetter     string    `json:"coverLetter,omitempty"`
	InternshipTitle string    `json:"internshipTitle,omitempty"`
	CompanyName     string    `json:"companyName,omitempty"`
	AppliedAt       time.Time `json:"appliedAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// toApplicationResponse は応募をAPIレスポンスに変換する。
func toApplicationResponse(a *model.Application) applicationResponse {
	return applicationResponse{
		ID:           a.ID,
		InternshipID: a.InternshipID,
		StudentID:    a.StudentID,
		Status:       string(a.Status),
		CoverLetter:  a.CoverLetter,
		AppliedAt:    a.AppliedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// Apply はインターンシップに応募する。
// POST /api/applications
func (h *ApplicationHandler) Apply(w http.ResponseWriter, r *http.Request) {
	studentID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req applyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}
	if req.InternshipID == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("応募先のインターンシップIDを指定してください。"))
		return
	}

	app, err := h.service.Apply(r.Context(), studentID, req.InternshipID, req.CoverLetter)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.collector != nil {
		h.collector.RecordApplicationSubmitted()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toApplicationResponse(app))
}

// UpdateStatus は応募の選考ステータスを更新する。
// PUT /api/applications/{id}/status
func (h *ApplicationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	app, err := h.service.UpdateStatus(r.Context(), companyID, chi.URLParam(r, "id"), model.ApplicationStatus(req.Status))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toApplicationResponse(app))
}

// ListMine は学生自身の応募一覧を返す。
// GET /api/applications
func (h *ApplicationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	studentID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	rows, err := h.service.ListMine(r.Context(), studentID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]applicationResponse, len(rows))
	for i, row := range rows {
		resp := toApplicationResponse(&row.Application)
		resp.InternshipTitle = row.InternshipTitle
		resp.CompanyName = row.CompanyName
		responses[i] = resp
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(responses)
}

// ListForListing は自社掲載への応募一覧を返す。
// GET /api/internships/{id}/applications
func (h *ApplicationHandler) ListForListing(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	apps, err := h.service.ListForListing(r.Context(), companyID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]applicationResponse, len(apps))
	for i, a := range apps {
		responses[i] = toApplicationResponse(a)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(responses)
}
