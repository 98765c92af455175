package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/moriyama/internmatch/internal/internship"
	"github.com/moriyama/internmatch/internal/middleware"
	"github.com/moriyama/internmatch/internal/model"
	"github.com/moriyama/internmatch/internal/repository"
)

// InternshipServiceInterface は掲載ハンドラーが必要とするサービスインターフェース。
type InternshipServiceInterface interface {
	Create(ctx context.Context, companyID string, input internship.ListingInput) (*model.Internship, error)
	Update(ctx context.Context, companyID, listingID string, input internship.ListingInput) (*model.Internship, error)
	Publish(ctx context.Context, companyID, listingID string) (*model.Internship, error)
	Close(ctx context.Context, companyID, listingID string) (*model.Internship, error)
	Get(ctx context.Context, viewerID, listingID string) (*model.Internship, error)
	Search(ctx context.Context, query repository.InternshipSearchQuery) ([]*model.Internship, error)
	ListMine(ctx context.Context, companyID string) ([]*model.Internship, error)
}

// InternshipHandler はインターンシップ掲載のHTTPハンドラー。
type InternshipHandler struct {
	service InternshipServiceInterface
}

// NewInternshipHandler はInternshipHandlerを生成する。
func NewInternshipHandler(service InternshipServiceInterface) *InternshipHandler {
	return &InternshipHandler{
		service: service,
	}
}

// listingRequest は掲載作成・更新リクエストのボディ。
type listingRequest struct {
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	Requirements        []string  `json:"requirements"`
	Responsibilities    []string  `json:"responsibilities"`
	Location            string    `json:"location"`
	IsRemote            bool      `json:"isRemote"`
	SalaryAmount        int       `json:"salaryAmount"`
	SalaryPeriod        string    `json:"salaryPeriod"`
	StartDate           time.Time `json:"startDate"`
	EndDate             time.Time `json:"endDate"`
	HoursPerWeek        int       `json:"hoursPerWeek"`
	ApplicationDeadline time.Time `json:"applicationDeadline"`
	Industry            string    `json:"industry"`
	Skills              []string  `json:"skills"`
}

// toInput はリクエストボディをサービス層の入力に変換する。
func (req listingRequest) toInput() internship.ListingInput {
	return internship.ListingInput{
		Title:               req.Title,
		Description:         req.Description,
		Requirements:        req.Requirements,
		Responsibilities:    req.Responsibilities,
		Location:            req.Location,
		IsRemote:            req.IsRemote,
		SalaryAmount:        req.SalaryAmount,
		SalaryPeriod:        model.SalaryPeriod(req.SalaryPeriod),
		StartDate:           req.StartDate,
		EndDate:             req.EndDate,
		HoursPerWeek:        req.HoursPerWeek,
		ApplicationDeadline: req.ApplicationDeadline,
		Industry:            req.Industry,
		Skills:              req.Skills,
	}
}

// listingResponse は掲載のAPIレスポンス。
type listingResponse struct {
	ID                  string    `json:"id"`
	CompanyID           string    `json:"companyId"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	Requirements        []string  `json:"requirements,omitempty"`
	Responsibilities    []string  `json:"responsibilities,omitempty"`
	Location            string    `json:"location"`
	IsRemote            bool      `json:"isRemote"`
	SalaryAmount        int       `json:"salaryAmount"`
	SalaryPeriod        string    `json:"salaryPeriod"`
	StartDate           time.Time `json:"startDate"`
	EndDate             time.Time `json:"endDate"`
	HoursPerWeek        int       `json:"hoursPerWeek"`
	ApplicationDeadline time.Time `json:"applicationDeadline"`
	Industry            string    `json:"industry"`
	Skills              []string  `json:"skills,omitempty"`
	Status              string    `json:"status"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// toListingResponse は掲載をAPIレスポンスに変換する。
func toListingResponse(l *model.Internship) listingResponse {
	return listingResponse{
		ID:                  l.ID,
		CompanyID:           l.CompanyID,
		Title:               l.Title,
		Description:         l.Description,
		Requirements:        l.Requirements,
		Responsibilities:    l.Responsibilities,
		Location:            l.Location,
		IsRemote:            l.IsRemote,
		SalaryAmount:        l.SalaryAmount,
		SalaryPeriod:        string(l.SalaryPeriod),
		StartDate:           l.StartDate,
		EndDate:             l.EndDate,
		HoursPerWeek:        l.HoursPerWeek,
		ApplicationDeadline: l.ApplicationDeadline,
		Industry:            l.Industry,
		Skills:              l.Skills,
		Status:              string(l.Status),
		CreatedAt:           l.CreatedAt,
		UpdatedAt:           l.UpdatedAt,
	}
}

// toListingResponses は掲載スライスをAPIレスポンスに変換する。
func toListingResponses(listings []*model.Internship) []listingResponse {
	responses := make([]listingResponse, len(listings))
	for i, l := range listings {
		responses[i] = toListingResponse(l)
	}
	return responses
}

// Create は掲載を作成する。
// POST /api/internships
func (h *InternshipHandler) Create(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req listingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	listing, err := h.service.Create(r.Context(), companyID, req.toInput())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toListingResponse(listing))
}

// Update は掲載を更新する。
// PUT /api/internships/{id}
func (h *InternshipHandler) Update(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req listingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	listing, err := h.service.Update(r.Context(), companyID, chi.URLParam(r, "id"), req.toInput())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toListingResponse(listing))
}

// Publish は掲載を公開する。
// POST /api/internships/{id}/publish
func (h *InternshipHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Publish)
}

// Close は掲載の募集を終了する。
// POST /api/internships/{id}/close
func (h *InternshipHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Close)
}

func (h *InternshipHandler) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, companyID, listingID string) (*model.Internship, error)) {
	companyID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	listing, err := op(r.Context(), companyID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toListingResponse(listing))
}

// Get は掲載詳細を取得する。
// GET /api/internships/{id}
func (h *InternshipHandler) Get(w http.ResponseWriter, r *http.Request) {
	viewerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	listing, err := h.service.Get(r.Context(), viewerID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toListingResponse(listing))
}

// Search は公開中の掲載を検索する。
// GET /api/internships/search?q=...&location=...&limit=...&offset=...
func (h *InternshipHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := repository.InternshipSearchQuery{
		Keyword:  r.URL.Query().Get("q"),
		Location: r.URL.Query().Get("location"),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			query.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			query.Offset = n
		}
	}

	listings, err := h.service.Search(r.Context(), query)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toListingResponses(listings))
}

// ListMine は自社の掲載一覧を返す。
// GET /api/internships/mine
func (h *InternshipHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	listings, err := h.service.ListMine(r.Context(), companyID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toListingResponses(listings))
}
