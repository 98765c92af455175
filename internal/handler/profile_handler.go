package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/moriyama/internmatch/internal/middleware"
	"github.com/moriyama/internmatch/internal/model"
	"github.com/moriyama/internmatch/internal/profile"
)

// ProfileServiceInterface はプロフィールハンドラーが必要とするサービスインターフェース。
type ProfileServiceInterface interface {
	Fetch(ctx context.Context, userID string) (*model.Profile, error)
	Upsert(ctx context.Context, userID string, partial map[string]any) (*model.Profile, error)
}

// ProfileHandler はプロフィールのHTTPハンドラー。
// リクエストのcamelCaseキーとストレージのsnake_caseキーの翻訳境界でもある。
type ProfileHandler struct {
	service ProfileServiceInterface
}

// NewProfileHandler はProfileHandlerを生成する。
func NewProfileHandler(service ProfileServiceInterface) *ProfileHandler {
	return &ProfileHandler{
		service: service,
	}
}

// GetMine は自分のプロフィールを取得する。
// GET /api/profiles/me
func (h *ProfileHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	h.writeProfile(w, r, userID, true)
}

// Get は指定ユーザーのプロフィールを取得する。
// GET /api/profiles/{id}
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.writeProfile(w, r, chi.URLParam(r, "id"), false)
}

// writeProfile はプロフィールをレスポンスに書き込む。
// 本人以外にはメールアドレスを出力しない。
func (h *ProfileHandler) writeProfile(w http.ResponseWriter, r *http.Request, userID string, includeEmail bool) {
	p, err := h.service.Fetch(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if p == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewUserNotFoundError())
		return
	}

	response := profile.ToResponseMap(p)
	if !includeEmail {
		delete(response, "email")
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// Update は自分のプロフィールを部分更新する。
// PUT /api/profiles/me
//
// ボディは更新したいフィールドだけを含むJSONオブジェクト。キーは
// camelCase・snake_caseのどちらでもよく、userTypeを含めても無視される
// （役割は登録時に確定し変更できない）。レスポンスは保存後のレコード全体。
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var partial map[string]any
	if err := json.NewDecoder(r.Body).Decode(&partial); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	saved, err := h.service.Upsert(r.Context(), userID, partial)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile.ToResponseMap(saved))
}
