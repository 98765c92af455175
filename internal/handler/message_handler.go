package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/moriyama/internmatch/internal/middleware"
	"github.com/moriyama/internmatch/internal/model"
	"github.com/moriyama/internmatch/internal/repository"
)

// MessageServiceInterface はメッセージハンドラーが必要とするサービスインターフェース。
type MessageServiceInterface interface {
	Send(ctx context.Context, senderID, receiverID, content string) (*model.Message, error)
	Conversation(ctx context.Context, userID, partnerID string) ([]*model.Message, error)
	Conversations(ctx context.Context, userID string) ([]repository.ConversationSummary, error)
}

// MessageHandler はダイレクトメッセージのHTTPハンドラー。
type MessageHandler struct {
	service MessageServiceInterface
}

// NewMessageHandler はMessageHandlerを生成する。
func NewMessageHandler(service MessageServiceInterface) *MessageHandler {
	return &MessageHandler{
		service: service,
	}
}

// sendMessageRequest はメッセージ送信リクエストのボディ。
type sendMessageRequest struct {
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}

// messageResponse はメッセージのAPIレスポンス。
type messageResponse struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Content    string    `json:"content"`
	IsRead     bool      `json:"isRead"`
	CreatedAt  time.Time `json:"createdAt"`
}

// conversationSummaryResponse は会話一覧のAPIレスポンス。
type conversationSummaryResponse struct {
	PartnerID   string          `json:"partnerId"`
	PartnerName string          `json:"partnerName"`
	LastMessage messageResponse `json:"lastMessage"`
	UnreadCount int             `json:"unreadCount"`
}

// toMessageResponse はメッセージをAPIレスポンスに変換する。
func toMessageResponse(m *model.Message) messageResponse {
	return messageResponse{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		IsRead:     m.IsRead,
		CreatedAt:  m.CreatedAt,
	}
}

// Send はメッセージを送信する。
// POST /api/messages
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	senderID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	msg, err := h.service.Send(r.Context(), senderID, req.ReceiverID, req.Content)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toMessageResponse(msg))
}

// Conversation は相手との会話を返す。取得と同時に未読が既読になる。
// GET /api/messages/{partnerId}
func (h *MessageHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	messages, err := h.service.Conversation(r.Context(), userID, chi.URLParam(r, "partnerId"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]messageResponse, len(messages))
	for i, m := range messages {
		responses[i] = toMessageResponse(m)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(responses)
}

// Conversations は会話一覧を返す。
// GET /api/messages
func (h *MessageHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	summaries, err := h.service.Conversations(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]conversationSummaryResponse, len(summaries))
	for i, s := range summaries {
		responses[i] = conversationSummaryResponse{
			PartnerID:   s.PartnerID,
			PartnerName: s.PartnerName,
			LastMessage: toMessageResponse(&s.LastMessage),
			UnreadCount: s.UnreadCount,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(responses)
}
