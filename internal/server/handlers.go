package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jlacunza/udcito/internal/auth"
	"github.com/jlacunza/udcito/internal/llm"
	"github.com/jlacunza/udcito/internal/memory"
	"github.com/jlacunza/udcito/internal/repository"
	"github.com/jlacunza/udcito/internal/service"
	"github.com/jlacunza/udcito/internal/vectorstore"
)

// Pipeline is the question answering pipeline used by the HTTP handlers
type Pipeline interface {
	RetrieveDocuments(ctx context.Context, question string, history []llm.Message) []vectorstore.Document
	Answer(ctx context.Context, docs []vectorstore.Document, question string, history []llm.Message) string
}

// Handlers holds the HTTP handler dependencies
type Handlers struct {
	pipeline Pipeline
	sessions *memory.Store
	users    *service.UserService
	verifier *auth.GoogleVerifier
	jwt      *auth.JWTManager
	metrics  *Metrics
	logger   *slog.Logger
	ready    func(ctx context.Context) error
}

// HandlersConfig holds the dependencies for constructing Handlers
type HandlersConfig struct {
	Pipeline  Pipeline
	Sessions  *memory.Store
	Users     *service.UserService
	Verifier  *auth.GoogleVerifier
	JWT       *auth.JWTManager
	Metrics   *Metrics
	Logger    *slog.Logger
	ReadyFunc func(ctx context.Context) error
}

// NewHandlers creates the HTTP handlers
func NewHandlers(cfg HandlersConfig) *Handlers {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sessions := cfg.Sessions
	if sessions == nil {
		sessions = memory.DefaultStore()
	}
	return &Handlers{
		pipeline: cfg.Pipeline,
		sessions: sessions,
		users:    cfg.Users,
		verifier: cfg.Verifier,
		jwt:      cfg.JWT,
		metrics:  cfg.Metrics,
		logger:   logger,
		ready:    cfg.ReadyFunc,
	}
}

// ChatMessage is one prior conversation turn sent by the client
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the request body for the chat and documents endpoints
type ChatRequest struct {
	Question  string        `json:"question"`
	History   []ChatMessage `json:"history,omitempty"`
	SessionID string        `json:"session_id,omitempty"`
}

// ChatResponse is the response body for the chat endpoint
type ChatResponse struct {
	Answer    string             `json:"answer"`
	Documents []DocumentResponse `json:"documents"`
	SessionID string             `json:"session_id,omitempty"`
}

// DocumentResponse is one retrieved document in API responses
type DocumentResponse struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Chat answers a question grounded on retrieved documents
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	req, history, ok := h.decodeChatRequest(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	docs := h.pipeline.RetrieveDocuments(ctx, req.Question, history)
	answer := h.pipeline.Answer(ctx, docs, req.Question, history)

	if req.SessionID != "" {
		h.sessions.AddUserMessage(req.SessionID, req.Question)
		h.sessions.AddAssistantMessage(req.SessionID, answer)
	}

	if h.metrics != nil {
		h.metrics.ObserveChat(len(docs))
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		Answer:    answer,
		Documents: toDocumentResponses(docs),
		SessionID: req.SessionID,
	})
}

// RetrieveDocuments returns the retrieved documents without generating an answer
func (h *Handlers) RetrieveDocuments(w http.ResponseWriter, r *http.Request) {
	req, history, ok := h.decodeChatRequest(w, r)
	if !ok {
		return
	}

	docs := h.pipeline.RetrieveDocuments(r.Context(), req.Question, history)

	writeJSON(w, http.StatusOK, map[string]any{
		"documents": toDocumentResponses(docs),
		"count":     len(docs),
	})
}

// decodeChatRequest parses and validates the shared chat request body.
// When the request carries a session ID and no explicit history, the
// stored session history is used.
func (h *Handlers) decodeChatRequest(w http.ResponseWriter, r *http.Request) (*ChatRequest, []llm.Message, bool) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, nil, false
	}

	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question must not be empty")
		return nil, nil, false
	}

	history := make([]llm.Message, 0, len(req.History))
	for _, msg := range req.History {
		switch msg.Role {
		case string(llm.RoleUser), string(llm.RoleAssistant):
			history = append(history, llm.Message{Role: llm.Role(msg.Role), Content: msg.Content})
		default:
			writeError(w, http.StatusBadRequest, "history roles must be 'user' or 'assistant'")
			return nil, nil, false
		}
	}

	if len(history) == 0 && req.SessionID != "" {
		history = h.sessions.History(req.SessionID)
	}

	return &req, history, true
}

// LoginRequest carries a Google ID token
type LoginRequest struct {
	IDToken string `json:"id_token"`
}

// LoginResponse carries the session token and user profile
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse is a user in API responses
type UserResponse struct {
	Email       string   `json:"email"`
	FullName    string   `json:"full_name,omitempty"`
	PictureURL  string   `json:"picture_url,omitempty"`
	Role        string   `json:"role"`
	IsActive    bool     `json:"is_active"`
	Permissions []string `json:"permissions,omitempty"`
}

// Login exchanges a verified Google ID token for a session JWT
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.IDToken) == "" {
		writeError(w, http.StatusBadRequest, "id_token is required")
		return
	}

	identity, err := h.verifier.Verify(r.Context(), req.IDToken)
	if err != nil {
		h.logger.Warn("google token verification failed", "error", err)
		writeError(w, http.StatusUnauthorized, "invalid Google token")
		return
	}

	user, err := h.users.Login(r.Context(), identity)
	if err != nil {
		h.logger.Warn("login rejected", "email", identity.Email, "error", err)
		writeError(w, http.StatusForbidden, "account is not active")
		return
	}

	token, err := h.jwt.GenerateToken(user)
	if err != nil {
		h.logger.Error("failed to generate session token", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Token: token,
		User:  toUserResponse(user),
	})
}

// ListUsers returns registered users (admin only)
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	users, total, err := h.users.ListUsers(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("failed to list users", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	responses := make([]UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, toUserResponse(user))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users": responses,
		"total": total,
	})
}

// GetUser returns one user by email (admin only)
func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	user, err := h.users.GetUser(r.Context(), email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("failed to get user", "email", email, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// UpdateUserRole changes a user's role (admin only)
func (h *Handlers) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	var req struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role := repository.Role(req.Role)
	if !role.Valid() {
		writeError(w, http.StatusBadRequest, "role must be 'admin', 'validator' or 'user'")
		return
	}

	actor := actorEmail(r)
	if err := h.users.UpdateRole(r.Context(), actor, email, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("failed to update role", "email", email, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update role")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// SetUserActive enables or disables an account (admin only)
func (h *Handlers) SetUserActive(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	var req struct {
		IsActive *bool `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IsActive == nil {
		writeError(w, http.StatusBadRequest, "is_active is required")
		return
	}

	actor := actorEmail(r)
	if err := h.users.SetActive(r.Context(), actor, email, *req.IsActive); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("failed to set active", "email", email, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// ListUserActivities returns a user's activity log (admin only)
func (h *Handlers) ListUserActivities(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	activities, err := h.users.ListActivities(r.Context(), email, limit, offset)
	if err != nil {
		h.logger.Error("failed to list activities", "email", email, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list activities")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"activities": activities,
		"count":      len(activities),
	})
}

func toDocumentResponses(docs []vectorstore.Document) []DocumentResponse {
	responses := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		responses = append(responses, DocumentResponse{
			Content:  doc.Content,
			Metadata: doc.Metadata,
		})
	}
	return responses
}

func toUserResponse(user *repository.User) UserResponse {
	return UserResponse{
		Email:       user.Email,
		FullName:    user.FullName,
		PictureURL:  user.PictureURL,
		Role:        string(user.Role),
		IsActive:    user.IsActive,
		Permissions: user.Role.Permissions(),
	}
}

func actorEmail(r *http.Request) string {
	if claims := auth.ClaimsFromContext(r.Context()); claims != nil {
		return claims.Email
	}
	return ""
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
