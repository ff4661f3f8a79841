package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/Laurent-studi/rtfmlara-sub002/internal/app"
	"github.com/Laurent-studi/rtfmlara-sub002/internal/domain"
)

// Handler is the synchronization gateway: clients poll the snapshot endpoint
// and issue command requests that map directly onto the session use cases.
type Handler struct {
	service *app.SessionService
}

func NewHandler(service *app.SessionService) *Handler {
	return &Handler{service: service}
}

// Register wires the gateway routes onto a mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /sessions", h.createSession)
	mux.HandleFunc("POST /sessions/{code}/join", h.join)
	mux.HandleFunc("POST /sessions/{code}/start", h.start)
	mux.HandleFunc("POST /sessions/{code}/advance", h.advance)
	mux.HandleFunc("POST /sessions/{code}/end", h.end)
	mux.HandleFunc("POST /sessions/{code}/answers", h.submitAnswer)
	mux.HandleFunc("GET /sessions/{code}/snapshot", h.snapshot)
	mux.HandleFunc("GET /sessions/{code}/leaderboard", h.leaderboard)
}

type createSessionRequest struct {
	QuizID      string          `json:"quizId"`
	PresenterID string          `json:"presenterId"`
	Settings    domain.Settings `json:"settings"`
}

type joinRequest struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type commandRequest struct {
	PresenterID string `json:"presenterId"`
}

type submitRequest struct {
	ParticipantID string   `json:"participantId"`
	QuestionID    string   `json:"questionId"`
	OptionIDs     []string `json:"optionIds"`
	ElapsedMs     int      `json:"elapsedMs"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QuizID == "" || req.PresenterID == "" {
		writeError(w, http.StatusBadRequest, "quizId and presenterId are required")
		return
	}
	snap, err := h.service.Create(r.Context(), req.QuizID, req.PresenterID, req.Settings)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (h *Handler) join(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || (req.UserID == "" && req.DisplayName == "") {
		writeError(w, http.StatusBadRequest, "userId or displayName is required")
		return
	}
	if req.DisplayName == "" {
		req.DisplayName = req.UserID
	}
	participant, err := h.service.Join(r.Context(), r.PathValue("code"), req.UserID, req.DisplayName)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, participant)
}

func (h *Handler) start(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, h.service.Start)
}

func (h *Handler) advance(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, h.service.Advance)
}

func (h *Handler) end(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, h.service.End)
}

func (h *Handler) command(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, code, caller string) (domain.SessionSnapshot, error)) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PresenterID == "" {
		writeError(w, http.StatusBadRequest, "presenterId is required")
		return
	}
	snap, err := op(r.Context(), r.PathValue("code"), req.PresenterID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ParticipantID == "" || req.QuestionID == "" {
		writeError(w, http.StatusBadRequest, "participantId and questionId are required")
		return
	}
	result, err := h.service.Submit(r.Context(), r.PathValue("code"), req.ParticipantID, domain.AnswerSubmission{
		QuestionID: req.QuestionID,
		OptionIDs:  req.OptionIDs,
		ElapsedMs:  req.ElapsedMs,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Snapshot(r.Context(), r.PathValue("code"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) leaderboard(w http.ResponseWriter, r *http.Request) {
	lb, err := h.service.Leaderboard(r.Context(), r.PathValue("code"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lb)
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrPhaseMismatch),
		errors.Is(err, domain.ErrDuplicateSubmission),
		errors.Is(err, domain.ErrCodeTaken),
		errors.Is(err, domain.ErrParticipantExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrParticipantNotFound),
		errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrOptionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		log.Printf("gateway error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}
