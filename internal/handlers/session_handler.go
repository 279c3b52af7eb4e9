package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exercise-service/internal/models"
	"github.com/SAP-F-2025/exercise-service/internal/services"
	"github.com/SAP-F-2025/exercise-service/internal/session"
	"github.com/SAP-F-2025/exercise-service/internal/utils"
	"github.com/SAP-F-2025/exercise-service/internal/validator"
)

type SetAnswerRequest struct {
	Answer models.Answer `json:"answer"`
}

type TapOptionRequest struct {
	Option string `json:"option" validate:"required"`
}

type InteractionRequest struct {
	Type   models.InteractionType `json:"type" validate:"required,interaction_type"`
	Target string                 `json:"target,omitempty"`
	Data   map[string]any         `json:"data,omitempty"`
}

type SessionHandler struct {
	BaseHandler
	sessionService *services.SessionService
	validator      *validator.Validator
}

func NewSessionHandler(
	sessionService *services.SessionService,
	validator *validator.Validator,
	logger utils.Logger,
) *SessionHandler {
	return &SessionHandler{
		BaseHandler:    NewBaseHandler(logger),
		sessionService: sessionService,
		validator:      validator,
	}
}

// StartSession loads an exercise and presents its first question
// @Summary Start session
// @Description Starts a session for an exercise or an assigned exercise
// @Tags sessions
// @Accept json
// @Produce json
// @Param session body services.StartSessionRequest true "Session data"
// @Success 201 {object} session.Snapshot
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /sessions [post]
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req services.StartSessionRequest
	if !bindAndValidate(c, h.validator, &req) {
		return
	}

	snapshot, err := h.sessionService.Start(requestContext(c), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, snapshot)
}

// GetSession returns the current snapshot
// @Summary Get session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} session.Snapshot
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	snapshot, err := h.sessionService.Snapshot(requestContext(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// SetAnswer replaces the answer to the current question
// @Summary Set answer
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param answer body SetAnswerRequest true "Answer"
// @Success 200 {object} session.Snapshot
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/answer [put]
func (h *SessionHandler) SetAnswer(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req SetAnswerRequest
	if !bindAndValidate(c, h.validator, &req) {
		return
	}

	h.respond(c, func() (session.Snapshot, error) {
		return h.sessionService.SetAnswer(requestContext(c), id, req.Answer)
	})
}

// TapOption selects a multiple-choice option; single-answer questions are
// evaluated immediately.
func (h *SessionHandler) TapOption(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req TapOptionRequest
	if !bindAndValidate(c, h.validator, &req) {
		return
	}

	h.respond(c, func() (session.Snapshot, error) {
		return h.sessionService.TapOption(requestContext(c), id, req.Option)
	})
}

func (h *SessionHandler) Submit(c *gin.Context) {
	h.action(c, h.sessionService.Submit)
}

func (h *SessionHandler) Finish(c *gin.Context) {
	h.action(c, h.sessionService.Finish)
}

func (h *SessionHandler) Previous(c *gin.Context) {
	h.action(c, h.sessionService.Previous)
}

func (h *SessionHandler) PlayAudio(c *gin.Context) {
	h.action(c, h.sessionService.PlayAudio)
}

func (h *SessionHandler) Deactivate(c *gin.Context) {
	h.action(c, h.sessionService.Deactivate)
}

func (h *SessionHandler) Activate(c *gin.Context) {
	h.action(c, h.sessionService.Activate)
}

// RecordInteraction appends an analytics event to the current question
// @Summary Record interaction
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param interaction body InteractionRequest true "Interaction"
// @Success 200 {object} session.Snapshot
// @Failure 400 {object} ErrorResponse
// @Router /sessions/{id}/interactions [post]
func (h *SessionHandler) RecordInteraction(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req InteractionRequest
	if !bindAndValidate(c, h.validator, &req) {
		return
	}

	h.respond(c, func() (session.Snapshot, error) {
		return h.sessionService.RecordInteraction(requestContext(c), id, req.Type, req.Target, req.Data)
	})
}

// SubmitResult writes the result record. Repeating the call after success
// returns the same record; repeating it while the write is running returns
// the session snapshot with 202.
// @Summary Submit result
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.ExerciseResult
// @Success 202 {object} session.Snapshot
// @Failure 409 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /sessions/{id}/result [post]
func (h *SessionHandler) SubmitResult(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	ctx := requestContext(c)
	result, err := h.sessionService.SubmitResult(ctx, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if result == nil {
		h.respondWithStatus(c, http.StatusAccepted, func() (session.Snapshot, error) {
			return h.sessionService.Snapshot(ctx, id)
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *SessionHandler) CloseSession(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	if err := h.sessionService.Close(requestContext(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// action runs a body-less session operation.
func (h *SessionHandler) action(c *gin.Context, op func(ctx context.Context, sessionID string) (session.Snapshot, error)) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	h.respond(c, func() (session.Snapshot, error) {
		return op(requestContext(c), id)
	})
}

func (h *SessionHandler) respond(c *gin.Context, op func() (session.Snapshot, error)) {
	h.respondWithStatus(c, http.StatusOK, op)
}

func (h *SessionHandler) respondWithStatus(c *gin.Context, status int, op func() (session.Snapshot, error)) {
	snapshot, err := op()
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(status, snapshot)
}
