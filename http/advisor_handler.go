package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"loan-approval/logger"
	"loan-approval/service"
)

type AdvisorHandler struct {
	service *service.AdvisorService
	log     logger.Logger
}

func NewAdvisorHandler(service *service.AdvisorService, log logger.Logger) *AdvisorHandler {
	return &AdvisorHandler{service: service, log: log}
}

type advisorRequest struct {
	Question    string                 `json:"question"`
	UserContext service.AdvisorContext `json:"userContext"`
}

type advisorResponse struct {
	Response string `json:"response"`
}

func (h *AdvisorHandler) Advise(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
		return
	}

	var req advisorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.log, http.StatusBadRequest, "invalid request body")
		return
	}

	text, err := h.service.Advise(r.Context(), req.Question, req.UserContext)
	if errors.Is(err, service.ErrEmptyQuestion) {
		writeError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.log.WithError(err).Error("chat advisor error", nil)
		writeError(w, h.log, http.StatusInternalServerError, "Failed to get advice")
		return
	}
	writeJSON(w, h.log, http.StatusOK, advisorResponse{Response: text})
}
