package handler

import (
	"encoding/json"
	"net/http"

	"teacher2student/internal/api/middleware"
	"teacher2student/internal/app/service"
	"teacher2student/internal/common"
	"teacher2student/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type AnswerHandler struct {
	answerService *service.AnswerService
}

func NewAnswerHandler(as *service.AnswerService) *AnswerHandler {
	return &AnswerHandler{answerService: as}
}

// RegisterRoutes mounts the answer routes on the homeworks subtree. The
// Authenticator middleware is expected on the parent router.
func (h *AnswerHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(student chi.Router) {
		student.Use(middleware.StudentOnly)
		student.Post("/{homeworkID}/answers", h.submitAnswer)
		student.Get("/{homeworkID}/answers/latest", h.latestOwnAnswer)
	})

	r.Group(func(teacher chi.Router) {
		teacher.Use(middleware.TeacherOnly)
		teacher.Get("/{homeworkID}/answers", h.latestPerStudent)
		teacher.Get("/{homeworkID}/students/{studentID}/answers", h.studentHistory)
	})
}

func (h *AnswerHandler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	answer, err := h.answerService.Submit(r.Context(), userID, chi.URLParam(r, "homeworkID"), req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, answer)
}

func (h *AnswerHandler) latestOwnAnswer(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	answer, err := h.answerService.LatestOwn(r.Context(), userID, chi.URLParam(r, "homeworkID"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, answer)
}

func (h *AnswerHandler) latestPerStudent(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	answers, err := h.answerService.LatestPerStudent(r.Context(), userID, chi.URLParam(r, "homeworkID"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if answers == nil {
		answers = []model.Answer{}
	}
	common.RespondWithJSON(w, http.StatusOK, map[string][]model.Answer{"answers": answers})
}

func (h *AnswerHandler) studentHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	answers, err := h.answerService.HistoryForStudent(
		r.Context(), userID, chi.URLParam(r, "homeworkID"), chi.URLParam(r, "studentID"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if answers == nil {
		answers = []model.Answer{}
	}
	common.RespondWithJSON(w, http.StatusOK, map[string][]model.Answer{"answers": answers})
}
