package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"teacher2student/internal/api/middleware"
	"teacher2student/internal/app/service"
	"teacher2student/internal/common"
	"teacher2student/internal/domain/model"
	"teacher2student/internal/platform/config"

	"github.com/go-chi/chi/v5"
)

type HomeworkHandler struct {
	homeworkService *service.HomeworkService
}

func NewHomeworkHandler(hs *service.HomeworkService) *HomeworkHandler {
	return &HomeworkHandler{homeworkService: hs}
}

// RegisterRoutes expects the Authenticator middleware to be installed on the
// parent router; only role gates are applied here.
func (h *HomeworkHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(teacher chi.Router) {
		teacher.Use(middleware.TeacherOnly)
		teacher.Post("/", h.createHomework)
		teacher.Get("/", h.listOwnedHomeworks)
		teacher.Get("/{homeworkID}", h.getHomework)
		teacher.Put("/{homeworkID}", h.updateHomework)
		teacher.Get("/{homeworkID}/students", h.roster)
		teacher.Put("/{homeworkID}/students/{studentID}", h.assignStudent)
		teacher.Delete("/{homeworkID}/students/{studentID}", h.unassignStudent)
	})

	r.Group(func(student chi.Router) {
		student.Use(middleware.StudentOnly)
		student.Get("/assigned", h.listAssignedHomeworks)
	})
}

func (h *HomeworkHandler) createHomework(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.CreateHomeworkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	hw, err := h.homeworkService.CreateHomework(r.Context(), userID, req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, hw)
}

func (h *HomeworkHandler) updateHomework(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.UpdateHomeworkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	hw, err := h.homeworkService.UpdateHomework(r.Context(), userID, chi.URLParam(r, "homeworkID"), req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, hw)
}

func (h *HomeworkHandler) getHomework(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	hw, err := h.homeworkService.GetHomework(r.Context(), userID, chi.URLParam(r, "homeworkID"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, hw)
}

type PaginatedHomeworksResponse struct {
	Homeworks []model.Homework `json:"homeworks"`
	Total     int              `json:"total"`
	Page      int              `json:"page"`
	PageSize  int              `json:"page_size"`
}

func (h *HomeworkHandler) listOwnedHomeworks(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	pageSize := config.AppConfig.HomeworkPageSize

	homeworks, total, err := h.homeworkService.ListForTeacher(r.Context(), userID, page, pageSize)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if homeworks == nil {
		homeworks = []model.Homework{}
	}
	common.RespondWithJSON(w, http.StatusOK, PaginatedHomeworksResponse{
		Homeworks: homeworks,
		Total:     total,
		Page:      page,
		PageSize:  pageSize,
	})
}

func (h *HomeworkHandler) listAssignedHomeworks(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	homeworks, err := h.homeworkService.ListForStudent(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if homeworks == nil {
		homeworks = []model.Homework{}
	}
	common.RespondWithJSON(w, http.StatusOK, map[string][]model.Homework{"homeworks": homeworks})
}

func (h *HomeworkHandler) roster(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	roster, err := h.homeworkService.Roster(r.Context(), userID, chi.URLParam(r, "homeworkID"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string][]model.RosterEntry{"students": roster})
}

func (h *HomeworkHandler) assignStudent(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	err := h.homeworkService.AssignStudent(
		r.Context(), userID, chi.URLParam(r, "homeworkID"), chi.URLParam(r, "studentID"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Added"})
}

func (h *HomeworkHandler) unassignStudent(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	err := h.homeworkService.UnassignStudent(
		r.Context(), userID, chi.URLParam(r, "homeworkID"), chi.URLParam(r, "studentID"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Removed"})
}
