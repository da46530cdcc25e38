package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"teacher2student/internal/app/service"
	"teacher2student/internal/common"
	"teacher2student/internal/common/security"
	"teacher2student/internal/domain/model"
	"teacher2student/internal/domain/repository/inmem"
	"teacher2student/internal/platform/cache"
	"teacher2student/internal/platform/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	config.AppConfig = &config.Config{
		JWTKey:           []byte("test-secret"),
		JWTExp:           time.Hour,
		HomeworkPageSize: 10,
	}
	security.InitJWT()
}

func newTestServer() http.Handler {
	db := inmem.Open()
	userRepo := inmem.NewUserRepository(db)
	homeworkRepo := inmem.NewHomeworkRepository(db)
	answerRepo := inmem.NewAnswerRepository(db)
	tokenStore := cache.NewMemoryTokenStore()

	authService := service.NewAuthService(userRepo, tokenStore)
	homeworkService := service.NewHomeworkService(homeworkRepo, userRepo, answerRepo)
	answerService := service.NewAnswerService(answerRepo, homeworkRepo, userRepo)

	return NewRouter(authService, homeworkService, answerService, tokenStore)
}

func doRequest(t *testing.T, h http.Handler, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func signup(t *testing.T, h http.Handler, role, email, firstName, lastName string) *service.AuthResponse {
	t.Helper()
	rec := doRequest(t, h, http.MethodPost, "/api/v1/auth/signup/"+role, "", service.SignupRequest{
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Password:  "1234",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp service.AuthResponse
	decodeJSON(t, rec, &resp)
	return &resp
}

func TestAnonymousCallerGetsSigninURL(t *testing.T) {
	h := newTestServer()

	rec := doRequest(t, h, http.MethodGet, "/api/v1/homeworks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var errResp common.ErrorResponse
	decodeJSON(t, rec, &errResp)
	assert.Equal(t, "/signin?next=/api/v1/homeworks", errResp.SigninURL,
		"401 must record the requested path as return destination")
}

func TestRoleGating(t *testing.T) {
	h := newTestServer()
	teacher := signup(t, h, "teacher", "john@school.test", "John", "Teacher")
	student := signup(t, h, "student", "jack@school.test", "Jack", "Student")

	hwPayload := service.CreateHomeworkRequest{Title: "Homework #1", Question: "How are you?", DueDate: "2026-09-15"}

	// Students cannot reach teacher-only operations.
	rec := doRequest(t, h, http.MethodPost, "/api/v1/homeworks", student.Token, hwPayload)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = doRequest(t, h, http.MethodGet, "/api/v1/homeworks", student.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Teachers cannot reach student-only operations.
	rec = doRequest(t, h, http.MethodGet, "/api/v1/homeworks/assigned", teacher.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestOwnershipGating(t *testing.T) {
	h := newTestServer()
	owner := signup(t, h, "teacher", "john@school.test", "John", "Teacher")
	other := signup(t, h, "teacher", "jane@school.test", "Jane", "Teacher")
	student := signup(t, h, "student", "jack@school.test", "Jack", "Student")

	rec := doRequest(t, h, http.MethodPost, "/api/v1/homeworks", owner.Token,
		service.CreateHomeworkRequest{Title: "Homework #1", Question: "How are you?", DueDate: "2026-09-15"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var hw model.Homework
	decodeJSON(t, rec, &hw)

	// Another teacher passes the role check but fails the ownership check.
	title := "hijacked"
	rec = doRequest(t, h, http.MethodPut, "/api/v1/homeworks/"+hw.ID, other.Token,
		service.UpdateHomeworkRequest{Title: &title})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, h, http.MethodPut, "/api/v1/homeworks/"+hw.ID+"/students/"+student.User.ID, other.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/v1/homeworks/"+hw.ID+"/answers", other.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSignupDuplicateEmail(t *testing.T) {
	h := newTestServer()
	signup(t, h, "teacher", "john@school.test", "John", "Teacher")

	rec := doRequest(t, h, http.MethodPost, "/api/v1/auth/signup/student", "", service.SignupRequest{
		Email:     "john@school.test",
		FirstName: "Jack",
		LastName:  "Student",
		Password:  "1234",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAssignUnknownStudentNotFound(t *testing.T) {
	h := newTestServer()
	teacher := signup(t, h, "teacher", "john@school.test", "John", "Teacher")

	rec := doRequest(t, h, http.MethodPost, "/api/v1/homeworks", teacher.Token,
		service.CreateHomeworkRequest{Title: "Homework #1", Question: "How are you?", DueDate: "2026-09-15"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var hw model.Homework
	decodeJSON(t, rec, &hw)

	rec = doRequest(t, h, http.MethodPut, "/api/v1/homeworks/"+hw.ID+"/students/no-such-id", teacher.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	h := newTestServer()
	teacher := signup(t, h, "teacher", "john@school.test", "John", "Teacher")

	rec := doRequest(t, h, http.MethodGet, "/api/v1/auth/me", teacher.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, h, http.MethodPost, "/api/v1/auth/logout", teacher.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// The same token no longer authenticates.
	rec = doRequest(t, h, http.MethodGet, "/api/v1/auth/me", teacher.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// TestHomeworkFlow drives the whole portal over HTTP: signup, create, assign,
// submit, review, resubmit, unassign.
func TestHomeworkFlow(t *testing.T) {
	h := newTestServer()
	john := signup(t, h, "teacher", "john@school.test", "John", "Teacher")
	jack := signup(t, h, "student", "jack@school.test", "Jack", "Student")

	// John creates a homework due today.
	rec := doRequest(t, h, http.MethodPost, "/api/v1/homeworks", john.Token, service.CreateHomeworkRequest{
		Title:    "Homework #1",
		Question: "How are you?",
		DueDate:  time.Now().Format("2006-01-02"),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var hw model.Homework
	decodeJSON(t, rec, &hw)

	// John assigns Jack.
	rec = doRequest(t, h, http.MethodPut, "/api/v1/homeworks/"+hw.ID+"/students/"+jack.User.ID, john.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Jack sees the homework in his list.
	rec = doRequest(t, h, http.MethodGet, "/api/v1/homeworks/assigned", jack.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var assigned struct {
		Homeworks []model.Homework `json:"homeworks"`
	}
	decodeJSON(t, rec, &assigned)
	require.Len(t, assigned.Homeworks, 1)
	assert.Equal(t, hw.ID, assigned.Homeworks[0].ID)

	// No prior answer to prefill yet.
	rec = doRequest(t, h, http.MethodGet, "/api/v1/homeworks/"+hw.ID+"/answers/latest", jack.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Jack submits.
	rec = doRequest(t, h, http.MethodPost, "/api/v1/homeworks/"+hw.ID+"/answers", jack.Token,
		service.SubmitAnswerRequest{Description: "Great!"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// John's summary has exactly one row for Jack.
	rec = doRequest(t, h, http.MethodGet, "/api/v1/homeworks/"+hw.ID+"/answers", john.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary struct {
		Answers []model.Answer `json:"answers"`
	}
	decodeJSON(t, rec, &summary)
	require.Len(t, summary.Answers, 1)
	assert.Equal(t, jack.User.ID, summary.Answers[0].StudentID)
	assert.Equal(t, "Great!", summary.Answers[0].Description)

	// Jack resubmits; the summary follows the latest answer.
	rec = doRequest(t, h, http.MethodPost, "/api/v1/homeworks/"+hw.ID+"/answers", jack.Token,
		service.SubmitAnswerRequest{Description: "Even better!"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/v1/homeworks/"+hw.ID+"/answers", john.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeJSON(t, rec, &summary)
	require.Len(t, summary.Answers, 1)
	assert.Equal(t, "Even better!", summary.Answers[0].Description)

	// Full history in submission order.
	rec = doRequest(t, h, http.MethodGet,
		"/api/v1/homeworks/"+hw.ID+"/students/"+jack.User.ID+"/answers", john.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history struct {
		Answers []model.Answer `json:"answers"`
	}
	decodeJSON(t, rec, &history)
	require.Len(t, history.Answers, 2)
	assert.Equal(t, "Great!", history.Answers[0].Description)
	assert.Equal(t, "Even better!", history.Answers[1].Description)

	// Unassigning Jack empties his list but keeps his answers reviewable.
	rec = doRequest(t, h, http.MethodDelete, "/api/v1/homeworks/"+hw.ID+"/students/"+jack.User.ID, john.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/v1/homeworks/assigned", jack.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeJSON(t, rec, &assigned)
	assert.Empty(t, assigned.Homeworks)

	rec = doRequest(t, h, http.MethodGet, "/api/v1/homeworks/"+hw.ID+"/answers", john.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeJSON(t, rec, &summary)
	assert.Len(t, summary.Answers, 1)
}
