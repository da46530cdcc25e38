package service

import (
	"context"
	"testing"
	"time"

	"teacher2student/internal/common/security"
	"teacher2student/internal/domain/model"
	"teacher2student/internal/domain/repository"
	"teacher2student/internal/domain/repository/inmem"
	"teacher2student/internal/platform/cache"
	"teacher2student/internal/platform/config"

	"github.com/google/uuid"
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

type testEnv struct {
	db           *inmem.DB
	userRepo     repository.UserRepository
	homeworkRepo repository.HomeworkRepository
	answerRepo   repository.AnswerRepository

	auth     *AuthService
	homework *HomeworkService
	answer   *AnswerService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := inmem.Open()
	userRepo := inmem.NewUserRepository(db)
	homeworkRepo := inmem.NewHomeworkRepository(db)
	answerRepo := inmem.NewAnswerRepository(db)
	return &testEnv{
		db:           db,
		userRepo:     userRepo,
		homeworkRepo: homeworkRepo,
		answerRepo:   answerRepo,
		auth:         NewAuthService(userRepo, cache.NewMemoryTokenStore()),
		homework:     NewHomeworkService(homeworkRepo, userRepo, answerRepo),
		answer:       NewAnswerService(answerRepo, homeworkRepo, userRepo),
	}
}

func (env *testEnv) createUser(t *testing.T, role, email, firstName, lastName string) *model.User {
	t.Helper()
	now := time.Now().UTC()
	user := &model.User{
		ID:        uuid.NewString(),
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, env.userRepo.Create(context.Background(), user))
	return user
}

func (env *testEnv) createHomework(t *testing.T, teacher *model.User, title string) *model.Homework {
	t.Helper()
	hw, err := env.homework.CreateHomework(context.Background(), teacher.ID, CreateHomeworkRequest{
		Title:    title,
		Question: "How are you?",
		DueDate:  time.Now().Format(dueDateLayout),
	})
	require.NoError(t, err)
	return hw
}

// createAnswer inserts directly through the repository so tests can control
// the submission timestamp.
func (env *testEnv) createAnswer(t *testing.T, hw *model.Homework, student *model.User, description string, submittedAt time.Time) *model.Answer {
	t.Helper()
	a := &model.Answer{
		ID:          uuid.NewString(),
		Description: description,
		StudentID:   student.ID,
		HomeworkID:  hw.ID,
		SubmittedAt: submittedAt,
	}
	require.NoError(t, env.answerRepo.Create(context.Background(), a))
	return a
}
