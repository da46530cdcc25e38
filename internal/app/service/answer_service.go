package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"teacher2student/internal/common"
	"teacher2student/internal/domain/model"
	"teacher2student/internal/domain/repository"

	"github.com/google/uuid"
)

type AnswerService struct {
	answerRepo   repository.AnswerRepository
	homeworkRepo repository.HomeworkRepository
	userRepo     repository.UserRepository
}

func NewAnswerService(
	answerRepo repository.AnswerRepository,
	homeworkRepo repository.HomeworkRepository,
	userRepo repository.UserRepository,
) *AnswerService {
	return &AnswerService{
		answerRepo:   answerRepo,
		homeworkRepo: homeworkRepo,
		userRepo:     userRepo,
	}
}

type SubmitAnswerRequest struct {
	Description string `json:"description" validate:"required,max=500"`
}

// Submit records a new answer for the calling student. Assignment membership
// is not required: a student unassigned after answering keeps their history,
// and submitting without an assignment edge is allowed, as before. Answers
// are append-only, so resubmission adds a row instead of replacing one.
func (s *AnswerService) Submit(ctx context.Context, studentID, homeworkID string, req SubmitAnswerRequest) (*model.Answer, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}

	if _, err := s.homeworkRepo.FindByID(ctx, homeworkID); err != nil {
		return nil, err
	}

	answer := &model.Answer{
		ID:          uuid.NewString(),
		Description: req.Description,
		StudentID:   studentID,
		HomeworkID:  homeworkID,
		SubmittedAt: time.Now().UTC(),
	}
	if err := s.answerRepo.Create(ctx, answer); err != nil {
		return nil, fmt.Errorf("failed to create answer: %w", err)
	}
	return answer, nil
}

// LatestOwn returns the calling student's most recent answer for the
// homework, used to prefill the submission form. ErrNotFound when the
// student has not answered yet.
func (s *AnswerService) LatestOwn(ctx context.Context, studentID, homeworkID string) (*model.Answer, error) {
	if _, err := s.homeworkRepo.FindByID(ctx, homeworkID); err != nil {
		return nil, err
	}
	return s.answerRepo.LatestForStudent(ctx, homeworkID, studentID)
}

// LatestPerStudent returns the homework owner's review summary: one answer
// per student who answered, the most recent each.
func (s *AnswerService) LatestPerStudent(ctx context.Context, callerID, homeworkID string) ([]model.Answer, error) {
	if err := s.requireOwner(ctx, callerID, homeworkID); err != nil {
		return nil, err
	}
	return s.answerRepo.LatestPerStudent(ctx, homeworkID)
}

// HistoryForStudent returns a student's full submission history for the
// homework in submission order, for the owning teacher's review.
func (s *AnswerService) HistoryForStudent(ctx context.Context, callerID, homeworkID, studentID string) ([]model.Answer, error) {
	if err := s.requireOwner(ctx, callerID, homeworkID); err != nil {
		return nil, err
	}

	student, err := s.userRepo.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.Errorf("student %s: %w", studentID, common.ErrNotFound)
		}
		return nil, err
	}
	if !student.IsStudent() {
		return nil, common.Errorf("account %s is not a student: %w", studentID, common.ErrNotFound)
	}

	return s.answerRepo.ListForStudentAndHomework(ctx, homeworkID, student.ID)
}

func (s *AnswerService) requireOwner(ctx context.Context, callerID, homeworkID string) error {
	hw, err := s.homeworkRepo.FindByID(ctx, homeworkID)
	if err != nil {
		return err
	}
	if hw.TeacherID != callerID {
		return common.ErrForbidden
	}
	return nil
}
