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
	"github.com/gosimple/slug"
)

const dueDateLayout = "2006-01-02"

type HomeworkService struct {
	homeworkRepo repository.HomeworkRepository
	userRepo     repository.UserRepository
	answerRepo   repository.AnswerRepository
}

func NewHomeworkService(
	homeworkRepo repository.HomeworkRepository,
	userRepo repository.UserRepository,
	answerRepo repository.AnswerRepository,
) *HomeworkService {
	return &HomeworkService{
		homeworkRepo: homeworkRepo,
		userRepo:     userRepo,
		answerRepo:   answerRepo,
	}
}

type CreateHomeworkRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	Question string `json:"question" validate:"required,max=200"`
	DueDate  string `json:"due_date" validate:"required,datetime=2006-01-02"`
}

type UpdateHomeworkRequest struct {
	Title    *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Question *string `json:"question,omitempty" validate:"omitempty,max=200"`
	DueDate  *string `json:"due_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// makeSlug derives a URL-friendly identifier from the title. The id suffix
// keeps slugs unique across homeworks with the same title.
func makeSlug(title, id string) string {
	return slug.Make(title) + "-" + id[:8]
}

// CreateHomework creates a homework owned by the caller with an empty
// assignment set. The teacher role itself is enforced at the handler
// boundary.
func (s *HomeworkService) CreateHomework(ctx context.Context, teacherID string, req CreateHomeworkRequest) (*model.Homework, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}
	dueDate, err := time.Parse(dueDateLayout, req.DueDate)
	if err != nil {
		return nil, common.Errorf("invalid due date: %w", common.ErrValidation)
	}

	now := time.Now().UTC()
	hw := &model.Homework{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Question:  req.Question,
		DueDate:   dueDate,
		TeacherID: teacherID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	hw.Slug = makeSlug(hw.Title, hw.ID)

	if err := s.homeworkRepo.Create(ctx, hw); err != nil {
		return nil, fmt.Errorf("failed to create homework: %w", err)
	}
	return hw, nil
}

// UpdateHomework replaces the mutable fields (title, question, due date) of a
// homework owned by the caller. Ownership can never change: there is no
// teacher field to update.
func (s *HomeworkService) UpdateHomework(ctx context.Context, callerID, homeworkID string, req UpdateHomeworkRequest) (*model.Homework, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}

	hw, err := s.resolveOwnedHomework(ctx, callerID, homeworkID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		hw.Title = *req.Title
		hw.Slug = makeSlug(hw.Title, hw.ID)
	}
	if req.Question != nil {
		hw.Question = *req.Question
	}
	if req.DueDate != nil {
		dueDate, err := time.Parse(dueDateLayout, *req.DueDate)
		if err != nil {
			return nil, common.Errorf("invalid due date: %w", common.ErrValidation)
		}
		hw.DueDate = dueDate
	}

	if err := s.homeworkRepo.Update(ctx, hw); err != nil {
		return nil, fmt.Errorf("failed to update homework: %w", err)
	}
	return hw, nil
}

func (s *HomeworkService) GetHomework(ctx context.Context, callerID, homeworkID string) (*model.Homework, error) {
	return s.resolveOwnedHomework(ctx, callerID, homeworkID)
}

// ListForTeacher returns the caller's own homeworks, paginated.
func (s *HomeworkService) ListForTeacher(ctx context.Context, teacherID string, page, pageSize int) ([]model.Homework, int, error) {
	offset := (page - 1) * pageSize
	if offset < 0 {
		offset = 0
	}
	return s.homeworkRepo.ListByTeacher(ctx, teacherID, pageSize, offset)
}

// ListForStudent returns the homeworks the student is currently assigned to.
func (s *HomeworkService) ListForStudent(ctx context.Context, studentID string) ([]model.Homework, error) {
	return s.homeworkRepo.ListByAssignedStudent(ctx, studentID)
}

// Roster returns every student account together with assignment and
// has-answered flags for the given homework (the assign view's data). The
// has-answered flag is independent of assignment membership.
func (s *HomeworkService) Roster(ctx context.Context, callerID, homeworkID string) ([]model.RosterEntry, error) {
	if _, err := s.resolveOwnedHomework(ctx, callerID, homeworkID); err != nil {
		return nil, err
	}

	students, err := s.userRepo.ListByRole(ctx, model.RoleStudent)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	assignedIDs, err := s.homeworkRepo.AssignedStudentIDs(ctx, homeworkID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned students: %w", err)
	}
	answeredIDs, err := s.answerRepo.AnsweredStudentIDs(ctx, homeworkID)
	if err != nil {
		return nil, fmt.Errorf("failed to list answered students: %w", err)
	}

	assigned := make(map[string]bool, len(assignedIDs))
	for _, id := range assignedIDs {
		assigned[id] = true
	}
	answered := make(map[string]bool, len(answeredIDs))
	for _, id := range answeredIDs {
		answered[id] = true
	}

	roster := make([]model.RosterEntry, 0, len(students))
	for _, student := range students {
		student.HashedPassword = ""
		roster = append(roster, model.RosterEntry{
			Student:     student,
			Assigned:    assigned[student.ID],
			HasAnswered: answered[student.ID],
		})
	}
	return roster, nil
}

// AssignStudent adds the student to the homework's assignment set. Idempotent:
// assigning twice is not an error.
func (s *HomeworkService) AssignStudent(ctx context.Context, callerID, homeworkID, studentID string) error {
	res, err := s.resolveHomeworkStudent(ctx, callerID, homeworkID, studentID)
	if err != nil {
		return err
	}
	if err := s.homeworkRepo.AssignStudent(ctx, res.homework.ID, res.student.ID); err != nil {
		return fmt.Errorf("failed to assign student: %w", err)
	}
	return nil
}

// UnassignStudent removes the student from the homework's assignment set.
// Prior answers are untouched.
func (s *HomeworkService) UnassignStudent(ctx context.Context, callerID, homeworkID, studentID string) error {
	res, err := s.resolveHomeworkStudent(ctx, callerID, homeworkID, studentID)
	if err != nil {
		return err
	}
	if err := s.homeworkRepo.UnassignStudent(ctx, res.homework.ID, res.student.ID); err != nil {
		return fmt.Errorf("failed to unassign student: %w", err)
	}
	return nil
}

func (s *HomeworkService) HasAnswered(ctx context.Context, homeworkID, studentID string) (bool, error) {
	return s.answerRepo.HasAnswered(ctx, homeworkID, studentID)
}

// resolvedAssignment carries the entities validated by resolveHomeworkStudent
// to its callers.
type resolvedAssignment struct {
	homework *model.Homework
	student  *model.User
}

// resolveOwnedHomework loads the homework and checks the caller owns it.
func (s *HomeworkService) resolveOwnedHomework(ctx context.Context, callerID, homeworkID string) (*model.Homework, error) {
	hw, err := s.homeworkRepo.FindByID(ctx, homeworkID)
	if err != nil {
		return nil, err
	}
	if hw.TeacherID != callerID {
		return nil, common.ErrForbidden
	}
	return hw, nil
}

// resolveHomeworkStudent validates an assign/unassign target: the homework
// must exist and be owned by the caller, and the target must be a student
// account. A target of any other role is treated as not found. These checks
// run on every call since the endpoints are not tied to a rendered form.
func (s *HomeworkService) resolveHomeworkStudent(ctx context.Context, callerID, homeworkID, studentID string) (*resolvedAssignment, error) {
	hw, err := s.resolveOwnedHomework(ctx, callerID, homeworkID)
	if err != nil {
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
	return &resolvedAssignment{homework: hw, student: student}, nil
}
