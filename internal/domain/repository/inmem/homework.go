package inmem

import (
	"context"
	"sort"

	"teacher2student/internal/common"
	"teacher2student/internal/domain/model"
	"teacher2student/internal/domain/repository"
)

type homeworkRepository struct {
	db *DB
}

var _ repository.HomeworkRepository = (*homeworkRepository)(nil) // interface compliance check

func NewHomeworkRepository(db *DB) repository.HomeworkRepository {
	return &homeworkRepository{db: db}
}

func (repo *homeworkRepository) Create(_ context.Context, hw *model.Homework) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, h := range repo.db.homeworks {
		if h.Slug == hw.Slug {
			return common.ErrConflict
		}
	}
	cp := *hw
	repo.db.homeworks[hw.ID] = &cp
	return nil
}

func (repo *homeworkRepository) Update(_ context.Context, hw *model.Homework) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	existing, ok := repo.db.homeworks[hw.ID]
	if !ok {
		return common.ErrNotFound
	}
	existing.Slug = hw.Slug
	existing.Title = hw.Title
	existing.Question = hw.Question
	existing.DueDate = hw.DueDate
	return nil
}

func (repo *homeworkRepository) FindByID(_ context.Context, id string) (*model.Homework, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	hw, ok := repo.db.homeworks[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *hw
	if t, ok := repo.db.users[hw.TeacherID]; ok {
		name := t.FirstName + " " + t.LastName
		cp.TeacherName = &name
	}
	return &cp, nil
}

func (repo *homeworkRepository) ListByTeacher(_ context.Context, teacherID string, limit, offset int) ([]model.Homework, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var all []model.Homework
	for _, hw := range repo.db.homeworks {
		if hw.TeacherID == teacherID {
			all = append(all, *hw)
		}
	}
	sortHomeworks(all)

	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (repo *homeworkRepository) ListByAssignedStudent(_ context.Context, studentID string) ([]model.Homework, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var homeworks []model.Homework
	for key, assigned := range repo.db.assignments {
		if !assigned || key.studentID != studentID {
			continue
		}
		if hw, ok := repo.db.homeworks[key.homeworkID]; ok {
			homeworks = append(homeworks, *hw)
		}
	}
	sortHomeworks(homeworks)
	return homeworks, nil
}

func sortHomeworks(homeworks []model.Homework) {
	sort.Slice(homeworks, func(i, j int) bool {
		if !homeworks[i].CreatedAt.Equal(homeworks[j].CreatedAt) {
			return homeworks[i].CreatedAt.Before(homeworks[j].CreatedAt)
		}
		return homeworks[i].ID < homeworks[j].ID
	})
}

func (repo *homeworkRepository) AssignStudent(_ context.Context, homeworkID, studentID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.assignments[assignmentKey{homeworkID, studentID}] = true
	return nil
}

func (repo *homeworkRepository) UnassignStudent(_ context.Context, homeworkID, studentID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.assignments, assignmentKey{homeworkID, studentID})
	return nil
}

func (repo *homeworkRepository) IsAssigned(_ context.Context, homeworkID, studentID string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	return repo.db.assignments[assignmentKey{homeworkID, studentID}], nil
}

func (repo *homeworkRepository) AssignedStudentIDs(_ context.Context, homeworkID string) ([]string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var ids []string
	for key, assigned := range repo.db.assignments {
		if assigned && key.homeworkID == homeworkID {
			ids = append(ids, key.studentID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
