package inmem

import (
	"context"
	"sort"

	"teacher2student/internal/common"
	"teacher2student/internal/domain/model"
	"teacher2student/internal/domain/repository"
)

type answerRepository struct {
	db *DB
}

var _ repository.AnswerRepository = (*answerRepository)(nil) // interface compliance check

func NewAnswerRepository(db *DB) repository.AnswerRepository {
	return &answerRepository{db: db}
}

func (repo *answerRepository) Create(_ context.Context, a *model.Answer) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	cp := *a
	repo.db.answers = append(repo.db.answers, &cp)
	return nil
}

// newerThan reports whether a is more recent than b: later submitted_at wins,
// ties broken by higher id.
func newerThan(a, b *model.Answer) bool {
	if !a.SubmittedAt.Equal(b.SubmittedAt) {
		return a.SubmittedAt.After(b.SubmittedAt)
	}
	return a.ID > b.ID
}

func (repo *answerRepository) LatestForStudent(_ context.Context, homeworkID, studentID string) (*model.Answer, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var latest *model.Answer
	for _, a := range repo.db.answers {
		if a.HomeworkID != homeworkID || a.StudentID != studentID {
			continue
		}
		if latest == nil || newerThan(a, latest) {
			latest = a
		}
	}
	if latest == nil {
		return nil, common.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (repo *answerRepository) LatestPerStudent(_ context.Context, homeworkID string) ([]model.Answer, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	latest := make(map[string]*model.Answer)
	for _, a := range repo.db.answers {
		if a.HomeworkID != homeworkID {
			continue
		}
		if cur, ok := latest[a.StudentID]; !ok || newerThan(a, cur) {
			latest[a.StudentID] = a
		}
	}

	answers := make([]model.Answer, 0, len(latest))
	for _, a := range latest {
		cp := *a
		if s, ok := repo.db.users[a.StudentID]; ok {
			name := s.FirstName + " " + s.LastName
			cp.StudentName = &name
		}
		answers = append(answers, cp)
	}
	sort.Slice(answers, func(i, j int) bool { return answers[i].StudentID < answers[j].StudentID })
	return answers, nil
}

func (repo *answerRepository) ListForStudentAndHomework(_ context.Context, homeworkID, studentID string) ([]model.Answer, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var answers []model.Answer
	for _, a := range repo.db.answers {
		if a.HomeworkID == homeworkID && a.StudentID == studentID {
			answers = append(answers, *a)
		}
	}
	sort.Slice(answers, func(i, j int) bool {
		if !answers[i].SubmittedAt.Equal(answers[j].SubmittedAt) {
			return answers[i].SubmittedAt.Before(answers[j].SubmittedAt)
		}
		return answers[i].ID < answers[j].ID
	})
	return answers, nil
}

func (repo *answerRepository) HasAnswered(_ context.Context, homeworkID, studentID string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, a := range repo.db.answers {
		if a.HomeworkID == homeworkID && a.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (repo *answerRepository) AnsweredStudentIDs(_ context.Context, homeworkID string) ([]string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	seen := make(map[string]bool)
	var ids []string
	for _, a := range repo.db.answers {
		if a.HomeworkID == homeworkID && !seen[a.StudentID] {
			seen[a.StudentID] = true
			ids = append(ids, a.StudentID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
