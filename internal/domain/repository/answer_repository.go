package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"teacher2student/internal/common"
	"teacher2student/internal/domain/model"
)

type AnswerRepository interface {
	Create(ctx context.Context, answer *model.Answer) error

	// LatestForStudent returns the most recent answer for (homework, student)
	// or common.ErrNotFound when the student has not answered yet.
	LatestForStudent(ctx context.Context, homeworkID, studentID string) (*model.Answer, error)

	// LatestPerStudent returns one answer per distinct student for the
	// homework: the one with the highest submitted_at, ties broken by
	// highest id.
	LatestPerStudent(ctx context.Context, homeworkID string) ([]model.Answer, error)

	// ListForStudentAndHomework returns the full submission history in
	// submission order (oldest first).
	ListForStudentAndHomework(ctx context.Context, homeworkID, studentID string) ([]model.Answer, error)

	HasAnswered(ctx context.Context, homeworkID, studentID string) (bool, error)
	AnsweredStudentIDs(ctx context.Context, homeworkID string) ([]string, error)
}

type pgAnswerRepository struct {
	db *sql.DB
}

func NewPgAnswerRepository(db *sql.DB) AnswerRepository {
	return &pgAnswerRepository{db: db}
}

func (r *pgAnswerRepository) Create(ctx context.Context, a *model.Answer) error {
	// No uniqueness on (homework, student): resubmission appends a new row.
	query := `INSERT INTO answers (id, description, student_id, homework_id, submitted_at)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, a.ID, a.Description, a.StudentID, a.HomeworkID, a.SubmittedAt)
	if err != nil {
		return fmt.Errorf("pgAnswerRepository.Create: %w", err)
	}
	return nil
}

func (r *pgAnswerRepository) LatestForStudent(ctx context.Context, homeworkID, studentID string) (*model.Answer, error) {
	query := `
	    SELECT id, description, student_id, homework_id, submitted_at
	    FROM answers
	    WHERE homework_id = $1 AND student_id = $2
	    ORDER BY submitted_at DESC, id DESC
	    LIMIT 1`

	a := &model.Answer{}
	err := r.db.QueryRowContext(ctx, query, homeworkID, studentID).Scan(
		&a.ID, &a.Description, &a.StudentID, &a.HomeworkID, &a.SubmittedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgAnswerRepository.LatestForStudent: %w", err)
	}
	return a, nil
}

func (r *pgAnswerRepository) LatestPerStudent(ctx context.Context, homeworkID string) ([]model.Answer, error) {
	// Top-1-per-student via DISTINCT ON; id breaks submitted_at ties
	// deterministically.
	query := `
	    SELECT DISTINCT ON (a.student_id)
	           a.id, a.description, a.student_id, a.homework_id, a.submitted_at,
	           s.first_name || ' ' || s.last_name AS student_name
	    FROM answers a
	    LEFT JOIN users s ON a.student_id = s.id
	    WHERE a.homework_id = $1
	    ORDER BY a.student_id, a.submitted_at DESC, a.id DESC`
	rows, err := r.db.QueryContext(ctx, query, homeworkID)
	if err != nil {
		return nil, fmt.Errorf("pgAnswerRepository.LatestPerStudent: %w", err)
	}
	defer rows.Close()

	var answers []model.Answer
	for rows.Next() {
		var a model.Answer
		if err := rows.Scan(
			&a.ID, &a.Description, &a.StudentID, &a.HomeworkID, &a.SubmittedAt, &a.StudentName,
		); err != nil {
			return nil, fmt.Errorf("pgAnswerRepository.LatestPerStudent: %w", err)
		}
		answers = append(answers, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgAnswerRepository.LatestPerStudent: %w", err)
	}
	return answers, nil
}

func (r *pgAnswerRepository) ListForStudentAndHomework(ctx context.Context, homeworkID, studentID string) ([]model.Answer, error) {
	query := `
	    SELECT id, description, student_id, homework_id, submitted_at
	    FROM answers
	    WHERE homework_id = $1 AND student_id = $2
	    ORDER BY submitted_at, id`
	rows, err := r.db.QueryContext(ctx, query, homeworkID, studentID)
	if err != nil {
		return nil, fmt.Errorf("pgAnswerRepository.ListForStudentAndHomework: %w", err)
	}
	defer rows.Close()

	var answers []model.Answer
	for rows.Next() {
		var a model.Answer
		if err := rows.Scan(
			&a.ID, &a.Description, &a.StudentID, &a.HomeworkID, &a.SubmittedAt,
		); err != nil {
			return nil, fmt.Errorf("pgAnswerRepository.ListForStudentAndHomework: %w", err)
		}
		answers = append(answers, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgAnswerRepository.ListForStudentAndHomework: %w", err)
	}
	return answers, nil
}

func (r *pgAnswerRepository) HasAnswered(ctx context.Context, homeworkID, studentID string) (bool, error) {
	query := `SELECT EXISTS (
	            SELECT 1 FROM answers WHERE homework_id = $1 AND student_id = $2
	          )`
	var answered bool
	if err := r.db.QueryRowContext(ctx, query, homeworkID, studentID).Scan(&answered); err != nil {
		return false, fmt.Errorf("pgAnswerRepository.HasAnswered: %w", err)
	}
	return answered, nil
}

func (r *pgAnswerRepository) AnsweredStudentIDs(ctx context.Context, homeworkID string) ([]string, error) {
	query := `SELECT DISTINCT student_id FROM answers WHERE homework_id = $1`
	rows, err := r.db.QueryContext(ctx, query, homeworkID)
	if err != nil {
		return nil, fmt.Errorf("pgAnswerRepository.AnsweredStudentIDs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("pgAnswerRepository.AnsweredStudentIDs: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgAnswerRepository.AnsweredStudentIDs: %w", err)
	}
	return ids, nil
}
