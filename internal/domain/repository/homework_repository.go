package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"teacher2student/internal/common"
	"teacher2student/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type HomeworkRepository interface {
	Create(ctx context.Context, homework *model.Homework) error
	Update(ctx context.Context, homework *model.Homework) error
	FindByID(ctx context.Context, id string) (*model.Homework, error)
	ListByTeacher(ctx context.Context, teacherID string, limit, offset int) ([]model.Homework, int, error)
	ListByAssignedStudent(ctx context.Context, studentID string) ([]model.Homework, error)

	// AssignStudent and UnassignStudent are idempotent set operations on the
	// homework_students join table.
	AssignStudent(ctx context.Context, homeworkID, studentID string) error
	UnassignStudent(ctx context.Context, homeworkID, studentID string) error
	IsAssigned(ctx context.Context, homeworkID, studentID string) (bool, error)
	AssignedStudentIDs(ctx context.Context, homeworkID string) ([]string, error)
}

type pgHomeworkRepository struct {
	db *sql.DB
}

func NewPgHomeworkRepository(db *sql.DB) HomeworkRepository {
	return &pgHomeworkRepository{db: db}
}

func (r *pgHomeworkRepository) Create(ctx context.Context, hw *model.Homework) error {
	query := `INSERT INTO homeworks (id, slug, title, question, due_date, teacher_id)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, hw.ID, hw.Slug, hw.Title, hw.Question, hw.DueDate, hw.TeacherID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint for slug
			return fmt.Errorf("homework with this slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgHomeworkRepository.Create: %w", err)
	}
	return nil
}

func (r *pgHomeworkRepository) Update(ctx context.Context, hw *model.Homework) error {
	query := `UPDATE homeworks SET
	            slug = $1, title = $2, question = $3, due_date = $4, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $5`
	_, err := r.db.ExecContext(ctx, query, hw.Slug, hw.Title, hw.Question, hw.DueDate, hw.ID)
	if err != nil {
		return fmt.Errorf("pgHomeworkRepository.Update: %w", err)
	}
	return nil
}

func (r *pgHomeworkRepository) FindByID(ctx context.Context, id string) (*model.Homework, error) {
	query := `
	    SELECT h.id, h.slug, h.title, h.question, h.due_date, h.teacher_id,
	           h.created_at, h.updated_at,
	           t.first_name || ' ' || t.last_name AS teacher_name
	    FROM homeworks h
	    LEFT JOIN users t ON h.teacher_id = t.id
	    WHERE h.id = $1`

	hw := &model.Homework{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&hw.ID, &hw.Slug, &hw.Title, &hw.Question, &hw.DueDate, &hw.TeacherID,
		&hw.CreatedAt, &hw.UpdatedAt, &hw.TeacherName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgHomeworkRepository.FindByID: %w", err)
	}
	return hw, nil
}

func (r *pgHomeworkRepository) ListByTeacher(ctx context.Context, teacherID string, limit, offset int) ([]model.Homework, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM homeworks WHERE teacher_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, teacherID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgHomeworkRepository.ListByTeacher: %w", err)
	}

	query := `
	    SELECT id, slug, title, question, due_date, teacher_id, created_at, updated_at
	    FROM homeworks
	    WHERE teacher_id = $1
	    ORDER BY created_at, id
	    LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, teacherID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("pgHomeworkRepository.ListByTeacher: %w", err)
	}
	defer rows.Close()

	homeworks, err := scanHomeworks(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("pgHomeworkRepository.ListByTeacher: %w", err)
	}
	return homeworks, total, nil
}

func (r *pgHomeworkRepository) ListByAssignedStudent(ctx context.Context, studentID string) ([]model.Homework, error) {
	query := `
	    SELECT h.id, h.slug, h.title, h.question, h.due_date, h.teacher_id, h.created_at, h.updated_at
	    FROM homeworks h
	    JOIN homework_students hs ON hs.homework_id = h.id
	    WHERE hs.student_id = $1
	    ORDER BY h.created_at, h.id`
	rows, err := r.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("pgHomeworkRepository.ListByAssignedStudent: %w", err)
	}
	defer rows.Close()

	homeworks, err := scanHomeworks(rows)
	if err != nil {
		return nil, fmt.Errorf("pgHomeworkRepository.ListByAssignedStudent: %w", err)
	}
	return homeworks, nil
}

func scanHomeworks(rows *sql.Rows) ([]model.Homework, error) {
	var homeworks []model.Homework
	for rows.Next() {
		var hw model.Homework
		if err := rows.Scan(
			&hw.ID, &hw.Slug, &hw.Title, &hw.Question, &hw.DueDate, &hw.TeacherID,
			&hw.CreatedAt, &hw.UpdatedAt,
		); err != nil {
			return nil, err
		}
		homeworks = append(homeworks, hw)
	}
	return homeworks, rows.Err()
}

func (r *pgHomeworkRepository) AssignStudent(ctx context.Context, homeworkID, studentID string) error {
	// ON CONFLICT keeps the operation idempotent under concurrent assigns.
	query := `INSERT INTO homework_students (homework_id, student_id)
	          VALUES ($1, $2) ON CONFLICT DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, homeworkID, studentID); err != nil {
		return fmt.Errorf("pgHomeworkRepository.AssignStudent: %w", err)
	}
	return nil
}

func (r *pgHomeworkRepository) UnassignStudent(ctx context.Context, homeworkID, studentID string) error {
	query := `DELETE FROM homework_students WHERE homework_id = $1 AND student_id = $2`
	if _, err := r.db.ExecContext(ctx, query, homeworkID, studentID); err != nil {
		return fmt.Errorf("pgHomeworkRepository.UnassignStudent: %w", err)
	}
	return nil
}

func (r *pgHomeworkRepository) IsAssigned(ctx context.Context, homeworkID, studentID string) (bool, error) {
	query := `SELECT EXISTS (
	            SELECT 1 FROM homework_students WHERE homework_id = $1 AND student_id = $2
	          )`
	var assigned bool
	if err := r.db.QueryRowContext(ctx, query, homeworkID, studentID).Scan(&assigned); err != nil {
		return false, fmt.Errorf("pgHomeworkRepository.IsAssigned: %w", err)
	}
	return assigned, nil
}

func (r *pgHomeworkRepository) AssignedStudentIDs(ctx context.Context, homeworkID string) ([]string, error) {
	query := `SELECT student_id FROM homework_students WHERE homework_id = $1`
	rows, err := r.db.QueryContext(ctx, query, homeworkID)
	if err != nil {
		return nil, fmt.Errorf("pgHomeworkRepository.AssignedStudentIDs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("pgHomeworkRepository.AssignedStudentIDs: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgHomeworkRepository.AssignedStudentIDs: %w", err)
	}
	return ids, nil
}
