package model

import "time"

// Answer is a student's submission for a homework. Rows are append-only:
// resubmission creates a new row, and "latest" means highest submitted_at
// with ties broken by highest id.
type Answer struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	StudentID   string    `json:"student_id"`
	HomeworkID  string    `json:"homework_id"`
	SubmittedAt time.Time `json:"submitted_at"`

	StudentName *string `json:"student_name,omitempty"` // For display
}
