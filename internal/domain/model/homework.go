package model

import "time"

// Homework is owned by exactly one teacher and assigned to any number of
// students through the homework_students join table. The assignment edge is
// independent of answers: unassigning a student does not touch their
// submission history.
type Homework struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Question  string    `json:"question"`
	DueDate   time.Time `json:"due_date"`
	TeacherID string    `json:"teacher_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TeacherName *string `json:"teacher_name,omitempty"` // For display
}

// RosterEntry is one student row in the teacher's assign view: every student
// account, flagged with whether they are assigned to the homework and whether
// they have submitted at least one answer for it.
type RosterEntry struct {
	Student     User `json:"student"`
	Assigned    bool `json:"assigned"`
	HasAnswered bool `json:"has_answered"`
}
