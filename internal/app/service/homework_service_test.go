package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"teacher2student/internal/common"
	"teacher2student/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateHomework(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, model.RoleTeacher, "john@school.test", "John", "Teacher")

	hw, err := env.homework.CreateHomework(context.Background(), teacher.ID, CreateHomeworkRequest{
		Title:    "Homework #1",
		Question: "How are you?",
		DueDate:  "2026-09-15",
	})
	require.NoError(t, err)
	assert.Equal(t, teacher.ID, hw.TeacherID)
	assert.True(t, strings.HasPrefix(hw.Slug, "homework-1-"), "slug should derive from the title, got %q", hw.Slug)

	// Same title gets a distinct slug thanks to the id suffix.
	hw2, err := env.homework.CreateHomework(context.Background(), teacher.ID, CreateHomeworkRequest{
		Title:    "Homework #1",
		Question: "What's your name?",
		DueDate:  "2026-09-16",
	})
	require.NoError(t, err)
	assert.NotEqual(t, hw.Slug, hw2.Slug)
}

func TestCreateHomeworkValidation(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, model.RoleTeacher, "john@school.test", "John", "Teacher")

	_, err := env.homework.CreateHomework(context.Background(), teacher.ID, CreateHomeworkRequest{
		Title:    "",
		Question: "How are you?",
		DueDate:  "not-a-date",
	})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestUpdateHomeworkOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, model.RoleTeacher, "john@school.test", "John", "Teacher")
	other := env.createUser(t, model.RoleTeacher, "jane@school.test", "Jane", "Teacher")
	hw := env.createHomework(t, owner, "Homework #1")

	newTitle := "Homework #1 (revised)"
	updated, err := env.homework.UpdateHomework(ctx, owner.ID, hw.ID, UpdateHomeworkRequest{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, newTitle, updated.Title)
	assert.Equal(t, owner.ID, updated.TeacherID, "ownership never changes")

	// A teacher who passes the role check but does not own the homework is
	// still rejected.
	_, err = env.homework.UpdateHomework(ctx, other.ID, hw.ID, UpdateHomeworkRequest{Title: &newTitle})
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = env.homework.UpdateHomework(ctx, owner.ID, "no-such-id", UpdateHomeworkRequest{Title: &newTitle})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestAssignUnassignStudent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teacher := env.createUser(t, model.RoleTeacher, "john@school.test", "John", "Teacher")
	student := env.createUser(t, model.RoleStudent, "jack@school.test", "Jack", "Student")
	hw := env.createHomework(t, teacher, "Homework #1")

	require.NoError(t, env.homework.AssignStudent(ctx, teacher.ID, hw.ID, student.ID))

	homeworks, err := env.homework.ListForStudent(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, homeworks, 1)
	assert.Equal(t, hw.ID, homeworks[0].ID)

	// Assigning again is a no-op, not an error.
	require.NoError(t, env.homework.AssignStudent(ctx, teacher.ID, hw.ID, student.ID))
	homeworks, err = env.homework.ListForStudent(ctx, student.ID)
	require.NoError(t, err)
	assert.Len(t, homeworks, 1)

	require.NoError(t, env.homework.UnassignStudent(ctx, teacher.ID, hw.ID, student.ID))
	homeworks, err = env.homework.ListForStudent(ctx, student.ID)
	require.NoError(t, err)
	assert.Empty(t, homeworks)

	// Unassigning an already-unassigned student is also a no-op.
	require.NoError(t, env.homework.UnassignStudent(ctx, teacher.ID, hw.ID, student.ID))
}

func TestAssignStudentValidatesTarget(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teacher := env.createUser(t, model.RoleTeacher, "john@school.test", "John", "Teacher")
	otherTeacher := env.createUser(t, model.RoleTeacher, "jane@school.test", "Jane", "Teacher")
	student := env.createUser(t, model.RoleStudent, "jack@school.test", "Jack", "Student")
	hw := env.createHomework(t, teacher, "Homework #1")

	// Target must resolve to a student account.
	err := env.homework.AssignStudent(ctx, teacher.ID, hw.ID, "no-such-id")
	assert.ErrorIs(t, err, common.ErrNotFound)
	err = env.homework.AssignStudent(ctx, teacher.ID, hw.ID, otherTeacher.ID)
	assert.ErrorIs(t, err, common.ErrNotFound, "a teacher account is an invalid assignment target")

	// Caller must own the homework.
	err = env.homework.AssignStudent(ctx, otherTeacher.ID, hw.ID, student.ID)
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestListForTeacherPagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teacher := env.createUser(t, model.RoleTeacher, "john@school.test", "John", "Teacher")
	other := env.createUser(t, model.RoleTeacher, "jane@school.test", "Jane", "Teacher")

	for i := 0; i < 12; i++ {
		env.createHomework(t, teacher, fmt.Sprintf("Homework #%02d", i+1))
	}
	env.createHomework(t, other, "Not mine")

	page1, total, err := env.homework.ListForTeacher(ctx, teacher.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	require.Len(t, page1, 10)

	page2, total, err := env.homework.ListForTeacher(ctx, teacher.ID, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	require.Len(t, page2, 2)

	// Insertion order preserved across pages.
	assert.Equal(t, "Homework #01", page1[0].Title)
	assert.Equal(t, "Homework #12", page2[1].Title)
}

func TestRosterFlags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teacher := env.createUser(t, model.RoleTeacher, "john@school.test", "John", "Teacher")
	jack := env.createUser(t, model.RoleStudent, "jack@school.test", "Jack", "Student")
	jill := env.createUser(t, model.RoleStudent, "jill@school.test", "Jill", "Student")
	hw := env.createHomework(t, teacher, "Homework #1")

	require.NoError(t, env.homework.AssignStudent(ctx, teacher.ID, hw.ID, jack.ID))
	env.createAnswer(t, hw, jill, "Great!", time.Now().UTC())

	roster, err := env.homework.Roster(ctx, teacher.ID, hw.ID)
	require.NoError(t, err)
	require.Len(t, roster, 2)

	byID := make(map[string]model.RosterEntry)
	for _, entry := range roster {
		byID[entry.Student.ID] = entry
	}
	assert.True(t, byID[jack.ID].Assigned)
	assert.False(t, byID[jack.ID].HasAnswered)
	// Jill answered without ever being assigned; the flags are independent.
	assert.False(t, byID[jill.ID].Assigned)
	assert.True(t, byID[jill.ID].HasAnswered)
}

func TestHasAnsweredSurvivesUnassign(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teacher := env.createUser(t, model.RoleTeacher, "john@school.test", "John", "Teacher")
	student := env.createUser(t, model.RoleStudent, "jack@school.test", "Jack", "Student")
	hw := env.createHomework(t, teacher, "Homework #1")

	require.NoError(t, env.homework.AssignStudent(ctx, teacher.ID, hw.ID, student.ID))
	env.createAnswer(t, hw, student, "Great!", time.Now().UTC())
	require.NoError(t, env.homework.UnassignStudent(ctx, teacher.ID, hw.ID, student.ID))

	answered, err := env.homework.HasAnswered(ctx, hw.ID, student.ID)
	require.NoError(t, err)
	assert.True(t, answered, "answers outlive the assignment edge")
}
