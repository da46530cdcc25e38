// Package inmem provides in-process implementations of the repository
// interfaces, used by service and handler tests.
package inmem

import (
	"sync"

	"teacher2student/internal/domain/model"
)

type assignmentKey struct {
	homeworkID string
	studentID  string
}

type DB struct {
	sync.RWMutex
	users       map[string]*model.User
	homeworks   map[string]*model.Homework
	answers     []*model.Answer
	assignments map[assignmentKey]bool
}

func Open() *DB {
	return &DB{
		users:       make(map[string]*model.User),
		homeworks:   make(map[string]*model.Homework),
		assignments: make(map[assignmentKey]bool),
	}
}
