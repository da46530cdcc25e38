package inmem

import (
	"context"
	"fmt"
	"sort"

	"teacher2student/internal/common"
	"teacher2student/internal/domain/model"
	"teacher2student/internal/domain/repository"
)

type userRepository struct {
	db *DB
}

var _ repository.UserRepository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) Create(_ context.Context, user *model.User) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, u := range repo.db.users {
		if u.Email == user.Email {
			return fmt.Errorf("user with given email already exists: %w", common.ErrConflict)
		}
	}
	cp := *user
	repo.db.users[user.ID] = &cp
	return nil
}

func (repo *userRepository) Update(_ context.Context, user *model.User) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	existing, ok := repo.db.users[user.ID]
	if !ok {
		return common.ErrNotFound
	}
	for _, u := range repo.db.users {
		if u.ID != user.ID && u.Email == user.Email {
			return fmt.Errorf("user with given email already exists: %w", common.ErrConflict)
		}
	}
	existing.Email = user.Email
	existing.FirstName = user.FirstName
	existing.LastName = user.LastName
	return nil
}

func (repo *userRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, u := range repo.db.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (repo *userRepository) FindByID(_ context.Context, id string) (*model.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	u, ok := repo.db.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (repo *userRepository) ListByRole(_ context.Context, role string) ([]model.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var users []model.User
	for _, u := range repo.db.users {
		if u.Role == role {
			users = append(users, *u)
		}
	}
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}
