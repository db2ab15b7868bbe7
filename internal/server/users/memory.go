package users

import (
	"context"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[int64]*User)}
}

func (r *MemoryRepository) Create(_ context.Context, user *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.byID {
		if strings.EqualFold(u.Profile.Email, user.Profile.Email) {
			return nil, ErrEmailTaken
		}
	}

	r.nextID++
	stored := user.clone()
	stored.Profile.ID = r.nextID
	if stored.Pro != nil {
		stored.Pro.ID = r.nextID
		stored.Pro.UserID = r.nextID
	}
	r.byID[stored.Profile.ID] = stored
	return stored.clone(), nil
}

func (r *MemoryRepository) GetUserByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if strings.EqualFold(u.Profile.Email, email) {
			return u.clone(), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) GetUserByID(_ context.Context, id int64) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u.clone(), nil
}

func (r *MemoryRepository) GetUserByResetToken(_ context.Context, token string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if token != "" && u.ResetToken == token {
			return u.clone(), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) Update(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[user.Profile.ID]; !ok {
		return common.ErrorNotFound
	}
	r.byID[user.Profile.ID] = user.clone()
	return nil
}
