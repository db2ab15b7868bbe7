package users

import (
	"context"
)

type Repository interface {
	// Create assigns the user id. It fails with ErrEmailTaken on duplicates.
	Create(ctx context.Context, user *User) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
	GetUserByResetToken(ctx context.Context, token string) (*User, error)
	Update(ctx context.Context, user *User) error
}
