package users

import (
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
)

// User is the stored account: the public profile plus credentials and the
// pending verification state.
type User struct {
	Profile models.User
	Pro     *models.Pro

	Salt     []byte
	Verifier []byte

	Code         string
	CodeExpires  time.Time
	CodeAttempts int

	ResetToken string
}

func (u *User) clone() *User {
	c := *u
	if u.Pro != nil {
		p := *u.Pro
		c.Pro = &p
	}
	c.Salt = append([]byte(nil), u.Salt...)
	c.Verifier = append([]byte(nil), u.Verifier...)
	return &c
}
