package kv

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/cryptox"
)

// saltKey holds the argon2 salt next to the sealed values and checkKey a
// sealed known value used to verify the passphrase. Neither is listed or
// cleared.
const (
	saltKey  = "__kv_salt"
	checkKey = "__kv_check"
)

var checkValue = []byte("gophauth")

// ErrWrongPassphrase is returned by OpenSealed when the passphrase does not
// match the one the repository was sealed with.
var ErrWrongPassphrase = errors.New("wrong storage passphrase")

func reserved(key string) bool {
	return key == saltKey || key == checkKey
}

// SealedRepository encrypts every value before handing it to the inner
// repository.
type SealedRepository struct {
	inner Repository
	key   []byte
}

// NewSealedRepository wraps inner with an already derived key.
func NewSealedRepository(inner Repository, key []byte) *SealedRepository {
	return &SealedRepository{inner: inner, key: key}
}

// OpenSealed derives the sealing key from passphrase and the salt stored in
// inner, creating the salt on first use. A passphrase that does not open the
// stored check value fails with ErrWrongPassphrase.
func OpenSealed(ctx context.Context, inner Repository, passphrase []byte) (*SealedRepository, error) {
	salt, err := inner.Get(ctx, saltKey)
	if err != nil {
		return nil, err
	}
	if salt == nil {
		salt = common.GenerateRandByteArray(cryptox.SaltSize)
		if err := inner.Set(ctx, saltKey, salt); err != nil {
			return nil, err
		}
	}
	r := NewSealedRepository(inner, cryptox.DeriveKey(passphrase, salt))

	check, err := inner.Get(ctx, checkKey)
	if err != nil {
		return nil, err
	}
	if check == nil {
		if err := r.Set(ctx, checkKey, checkValue); err != nil {
			return nil, err
		}
		return r, nil
	}
	plain, err := cryptox.Open(check, r.key)
	if err != nil || !bytes.Equal(plain, checkValue) {
		return nil, ErrWrongPassphrase
	}
	return r, nil
}

func (r *SealedRepository) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := r.inner.Get(ctx, key)
	if err != nil || sealed == nil {
		return nil, err
	}
	plain, err := cryptox.Open(sealed, r.key)
	if err != nil {
		return nil, fmt.Errorf("failed to open kv[%s]: %w", key, err)
	}
	return plain, nil
}

func (r *SealedRepository) Set(ctx context.Context, key string, value []byte) error {
	sealed, err := cryptox.Seal(value, r.key)
	if err != nil {
		return fmt.Errorf("failed to seal kv[%s]: %w", key, err)
	}
	return r.inner.Set(ctx, key, sealed)
}

func (r *SealedRepository) Delete(ctx context.Context, key string) error {
	return r.inner.Delete(ctx, key)
}

func (r *SealedRepository) MultiRemove(ctx context.Context, keys ...string) error {
	return r.inner.MultiRemove(ctx, keys...)
}

func (r *SealedRepository) List(ctx context.Context) (map[string][]byte, error) {
	all, err := r.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	delete(all, saltKey)
	delete(all, checkKey)

	out := make(map[string][]byte, len(all))
	for k, v := range all {
		plain, err := cryptox.Open(v, r.key)
		if err != nil {
			return nil, fmt.Errorf("failed to open kv[%s]: %w", k, err)
		}
		out[k] = plain
	}
	return out, nil
}

// Clear removes every sealed value but keeps the salt and check value, so
// the passphrase stays valid for the next process.
func (r *SealedRepository) Clear(ctx context.Context) error {
	all, err := r.inner.List(ctx)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(all))
	for k := range all {
		if !reserved(k) {
			keys = append(keys, k)
		}
	}
	return r.inner.MultiRemove(ctx, keys...)
}
