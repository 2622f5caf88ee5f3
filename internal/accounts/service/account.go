package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/minhkq1998/SampleJWT/internal/accounts/domain"
	"github.com/minhkq1998/SampleJWT/internal/accounts/store"
	"github.com/minhkq1998/SampleJWT/pkg/cryptox"
	"github.com/minhkq1998/SampleJWT/pkg/slogx"
)

var (
	// ErrBadCredentials covers both unknown usernames and wrong passwords so
	// responses cannot be used to enumerate accounts.
	ErrBadCredentials = errors.New("bad credentials")

	ErrIDTaken       = errors.New("id already taken")
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already in use")
	ErrUserNotFound  = errors.New("user not found")
	ErrInvalidToken  = errors.New("invalid token")
)

// dummyHash is verified against when the username lookup misses, so the
// unknown-username and wrong-password paths cost roughly the same.
const dummyHash = "$argon2id$v=19$m=19456,t=2,p=1$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// AccountService orchestrates sign-in, sign-up, edit and delete against the
// user store and the token service.
type AccountService struct {
	Store  store.Store
	Tokens *TokenService
}

// SignInResult is returned on a successful sign-in.
type SignInResult struct {
	Token string
	User  domain.User
}

// SignIn verifies the credentials and issues a bearer token. Both an unknown
// username and a wrong password return ErrBadCredentials.
func (s *AccountService) SignIn(ctx context.Context, username, password string) (SignInResult, error) {
	log := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = cryptox.VerifyPassword(password, dummyHash)
			return SignInResult{}, ErrBadCredentials
		}
		return SignInResult{}, fmt.Errorf("load user: %w", err)
	}

	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return SignInResult{}, ErrBadCredentials
		}
		return SignInResult{}, fmt.Errorf("verify password: %w", err)
	}

	token, err := s.Tokens.Issue(u)
	if err != nil {
		return SignInResult{}, fmt.Errorf("issue token: %w", err)
	}

	log.Info("user signed in", "user_id", u.ID)
	return SignInResult{Token: token, User: u}, nil
}

// SignUp creates a new account. Uniqueness checks run in the order id,
// username, email; the first violation wins. The checks and the insert share
// one transaction, and the schema's UNIQUE constraints backstop anything that
// races past them, so two concurrent sign-ups for the same identity cannot
// both succeed.
func (s *AccountService) SignUp(ctx context.Context, id int64, username, email, password string) error {
	log := slogx.FromContext(ctx)

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		users := tx.Users()

		if taken, err := users.ExistsByID(ctx, id); err != nil {
			return err
		} else if taken {
			return ErrIDTaken
		}
		if taken, err := users.ExistsByUsername(ctx, username); err != nil {
			return err
		} else if taken {
			return ErrUsernameTaken
		}
		if taken, err := users.ExistsByEmail(ctx, email); err != nil {
			return err
		} else if taken {
			return ErrEmailTaken
		}

		return mapStoreConflict(users.CreateUser(ctx, domain.User{
			ID:           id,
			Username:     username,
			Email:        email,
			PasswordHash: hash,
		}))
	})
	if err != nil {
		return err
	}

	log.Info("user registered", "user_id", id)
	return nil
}

// Edit updates username and/or email for the account with the given id. The
// token must verify, but its subject is not matched against the target id:
// any holder of a valid token may edit any account. Empty fields are left
// unchanged; a non-empty field that collides with a different account returns
// the corresponding conflict error. The write is a field-level update inside
// the same transaction as the checks.
func (s *AccountService) Edit(ctx context.Context, id int64, token, newUsername, email string) error {
	log := slogx.FromContext(ctx)

	if !s.Tokens.Validate(token) {
		return ErrInvalidToken
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		users := tx.Users()

		u, err := users.GetUserByID(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if newUsername != "" && newUsername != u.Username {
			if taken, err := users.ExistsByUsername(ctx, newUsername); err != nil {
				return err
			} else if taken {
				return ErrUsernameTaken
			}
			u.Username = newUsername
		}
		if email != "" && email != u.Email {
			if taken, err := users.ExistsByEmail(ctx, email); err != nil {
				return err
			} else if taken {
				return ErrEmailTaken
			}
			u.Email = email
		}

		return mapStoreConflict(users.UpdateUser(ctx, id, u.Username, u.Email))
	})
	if err != nil {
		return err
	}

	log.Info("user updated", "user_id", id)
	return nil
}

// Delete removes the account with the given id. No token is required.
func (s *AccountService) Delete(ctx context.Context, id int64) error {
	log := slogx.FromContext(ctx)

	err := s.Store.Users().DeleteUser(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	log.Info("user deleted", "user_id", id)
	return nil
}

// mapStoreConflict translates the store's constraint sentinels into the
// service error taxonomy. The store only reports these when a concurrent
// writer slipped past the existence checks.
func mapStoreConflict(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrIDTaken):
		return ErrIDTaken
	case errors.Is(err, store.ErrUsernameTaken):
		return ErrUsernameTaken
	case errors.Is(err, store.ErrEmailTaken):
		return ErrEmailTaken
	case errors.Is(err, store.ErrNotFound):
		return ErrUserNotFound
	default:
		return err
	}
}
