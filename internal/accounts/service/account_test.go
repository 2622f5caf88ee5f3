package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/minhkq1998/SampleJWT/internal/accounts/store/drivers/sqlite"
	"github.com/minhkq1998/SampleJWT/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret-test-secret-test-secret!")

func newTestService(t *testing.T) *AccountService {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewSignerHS256(testSecret)
	require.NoError(t, err)
	verifier, err := jwtx.NewVerifierHS256(testSecret, "accounts-test")
	require.NoError(t, err)

	return &AccountService{
		Store: st,
		Tokens: &TokenService{
			Signer:   signer,
			Verifier: verifier,
			Issuer:   "accounts-test",
			TTL:      time.Hour,
		},
	}
}

func mustSignUp(t *testing.T, s *AccountService, id int64, username, email, password string) {
	t.Helper()
	require.NoError(t, s.SignUp(context.Background(), id, username, email, password))
}

func TestSignUpThenSignIn(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	mustSignUp(t, s, 1, "alice", "a@x.com", "secret123")

	result, err := s.SignIn(ctx, "alice", "secret123")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	require.Equal(t, int64(1), result.User.ID)
	require.Equal(t, "alice", result.User.Username)
	require.Equal(t, "a@x.com", result.User.Email)

	// The token's subject is the username.
	claims, err := s.Tokens.Verifier.Verify(result.Token)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Subject)
	require.Equal(t, int64(1), claims.UID)
}

func TestSignInFailureIsGeneric(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	mustSignUp(t, s, 1, "alice", "a@x.com", "secret123")

	_, wrongPassword := s.SignIn(ctx, "alice", "not-the-password")
	_, unknownUser := s.SignIn(ctx, "nobody", "secret123")

	// Both failure modes collapse to the same error so responses cannot be
	// used to enumerate usernames.
	require.ErrorIs(t, wrongPassword, ErrBadCredentials)
	require.ErrorIs(t, unknownUser, ErrBadCredentials)
	require.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestSignUpConflictPrecedence(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	mustSignUp(t, s, 1, "alice", "a@x.com", "secret123")

	t.Run("id wins over username and email", func(t *testing.T) {
		err := s.SignUp(ctx, 1, "alice", "a@x.com", "secret123")
		require.ErrorIs(t, err, ErrIDTaken)
	})

	t.Run("username wins over email", func(t *testing.T) {
		err := s.SignUp(ctx, 2, "alice", "a@x.com", "secret123")
		require.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("email reported last", func(t *testing.T) {
		err := s.SignUp(ctx, 2, "bob", "a@x.com", "secret123")
		require.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("conflicting sign-ups write nothing", func(t *testing.T) {
		n, err := s.Store.Users().CountUsers(ctx)
		require.NoError(t, err)
		require.Equal(t, int64(1), n)
	})
}

func TestEditRequiresValidToken(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	mustSignUp(t, s, 1, "alice", "a@x.com", "secret123")

	require.ErrorIs(t, s.Edit(ctx, 1, "", "alice2", ""), ErrInvalidToken)
	require.ErrorIs(t, s.Edit(ctx, 1, "garbage", "alice2", ""), ErrInvalidToken)

	// An expired token is rejected the same way.
	expired, err := s.Tokens.Signer.Sign(
		jwtx.NewAccessClaims("alice", 1, "a@x.com", time.Hour, "accounts-test", time.Now().Add(-2*time.Hour)))
	require.NoError(t, err)
	require.ErrorIs(t, s.Edit(ctx, 1, expired, "alice2", ""), ErrInvalidToken)

	// Nothing changed.
	u, err := s.Store.Users().GetUserByID(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "alice", u.Username)
}

func TestEditAnyTokenEditsAnyUser(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	mustSignUp(t, s, 1, "alice", "a@x.com", "secret123")
	mustSignUp(t, s, 2, "bob", "b@x.com", "secret123")

	// The token's subject is never matched against the target id, so bob's
	// token can edit alice's record.
	bob, err := s.SignIn(ctx, "bob", "secret123")
	require.NoError(t, err)

	require.NoError(t, s.Edit(ctx, 1, bob.Token, "alice2", ""))

	u, err := s.Store.Users().GetUserByID(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "alice2", u.Username)
}

func TestEditPartialUpdates(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	mustSignUp(t, s, 1, "alice", "a@x.com", "secret123")
	signIn, err := s.SignIn(ctx, "alice", "secret123")
	require.NoError(t, err)
	token := signIn.Token

	t.Run("unknown id", func(t *testing.T) {
		require.ErrorIs(t, s.Edit(ctx, 99, token, "someone", ""), ErrUserNotFound)
	})

	t.Run("email only leaves username unchanged", func(t *testing.T) {
		require.NoError(t, s.Edit(ctx, 1, token, "", "new@x.com"))
		u, err := s.Store.Users().GetUserByID(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, "alice", u.Username)
		require.Equal(t, "new@x.com", u.Email)
	})

	t.Run("username only leaves email unchanged", func(t *testing.T) {
		require.NoError(t, s.Edit(ctx, 1, token, "alice2", ""))
		u, err := s.Store.Users().GetUserByID(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, "alice2", u.Username)
		require.Equal(t, "new@x.com", u.Email)
	})

	t.Run("conflict with another user", func(t *testing.T) {
		mustSignUp(t, s, 2, "bob", "b@x.com", "secret123")
		require.ErrorIs(t, s.Edit(ctx, 1, token, "bob", ""), ErrUsernameTaken)
		require.ErrorIs(t, s.Edit(ctx, 1, token, "", "b@x.com"), ErrEmailTaken)
	})

	t.Run("re-submitting current values is not a conflict", func(t *testing.T) {
		require.NoError(t, s.Edit(ctx, 1, token, "alice2", "new@x.com"))
	})
}

func TestEditThenSignInWithNewUsername(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	mustSignUp(t, s, 1, "alice", "a@x.com", "secret123")

	signIn, err := s.SignIn(ctx, "alice", "secret123")
	require.NoError(t, err)

	require.NoError(t, s.Edit(ctx, 1, signIn.Token, "alice2", ""))

	_, err = s.SignIn(ctx, "alice2", "secret123")
	require.NoError(t, err)

	// The old username behaves like any unknown username.
	_, err = s.SignIn(ctx, "alice", "secret123")
	require.ErrorIs(t, err, ErrBadCredentials)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	mustSignUp(t, s, 1, "alice", "a@x.com", "secret123")
	signIn, err := s.SignIn(ctx, "alice", "secret123")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, 1))

	// Everything after the delete sees an unknown id.
	require.ErrorIs(t, s.Delete(ctx, 1), ErrUserNotFound)
	require.ErrorIs(t, s.Edit(ctx, 1, signIn.Token, "alice2", ""), ErrUserNotFound)

	_, err = s.SignIn(ctx, "alice", "secret123")
	require.ErrorIs(t, err, ErrBadCredentials)
}

func TestConcurrentSignUpSameUsername(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	// Two simultaneous sign-ups for the same username must not both succeed:
	// the checks and insert share a transaction and the schema's UNIQUE
	// constraints backstop them.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = s.SignUp(ctx, int64(i+1), "alice", "a@x.com", "secret123")
		}()
	}
	wg.Wait()

	var succeeded, conflicted int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case isConflict(err):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, 1, conflicted)

	n, err := s.Store.Users().CountUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func isConflict(err error) bool {
	return errors.Is(err, ErrIDTaken) ||
		errors.Is(err, ErrUsernameTaken) ||
		errors.Is(err, ErrEmailTaken)
}
