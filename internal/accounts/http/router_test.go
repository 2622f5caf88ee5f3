package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/minhkq1998/SampleJWT/internal/accounts/service"
	"github.com/minhkq1998/SampleJWT/internal/accounts/store/drivers/sqlite"
	"github.com/minhkq1998/SampleJWT/pkg/accountsdk"
	"github.com/minhkq1998/SampleJWT/pkg/httpx"
	"github.com/minhkq1998/SampleJWT/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Every test request comes from the same loopback address, so the
	// per-IP throttles would trip long before the suite finishes.
	httpx.StrictLimit = httpx.RateLimitConfig{RequestsPerWindow: 10000, Window: time.Minute, Burst: 10000}
	httpx.LenientLimit = httpx.RateLimitConfig{RequestsPerWindow: 10000, Window: time.Minute, Burst: 10000}
	os.Exit(m.Run())
}

var testSecret = []byte("router-test-secret-router-test-secret")

type testServer struct {
	*httptest.Server
	client *accountsdk.Client
	tokens *service.TokenService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewSignerHS256(testSecret)
	require.NoError(t, err)
	verifier, err := jwtx.NewVerifierHS256(testSecret, "accounts-test")
	require.NoError(t, err)

	tokens := &service.TokenService{
		Signer:   signer,
		Verifier: verifier,
		Issuer:   "accounts-test",
		TTL:      time.Hour,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := NewRouter(verifier, "test", st, logger)
	r.AccountService = &service.AccountService{Store: st, Tokens: tokens}
	r.TokenService = tokens
	r.ApplyRoutes()

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testServer{
		Server: srv,
		client: accountsdk.NewClient(srv.URL),
		tokens: tokens,
	}
}

// requireAPIError asserts that the SDK surfaced the expected status and
// server message.
func requireAPIError(t *testing.T, err error, status int, message string) {
	t.Helper()
	var apiErr *accountsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.StatusCode)
	require.Equal(t, message, apiErr.Message)
}

func TestSignUpAndSignIn(t *testing.T) {
	ctx := context.Background()
	ts := newTestServer(t)

	require.NoError(t, ts.client.SignUp(ctx, 1, "alice", "a@x.com", "secret123"))

	resp, err := ts.client.SignIn(ctx, "alice", "secret123")
	require.NoError(t, err)
	require.Equal(t, int64(1), resp.ID)
	require.Equal(t, "alice", resp.Username)
	require.Equal(t, "a@x.com", resp.Email)
	require.NotEmpty(t, resp.Token)

	claims, err := ts.tokens.Verifier.Verify(resp.Token)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Subject)
}

func TestSignInRejections(t *testing.T) {
	ctx := context.Background()
	ts := newTestServer(t)

	require.NoError(t, ts.client.SignUp(ctx, 1, "alice", "a@x.com", "secret123"))

	for _, tc := range []struct {
		name               string
		username, password string
	}{
		{"wrong password", "alice", "wrong-password"},
		{"unknown username", "nobody", "secret123"},
		{"empty username", "", "secret123"},
		{"empty password", "alice", ""},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ts.client.SignIn(ctx, tc.username, tc.password)
			requireAPIError(t, err, http.StatusBadRequest, "Error: Bad credentials")
		})
	}
}

func TestSignUpValidation(t *testing.T) {
	ctx := context.Background()
	ts := newTestServer(t)

	for _, tc := range []struct {
		name                      string
		username, email, password string
		want                      string
	}{
		{"short username", "al", "a@x.com", "secret123", "Error: Username must be between 3 and 20 characters!"},
		{"long username", "aaaaaaaaaaaaaaaaaaaaa", "a@x.com", "secret123", "Error: Username must be between 3 and 20 characters!"},
		{"bad email", "alice", "not-an-email", "secret123", "Error: Email must be a valid address of at most 50 characters!"},
		{"short password", "alice", "a@x.com", "12345", "Error: Password must be between 6 and 40 characters!"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := ts.client.SignUp(ctx, 1, tc.username, tc.email, tc.password)
			requireAPIError(t, err, http.StatusBadRequest, tc.want)
		})
	}

	t.Run("missing id", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/signup", "application/json",
			bytes.NewBufferString(`{"username":"alice","email":"a@x.com","password":"secret123"}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var msg accountsdk.MessageResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&msg))
		require.Equal(t, "Error: Please enter id", msg.Message)
	})

	t.Run("malformed body", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/signup", "application/json", bytes.NewBufferString(`{`))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestSignUpConflicts(t *testing.T) {
	ctx := context.Background()
	ts := newTestServer(t)

	require.NoError(t, ts.client.SignUp(ctx, 1, "alice", "a@x.com", "secret123"))

	for _, tc := range []struct {
		name            string
		id              int64
		username, email string
		want            string
	}{
		{"duplicate id", 1, "bob", "b@x.com", "Error: Id is already taken!"},
		{"duplicate username", 2, "alice", "b@x.com", "Error: Username is already taken!"},
		{"duplicate email", 2, "bob", "a@x.com", "Error: Email is already in use!"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := ts.client.SignUp(ctx, tc.id, tc.username, tc.email, "secret123")
			requireAPIError(t, err, http.StatusBadRequest, tc.want)
		})
	}
}

func TestEdit(t *testing.T) {
	ctx := context.Background()
	ts := newTestServer(t)

	require.NoError(t, ts.client.SignUp(ctx, 1, "alice", "a@x.com", "secret123"))
	signIn, err := ts.client.SignIn(ctx, "alice", "secret123")
	require.NoError(t, err)
	token := signIn.Token

	t.Run("invalid token reads as not found", func(t *testing.T) {
		err := ts.client.Edit(ctx, 1, "garbage", "alice2", "")
		requireAPIError(t, err, http.StatusBadRequest, "Error: User is not found!")
	})

	t.Run("unknown id", func(t *testing.T) {
		err := ts.client.Edit(ctx, 99, token, "alice2", "")
		requireAPIError(t, err, http.StatusBadRequest, "Error: User is not found!")
	})

	t.Run("rename via header token", func(t *testing.T) {
		require.NoError(t, ts.client.Edit(ctx, 1, token, "alice2", ""))

		resp, err := ts.client.SignIn(ctx, "alice2", "secret123")
		require.NoError(t, err)
		require.Equal(t, "a@x.com", resp.Email)

		_, err = ts.client.SignIn(ctx, "alice", "secret123")
		requireAPIError(t, err, http.StatusBadRequest, "Error: Bad credentials")
	})

	t.Run("token in body is accepted", func(t *testing.T) {
		body, err := json.Marshal(map[string]any{
			"id":    1,
			"token": token,
			"email": "a2@x.com",
		})
		require.NoError(t, err)

		resp, err := http.Post(ts.URL+"/edit", "application/json", bytes.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var msg accountsdk.MessageResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&msg))
		require.Equal(t, "User updated successfully!", msg.Message)
	})

	t.Run("conflict with another account", func(t *testing.T) {
		require.NoError(t, ts.client.SignUp(ctx, 2, "bob", "b@x.com", "secret123"))
		err := ts.client.Edit(ctx, 1, token, "bob", "")
		requireAPIError(t, err, http.StatusBadRequest, "Error: Username is already taken!")
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	ts := newTestServer(t)

	require.NoError(t, ts.client.SignUp(ctx, 1, "alice", "a@x.com", "secret123"))

	// No token of any kind accompanies the request.
	require.NoError(t, ts.client.Delete(ctx, 1))

	err := ts.client.Delete(ctx, 1)
	requireAPIError(t, err, http.StatusBadRequest, "Error: User is not found!")

	_, err = ts.client.SignIn(ctx, "alice", "secret123")
	requireAPIError(t, err, http.StatusBadRequest, "Error: Bad credentials")
}

func TestPublicAndProtectedRoutes(t *testing.T) {
	ctx := context.Background()
	ts := newTestServer(t)

	t.Run("root is public", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("livez is public", func(t *testing.T) {
		health, err := ts.client.Livez(ctx)
		require.NoError(t, err)
		require.Equal(t, "ok", health.Status)
	})

	t.Run("readyz reports database", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/readyz")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var health accountsdk.HealthResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
		require.NotNil(t, health.Checks)
		require.Equal(t, "ok", health.Checks.Database)
	})

	t.Run("unknown route needs a bearer token", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/internal/anything")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.NotEmpty(t, resp.Header.Get("WWW-Authenticate"))
	})

	t.Run("unknown route with a valid bearer token", func(t *testing.T) {
		require.NoError(t, ts.client.SignUp(ctx, 1, "alice", "a@x.com", "secret123"))
		signIn, err := ts.client.SignIn(ctx, "alice", "secret123")
		require.NoError(t, err)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/internal/anything", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+signIn.Token)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/signin", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	require.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "token")
}

func TestRateLimitOnCredentialRoutes(t *testing.T) {
	ctx := context.Background()

	// Pin the strict profile down for this server only; the middleware
	// captures the config at route registration.
	saved := httpx.StrictLimit
	httpx.StrictLimit = httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}
	ts := newTestServer(t)
	httpx.StrictLimit = saved

	_, _ = ts.client.SignIn(ctx, "alice", "secret123")
	_, _ = ts.client.SignIn(ctx, "alice", "secret123")

	_, err := ts.client.SignIn(ctx, "alice", "secret123")
	requireAPIError(t, err, http.StatusTooManyRequests, "Error: Too many requests!")
}
