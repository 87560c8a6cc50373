package conecta

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"doacin/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConecta struct {
	server        *httptest.Server
	tokenRequests atomic.Int32
	apiRequests   atomic.Int32
	tokenDelay    time.Duration

	mu        sync.Mutex
	accepted  string
	checkIns  []CheckInRequest
	selfBody  string
	lastForm  map[string]string
	lastToken string
}

func newFakeConecta(t *testing.T) *fakeConecta {
	t.Helper()
	f := &fakeConecta{selfBody: `{"balance": 250}`}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		n := f.tokenRequests.Add(1)
		f.mu.Lock()
		delay := f.tokenDelay
		f.mu.Unlock()
		time.Sleep(delay)
		assert.NoError(t, r.ParseForm())

		f.mu.Lock()
		f.lastForm = map[string]string{
			"grant_type": r.PostForm.Get("grant_type"),
			"client_id":  r.PostForm.Get("client_id"),
			"username":   r.PostForm.Get("username"),
			"password":   r.PostForm.Get("password"),
		}
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"token-%d","token_type":"bearer","expires_in":3600}`, n)
	})
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		f.apiRequests.Add(1)
		bearer := r.Header.Get("Authorization")

		f.mu.Lock()
		accepted := f.accepted
		f.lastToken = bearer
		f.mu.Unlock()

		if r.URL.Path == "/api/self" {
			if bearer != "Bearer donor-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			f.mu.Lock()
			_, _ = w.Write([]byte(f.selfBody))
			f.mu.Unlock()
			return
		}

		if accepted != "" && bearer != "Bearer "+accepted {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid token"}`))
			return
		}

		switch {
		case r.URL.Path == "/api/self/challenges":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"id": 7, "name": "Doe sangue", "requirements": [{"id": 9, "name": "Check-in"}]}]`))
		case r.Method == http.MethodPost:
			var req CheckInRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			f.mu.Lock()
			f.checkIns = append(f.checkIns, req)
			f.mu.Unlock()
			w.WriteHeader(http.StatusCreated)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeConecta) accept(token string) {
	f.mu.Lock()
	f.accepted = token
	f.mu.Unlock()
}

func (f *fakeConecta) setSelfBody(body string) {
	f.mu.Lock()
	f.selfBody = body
	f.mu.Unlock()
}

func (f *fakeConecta) setTokenDelay(d time.Duration) {
	f.mu.Lock()
	f.tokenDelay = d
	f.mu.Unlock()
}

func (f *fakeConecta) snapshot() (form map[string]string, checkIns []CheckInRequest, lastToken string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastForm, append([]CheckInRequest(nil), f.checkIns...), f.lastToken
}

func (f *fakeConecta) config() config.Config {
	return config.Config{
		ConectaBaseURL:       f.server.URL + "/",
		ConectaAuthURL:       f.server.URL + "/token",
		ConectaClientID:      "app-recife",
		ConectaUsername:      "service",
		ConectaPassword:      "secret",
		ConectaChallengeID:   "7",
		ConectaRequirementID: "9",
		ConectaTimeout:       5 * time.Second,
	}
}

func TestNew_NotConfigured(t *testing.T) {
	client := New(config.Config{})
	assert.Nil(t, client)
	assert.False(t, client.Enabled())
	assert.False(t, client.CheckInEnabled())

	assert.ErrorIs(t, client.CheckIn(context.Background(), CheckInRequest{}), ErrNotConfigured)
	_, err := client.Self(context.Background(), "token")
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = client.Challenges(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestCheckIn_PasswordGrantAndPath(t *testing.T) {
	fake := newFakeConecta(t)
	client := New(fake.config())

	err := client.CheckIn(context.Background(), CheckInRequest{Document: "111", Latitude: -8.05, Longitude: -34.89})
	require.NoError(t, err)

	form, checkIns, lastToken := fake.snapshot()
	assert.Equal(t, int32(1), fake.tokenRequests.Load())
	assert.Equal(t, map[string]string{
		"grant_type": "password",
		"client_id":  "app-recife",
		"username":   "service",
		"password":   "secret",
	}, form)
	require.Len(t, checkIns, 1)
	assert.Equal(t, "111", checkIns[0].Document)
	assert.Equal(t, "Bearer token-1", lastToken)

	// Cached token is reused.
	require.NoError(t, client.CheckIn(context.Background(), CheckInRequest{Document: "222"}))
	assert.Equal(t, int32(1), fake.tokenRequests.Load())
}

func TestCheckIn_RefreshesOnceAfterUnauthorized(t *testing.T) {
	fake := newFakeConecta(t)
	client := New(fake.config())

	require.NoError(t, client.CheckIn(context.Background(), CheckInRequest{Document: "111"}))
	fake.apiRequests.Store(0)

	// The service revokes token-1 and only accepts the next one.
	fake.accept("token-2")

	require.NoError(t, client.CheckIn(context.Background(), CheckInRequest{Document: "222"}))
	assert.Equal(t, int32(2), fake.tokenRequests.Load())
	assert.Equal(t, int32(2), fake.apiRequests.Load(), "original request plus exactly one retry")
	_, _, lastToken := fake.snapshot()
	assert.Equal(t, "Bearer token-2", lastToken)
}

func TestCheckIn_GivesUpAfterOneRetry(t *testing.T) {
	fake := newFakeConecta(t)
	fake.accept("never-issued")
	client := New(fake.config())

	err := client.CheckIn(context.Background(), CheckInRequest{Document: "111"})

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.Code)
	assert.Contains(t, statusErr.Body, "invalid token")
	assert.Equal(t, int32(2), fake.apiRequests.Load())
	assert.Equal(t, int32(2), fake.tokenRequests.Load())
}

func TestCheckIn_RequiresChallengeIDs(t *testing.T) {
	fake := newFakeConecta(t)
	cfg := fake.config()
	cfg.ConectaRequirementID = ""
	client := New(cfg)

	assert.True(t, client.Enabled())
	assert.False(t, client.CheckInEnabled())
	assert.ErrorIs(t, client.CheckIn(context.Background(), CheckInRequest{}), ErrNotConfigured)
	assert.Zero(t, fake.tokenRequests.Load())
}

func TestCurrentToken_ConcurrentCallersShareOneRefresh(t *testing.T) {
	fake := newFakeConecta(t)
	fake.setTokenDelay(50 * time.Millisecond)
	client := New(fake.config())

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Challenges(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), fake.tokenRequests.Load())
	assert.Equal(t, int32(10), fake.apiRequests.Load())
}

func TestChallenges(t *testing.T) {
	fake := newFakeConecta(t)
	client := New(fake.config())

	challenges, err := client.Challenges(context.Background())
	require.NoError(t, err)
	require.Len(t, challenges, 1)
	assert.Equal(t, "7", challenges[0].ID.String())
	require.Len(t, challenges[0].Requirements, 1)
	assert.Equal(t, "Check-in", challenges[0].Requirements[0].Name)
}

func TestSelf(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		token    string
		expected int
		errIs    error
		status   int
	}{
		{name: "numeric balance", body: `{"balance": 250}`, token: "donor-token", expected: 250},
		{name: "missing balance", body: `{"name": "Ana"}`, token: "donor-token", errIs: ErrNoBalance},
		{name: "string balance", body: `{"balance": "250"}`, token: "donor-token", errIs: ErrNoBalance},
		{name: "rejected token", body: `{}`, token: "bad", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeConecta(t)
			fake.setSelfBody(tt.body)
			client := New(fake.config())

			balance, err := client.Self(context.Background(), tt.token)

			assert.Zero(t, fake.tokenRequests.Load(), "donor token is never refreshed")
			switch {
			case tt.errIs != nil:
				assert.ErrorIs(t, err, tt.errIs)
			case tt.status != 0:
				var statusErr *StatusError
				require.ErrorAs(t, err, &statusErr)
				assert.Equal(t, tt.status, statusErr.Code)
				assert.Equal(t, int32(1), fake.apiRequests.Load())
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.expected, balance)
			}
		})
	}
}
