package twilio

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	c := NewClient(Config{
		AccountSID: "AC_TEST",
		AuthToken:  "token",
		From:       "whatsapp:+14155238886",
		To:         "whatsapp:+10000000000",
		BaseURL:    baseURL,
	}, zerolog.Nop())
	c.backoff = 0 // no sleeping in tests
	return c
}

func TestSend_Success(t *testing.T) {
	var gotPath string
	var gotBody string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseForm())
		gotBody = r.PostForm.Get("Body")

		user, _, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "AC_TEST", user)

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"SM123","status":"queued"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	err := client.Send("hello")
	require.NoError(t, err)
	assert.Equal(t, "/2010-04-01/Accounts/AC_TEST/Messages.json", gotPath)
	assert.Equal(t, "hello", gotBody)
}

func TestSend_ClientErrorNotRetried(t *testing.T) {
	var calls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":20003,"message":"Authentication Error"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	err := client.Send("hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Authentication Error")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "4xx must not be retried")
}

func TestSend_ServerErrorRetriedThenSucceeds(t *testing.T) {
	var calls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"message":"upstream hiccup"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"SM456","status":"queued"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	err := client.Send("hello")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSend_RetriesExhausted(t *testing.T) {
	var calls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	err := client.Send("hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestSend_NotConfigured(t *testing.T) {
	client := NewClient(Config{}, zerolog.Nop())
	assert.False(t, client.IsConfigured())

	err := client.Send("hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
