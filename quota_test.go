package solver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBalanceServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
}

func TestRefreshBalanceFreeTier(t *testing.T) {
	server := newBalanceServer(t, `{"remaining":5}`)
	defer server.Close()

	s, err := New(testModel(server.URL))
	require.NoError(t, err)

	session := NewSession()
	require.NoError(t, s.refreshBalance(context.Background(), session))

	assert.Equal(t, 0, session.Balance)
	assert.Equal(t, 5, session.RequestsLeft)
	assert.False(t, session.APIError)
}

func TestRefreshBalanceProTier(t *testing.T) {
	server := newBalanceServer(t, `{"Balance":10,"Subscription":{"remaining":3}}`)
	defer server.Close()

	model := testModel(server.URL)
	model.APITier = TIER_PRO

	s, err := New(model)
	require.NoError(t, err)

	session := NewSession()
	require.NoError(t, s.refreshBalance(context.Background(), session))

	assert.Equal(t, 10, session.Balance)
	assert.Equal(t, 3, session.RequestsLeft)
}

func TestRefreshBalanceSoftError(t *testing.T) {
	server := newBalanceServer(t, `{"error":"daily limit reached"}`)
	defer server.Close()

	s, err := New(testModel(server.URL))
	require.NoError(t, err)

	session := NewSession()
	session.Balance = 2
	session.RequestsLeft = 7

	require.NoError(t, s.refreshBalance(context.Background(), session))

	// Counters untouched, session still usable
	assert.Equal(t, 2, session.Balance)
	assert.Equal(t, 7, session.RequestsLeft)
	assert.False(t, session.APIError)
}

func TestRefreshBalanceUnrecognizedShape(t *testing.T) {
	server := newBalanceServer(t, `{"unrelated":1}`)
	defer server.Close()

	s, err := New(testModel(server.URL))
	require.NoError(t, err)

	session := NewSession()
	session.Balance = 2
	session.RequestsLeft = 7

	require.NoError(t, s.refreshBalance(context.Background(), session))

	assert.True(t, session.APIError)
	assert.Equal(t, 2, session.Balance)
	assert.Equal(t, 7, session.RequestsLeft)
}

func TestRefreshBalanceTransportFailure(t *testing.T) {
	s, err := New(testModel("http://127.0.0.1:0"))
	require.NoError(t, err)

	session := NewSession()
	assert.ErrorIs(t, s.refreshBalance(context.Background(), session), ErrTransport)
	assert.True(t, session.APIError)
}
