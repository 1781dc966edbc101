package client

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/sheets", nil)
	for _, cookie := range (Session{GameID: "g1", PlayerID: "p1"}).Cookies() {
		req.AddCookie(cookie)
	}

	session, err := SessionFromRequest(req)
	require.NoError(t, err)
	assert.Equal(t, Session{GameID: "g1", PlayerID: "p1"}, session)
}

func TestSessionFromRequestMissingCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/sheets", nil)
	req.AddCookie(&http.Cookie{Name: CookieGameID, Value: "g1"})
	req.AddCookie(&http.Cookie{Name: CookiePlayerID, Value: "  "})

	_, err := SessionFromRequest(req)
	assert.ErrorIs(t, err, ErrNoSession)
}
