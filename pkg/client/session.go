package client

import (
	"errors"
	"net/http"
	"strings"
)

// Cookie names the login surface stores the session under.
const (
	CookieGameID   = "gameId"
	CookiePlayerID = "playerId"
)

// ErrNoSession is returned when the game or player id is missing. Callers
// redirect to the login surface when they see it.
var ErrNoSession = errors.New("client: no game session")

// Session identifies the player and game every API call is made for.
type Session struct {
	GameID   string
	PlayerID string
}

func (s Session) Valid() bool {
	return strings.TrimSpace(s.GameID) != "" && strings.TrimSpace(s.PlayerID) != ""
}

// SessionFromRequest reads the session cookies of r.
func SessionFromRequest(r *http.Request) (Session, error) {
	var session Session
	if cookie, err := r.Cookie(CookieGameID); err == nil {
		session.GameID = strings.TrimSpace(cookie.Value)
	}
	if cookie, err := r.Cookie(CookiePlayerID); err == nil {
		session.PlayerID = strings.TrimSpace(cookie.Value)
	}
	if !session.Valid() {
		return Session{}, ErrNoSession
	}
	return session, nil
}

// Cookies returns the cookies that persist s in a browser.
func (s Session) Cookies() []*http.Cookie {
	return []*http.Cookie{
		{Name: CookieGameID, Value: s.GameID, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode},
		{Name: CookiePlayerID, Value: s.PlayerID, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode},
	}
}
