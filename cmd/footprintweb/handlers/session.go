package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	binderr "github.com/opst/footprintweb/pkg/api/errors"
	"github.com/opst/footprintweb/pkg/echoutil"
	"github.com/opst/footprintweb/pkg/repository"
	"github.com/opst/footprintweb/pkg/session"
)

const repositoryKey = "footprintweb.repository"

// Sessions binds requests to the repository of their session.
//
// Requests without a valid session cookie start a new session. The cookie is
// issued again on every request, so active sessions do not expire.
func Sessions(tokens *session.Tokens, cookie string, provider repository.Provider) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sessionID := ""
			if ck, err := c.Cookie(cookie); err == nil {
				id, err := tokens.Verify(ck.Value)
				if err != nil {
					c.Logger().Infof("session is renewed: %s", err)
				} else {
					sessionID = id
				}
			}
			if sessionID == "" {
				sessionID = session.NewID()
			}

			token, err := tokens.Issue(sessionID)
			if err != nil {
				return binderr.InternalServerError(err)
			}
			c.SetCookie(&http.Cookie{
				Name:     cookie,
				Value:    token,
				Path:     "/",
				Expires:  tokens.Expiry(),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})

			c.Set(echoutil.SessionIDKey, sessionID)
			c.Set(repositoryKey, provider.Open(sessionID))
			return next(c)
		}
	}
}

// Repository of the session of c.
func Repository(c echo.Context) (repository.Interface, error) {
	repo, ok := c.Get(repositoryKey).(repository.Interface)
	if !ok {
		return nil, binderr.InternalServerError(errors.New("request is not bound to a session"))
	}
	return repo, nil
}
