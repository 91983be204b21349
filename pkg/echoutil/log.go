package echoutil

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// SessionIDKey is the key of echo.Context where the session id of the request is set.
const SessionIDKey = "footprintweb.session"

// LogHandlerFunc logs each request and its response.
//
// Responses carry the session of the request when it is bound to one.
func LogHandlerFunc(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		begin := time.Now()
		c.Logger().Infof("< request @[%s] %s %s", begin, req.Method, req.URL)

		err := next(c)

		sessionID, _ := c.Get(SessionIDKey).(string)
		if sessionID == "" {
			sessionID = "-"
		}
		c.Logger().Infof(
			"> response status = %d (for request @[%s] %s %s) session = %s in %v / error = %+v",
			c.Response().Status, begin, req.Method, req.URL, sessionID, time.Since(begin), err,
		)
		return err
	}
}

// ParseLevel tells gommon log level named loglevel.
//
// Unknown names are WARN, and ok is false.
func ParseLevel(loglevel string) (lvl log.Lvl, ok bool) {
	switch strings.ToLower(loglevel) {
	case "debug":
		return log.DEBUG, true
	case "info":
		return log.INFO, true
	case "warn", "":
		return log.WARN, true
	case "error":
		return log.ERROR, true
	case "off":
		return log.OFF, true
	default:
		return log.WARN, false
	}
}

func SetLevel(e *echo.Echo, loglevel string) {
	lvl, ok := ParseLevel(loglevel)
	e.Logger.SetLevel(lvl)
	if !ok {
		e.Logger.Warnf("unknown loglevel: %s . fall-backed to warn", loglevel)
	}
}
