package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// userIDKey is the echo context key JWTAuth stores the caller under.
const userIDKey = "user_id"

// UserID returns the authenticated user id, or false when the request did
// not pass through JWTAuth.
func UserID(c echo.Context) (uint64, bool) {
	switch v := c.Get(userIDKey).(type) {
	case uint64:
		return v, v != 0
	case int64:
		return uint64(v), v > 0
	case float64:
		return uint64(v), v > 0
	case string:
		id, err := strconv.ParseUint(v, 10, 64)
		return id, err == nil && id != 0
	}
	return 0, false
}

// rateSubject identifies the caller in rate limit keys; "anon" when
// unauthenticated.
func rateSubject(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
