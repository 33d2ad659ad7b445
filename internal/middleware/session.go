package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const sessionCookie = "converter_session"

// SessionManager remembers a browser's current conversion through a signed
// cookie, so a page reload can find its way back to the task it started.
type SessionManager struct {
	secret string
	ttl    time.Duration
}

type taskClaims struct {
	TaskID string `json:"taskId"`
	jwt.RegisteredClaims
}

func NewSessionManager(secret string) *SessionManager {
	return &SessionManager{secret: secret, ttl: 24 * time.Hour}
}

// Issue binds taskID to the caller through a signed session cookie.
func (m *SessionManager) Issue(c *fiber.Ctx, taskID string) error {
	now := time.Now()
	claims := taskClaims{
		TaskID: taskID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "converter",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.secret))
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    signed,
		Expires:  now.Add(m.ttl),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

// CurrentTask returns the task ID bound to the caller's session cookie, if
// any valid one is present.
func (m *SessionManager) CurrentTask(c *fiber.Ctx) (string, bool) {
	value := c.Cookies(sessionCookie)
	if value == "" {
		return "", false
	}

	token, err := jwt.ParseWithClaims(value, &taskClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(m.secret), nil
	})
	if err != nil {
		return "", false
	}

	claims, ok := token.Claims.(*taskClaims)
	if !ok || !token.Valid || claims.TaskID == "" {
		return "", false
	}
	return claims.TaskID, true
}

// Clear drops the session cookie.
func (m *SessionManager) Clear(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
