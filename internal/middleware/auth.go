// Package middleware provides the fiber middleware stack for the community API.
package middleware

import (
	"errors"
	"strconv"
	"strings"

	"racommunity/internal/models"
	"racommunity/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// userIDLocal is the fiber local holding the authenticated caller id.
const userIDLocal = "userID"

var (
	errMissingHeader = errors.New("Authorization header required")
	errHeaderFormat  = errors.New("Invalid authorization header format")
	errInvalidToken  = errors.New("Invalid or expired token")
	errMissingSub    = errors.New("Invalid token structure - missing subject")
	errInvalidSub    = errors.New("Invalid user ID in token")
)

// Authenticator validates HS256 bearer tokens issued by the identity service.
// The caller id is the token's "sub" claim.
type Authenticator struct {
	secret []byte
}

// NewAuthenticator returns an Authenticator for the shared signing secret.
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// ParseToken validates tokenString and returns the user id it carries.
func (a *Authenticator) ParseToken(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, errInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return 0, errMissingSub
	}
	id, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || id == 0 {
		return 0, errInvalidSub
	}
	return uint(id), nil
}

func bearerToken(c *fiber.Ctx) (string, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", errMissingHeader
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", errHeaderFormat
	}
	return parts[1], nil
}

func (a *Authenticator) authenticate(c *fiber.Ctx) (uint, error) {
	token, err := bearerToken(c)
	if err != nil {
		return 0, err
	}
	return a.ParseToken(token)
}

func setCaller(c *fiber.Ctx, id uint) {
	c.Locals(userIDLocal, id)
	c.SetUserContext(observability.WithUserID(c.UserContext(), id))
}

// Required rejects requests without a valid bearer token.
func (a *Authenticator) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := a.authenticate(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{
				Error: err.Error(),
				Code:  models.CodeUnauthorized,
			})
		}
		setCaller(c, id)
		return c.Next()
	}
}

// Optional records the caller when a valid token is present and otherwise
// lets the request through anonymously.
func (a *Authenticator) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id, err := a.authenticate(c); err == nil {
			setCaller(c, id)
		}
		return c.Next()
	}
}

// UserID returns the authenticated caller id, if any.
func UserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(userIDLocal).(uint)
	return id, ok && id != 0
}
