package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"golang.org/x/crypto/bcrypt"
)

const adminRealm = "Secure Area"

// AdminAuth protects the admin pages with HTTP basic auth. The configured
// password may be a bcrypt hash ($2a$/$2b$/$2y$) or plain text.
func AdminAuth(username, password string) fiber.Handler {
	return basicauth.New(basicauth.Config{
		Realm: adminRealm,
		Authorizer: func(user, pass string) bool {
			ok := checkUser(username, user) && checkPassword(password, pass)
			if !ok {
				log.Warnf("[AdminAuth] Rejected credentials for user %q", user)
			}
			return ok
		},
		Unauthorized: func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="`+adminRealm+`"`)
			return c.Status(fiber.StatusUnauthorized).SendString("Authentication required")
		},
	})
}

func checkUser(expected, given string) bool {
	return subtle.ConstantTimeCompare([]byte(expected), []byte(given)) == 1
}

func checkPassword(expected, given string) bool {
	if expected == "" {
		return false
	}
	if isBcryptHash(expected) {
		return bcrypt.CompareHashAndPassword([]byte(expected), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(given)) == 1
}

func isBcryptHash(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}
