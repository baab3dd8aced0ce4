package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

func claimsMiddleware(allowed func(Claims) bool, roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if allowed(claims) && contextHasAnyRole(ctx, roles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

func adminMiddleware(roles ...string) echo.MiddlewareFunc {
	return claimsMiddleware(func(c Claims) bool { return c.IsAdmin }, roles...)
}

// managerMiddleware gates fleet write operations.
func managerMiddleware() echo.MiddlewareFunc {
	return claimsMiddleware(func(c Claims) bool { return c.IsAdmin || c.IsManager })
}

// accountantMiddleware gates the money endpoints.
func accountantMiddleware() echo.MiddlewareFunc {
	return claimsMiddleware(func(c Claims) bool { return c.IsAdmin || c.IsAccountant })
}

// billingReadMiddleware lets managers read invoices and expenses without write access.
func billingReadMiddleware() echo.MiddlewareFunc {
	return claimsMiddleware(func(c Claims) bool { return c.IsAdmin || c.IsAccountant || c.IsManager })
}

// staffMiddleware gates everything back-office. Drivers are served through the
// notification channel, not these endpoints.
func staffMiddleware() echo.MiddlewareFunc {
	return claimsMiddleware(func(c Claims) bool { return c.IsStaff() })
}
