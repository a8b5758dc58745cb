package httpapi

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/proposals/internal/common"
	"github.com/dmitrijs2005/proposals/internal/logging"
	"github.com/dmitrijs2005/proposals/internal/server/auth"
	"github.com/dmitrijs2005/proposals/internal/server/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// requestLogger logs one line per request and counts it. Errors from the
// chain are rendered here so the logged status is the one sent.
func requestLogger(l logging.Logger, mt *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		mt.RequestServed(c.Method(), strconv.Itoa(status))
		l.Info(requestContext(c), "request",
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"duration", time.Since(start).String(),
		)
		return nil
	}
}

// authenticate lets public paths through and requires a valid bearer
// token everywhere else. The failure reason is logged, never returned.
func authenticate(g *auth.Guard, l logging.Logger, mt *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if g.IsPublic(routePath(c)) {
			return c.Next()
		}

		id, err := g.Authenticate(c.Get(common.AuthorizationHeaderName))
		if err != nil {
			reason := authFailureReason(err)
			mt.AuthFailed(reason)
			l.Warn(requestContext(c), "authentication failed", "path", c.Path(), "reason", reason)
			return common.ErrorUnauthorized
		}

		c.SetUserContext(auth.WithIdentity(requestContext(c), id))
		return c.Next()
	}
}

// routePath returns the request path the way the router matches it, so
// the gate and the router agree on which handler a path reaches.
func routePath(c *fiber.Ctx) string {
	path := c.Path()
	cfg := c.App().Config()
	if !cfg.CaseSensitive {
		path = strings.ToLower(path)
	}
	if !cfg.StrictRouting && len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

func authFailureReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrMissingBearer):
		return "missing_bearer"
	case errors.Is(err, common.ErrTokenExpired):
		return "expired"
	case errors.Is(err, common.ErrBadSignature):
		return "bad_signature"
	case errors.Is(err, common.ErrMalformedToken):
		return "malformed"
	default:
		return "other"
	}
}

func corsMiddleware(origins []string) fiber.Handler {
	allow := strings.Join(origins, ",")
	credentials := true
	if allow == "" || strings.Contains(allow, "*") {
		allow = "*"
		credentials = false
	}

	return cors.New(cors.Config{
		AllowOrigins:     allow,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		ExposeHeaders:    common.AuthorizationHeaderName,
		AllowCredentials: credentials,
		MaxAge:           3600,
	})
}

// rateLimitAuth limits login and registration attempts per client IP.
func rateLimitAuth(max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return writeError(c, fiber.StatusTooManyRequests, "too many requests, try again later")
		},
	})
}

func identity(c *fiber.Ctx) (auth.Identity, error) {
	id, ok := auth.IdentityFrom(requestContext(c))
	if !ok {
		return auth.Identity{}, common.ErrorUnauthorized
	}
	return id, nil
}
