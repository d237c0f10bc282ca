package auth

import (
	"errors"
	"strings"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	apperrors "coinhub/internal/errors"
)

const claimsContextKey = "auth_claims"

// Outcomes reported to MiddlewareConfig.Observe.
const (
	OutcomeSuccess         = "success"
	OutcomeMissingHeader   = "missing_header"
	OutcomeMalformedHeader = "malformed_header"
	OutcomeExpired         = "expired"
	OutcomeInvalid         = "invalid"
	OutcomeFailed          = "failed"
)

// TokenVerifier validates a raw bearer token.
type TokenVerifier interface {
	Verify(token string) (*Claims, error)
}

// MiddlewareConfig configures the bearer authentication middleware.
type MiddlewareConfig struct {
	Verifier TokenVerifier
	// Observe, when set, receives one outcome per request.
	Observe func(outcome string)
}

func (cfg MiddlewareConfig) observe(outcome string) {
	if cfg.Observe != nil {
		cfg.Observe(outcome)
	}
}

// Middleware authenticates requests carrying "Authorization: Bearer <token>".
// The header shape is checked here; the token itself goes through echo-jwt
// with the TokenVerifier as parser. On success the caller's Identity is
// attached to the request context.
func Middleware(cfg MiddlewareConfig) echo.MiddlewareFunc {
	if cfg.Verifier == nil {
		panic("auth: middleware requires a token verifier")
	}

	jwtMiddleware := echojwt.WithConfig(echojwt.Config{
		ContextKey:  claimsContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return cfg.Verifier.Verify(token)
		},
		SuccessHandler: func(c echo.Context) {
			claims, ok := c.Get(claimsContextKey).(*Claims)
			if !ok {
				return
			}
			req := c.Request()
			c.SetRequest(req.WithContext(WithIdentity(req.Context(), Identity{UserID: claims.UserID})))
			cfg.observe(OutcomeSuccess)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			cause, outcome := classifyTokenError(err)
			cfg.observe(outcome)
			return unauthorized(cause)
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		guarded := jwtMiddleware(next)
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				cfg.observe(OutcomeMissingHeader)
				return unauthorized(apperrors.ErrAuthenticationRequired)
			}
			parts := strings.Split(header, " ")
			if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
				cfg.observe(OutcomeMalformedHeader)
				return unauthorized(apperrors.ErrInvalidAuthorizationFormat)
			}
			return guarded(c)
		}
	}
}

func classifyTokenError(err error) (error, string) {
	cause := err
	var parseErr *echojwt.TokenParsingError
	if errors.As(err, &parseErr) {
		cause = parseErr.Err
	}

	var extractErr *echojwt.TokenExtractionError
	switch {
	case errors.Is(cause, apperrors.ErrTokenExpired):
		return apperrors.ErrTokenExpired, OutcomeExpired
	case errors.Is(cause, apperrors.ErrTokenInvalid):
		return apperrors.ErrTokenInvalid, OutcomeInvalid
	case errors.As(err, &extractErr):
		return apperrors.ErrInvalidAuthorizationFormat, OutcomeMalformedHeader
	default:
		return apperrors.ErrAuthenticationFailed, OutcomeFailed
	}
}

func unauthorized(err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}
