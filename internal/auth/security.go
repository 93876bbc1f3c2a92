package auth

import (
	"net/http"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	limiterpkg "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

var (
	Validate    *validator.Validate
	RateLimiter *limiterpkg.Limiter

	eventTypePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)
)

func init() {
	Validate = newValidator()
}

// InitSecurity sets up the per-IP limiter for the public tracking
// endpoints.
func InitSecurity(requestsPerMinute int64) {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 120
	}
	rate := limiterpkg.Rate{
		Period: time.Minute,
		Limit:  requestsPerMinute,
	}
	RateLimiter = limiterpkg.New(memory.NewStore(), rate)
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("event_type", validateEventType)
	return v
}

// validateEventType accepts lower-case snake_case names.
func validateEventType(fl validator.FieldLevel) bool {
	return eventTypePattern.MatchString(fl.Field().String())
}

func RateLimitMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if RateLimiter == nil {
			return next(c)
		}

		ip := c.RealIP()
		context, err := RateLimiter.Get(c.Request().Context(), ip)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": "rate limit error",
			})
		}

		if context.Reached {
			return c.JSON(http.StatusTooManyRequests, map[string]string{
				"error": "rate limit exceeded",
			})
		}

		return next(c)
	}
}
