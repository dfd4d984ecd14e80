package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"

	"github.com/cultivated-hq/pulse-service/internal/auth"
	"github.com/cultivated-hq/pulse-service/internal/services"
	"github.com/cultivated-hq/pulse-service/internal/utils"
)

const adminPrincipalKey = "admin"

// AdminAuth requires a bearer token accepted by authenticator
func AdminAuth(authenticator auth.Authenticator, logger utils.Logger) gin.HandlerFunc {
	base := NewBaseHandler(logger)
	return func(c *gin.Context) {
		token := auth.BearerToken(c.GetHeader("Authorization"))
		principal, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrNotAdmin) {
				base.handleServiceError(c, services.NewPermissionError("admin api", "access", err.Error()))
			} else {
				base.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
			}
			c.Abort()
			return
		}

		c.Set(adminPrincipalKey, principal)
		c.Next()
	}
}

// SecurityHeaders sets the standard browser hardening headers
func SecurityHeaders() gin.HandlerFunc {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	})
	return func(c *gin.Context) {
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}
		c.Next()
	}
}

// SubmitRateLimiter limits public submissions per client IP to perMinute requests
func SubmitRateLimiter(perMinute uint) gin.HandlerFunc {
	store := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: perMinute,
	})
	return ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: func(c *gin.Context, info ratelimit.Info) {
			c.Header("Retry-After", fmt.Sprintf("%.0f", time.Until(info.ResetTime).Seconds()))
			c.JSON(http.StatusTooManyRequests, ErrorResponse{
				Message: "Too many requests. Try again later.",
			})
		},
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	})
}
