package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"diary-backend/internal/shared/apperror"
	"diary-backend/internal/shared/response"
)

func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if p := recover(); p != nil {
				log.Error().
					Str("request_id", c.GetString(requestIDKey)).
					Interface("error", p).
					Msg("Panic recovered")

				response.Abort(c, apperror.Internal("Internal server error", fmt.Errorf("panic: %v", p)))
			}
		}()

		c.Next()
	}
}
