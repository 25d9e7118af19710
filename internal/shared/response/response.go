package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"diary-backend/internal/shared/apperror"
)

// Response is the JSON envelope every endpoint returns.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewMeta computes total_pages for a page of results.
func NewMeta(page, limit int, total int64) *Meta {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return &Meta{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

func Success(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func SuccessWithMeta(c *gin.Context, statusCode int, data interface{}, meta *Meta) {
	c.JSON(statusCode, Response{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

// JSON writes a success envelope with extra top-level fields merged in.
func JSON(c *gin.Context, statusCode int, message string, data interface{}, extra gin.H) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(statusCode, body)
}

// Error maps err to its status code and writes the failure envelope.
// Internal causes are logged, never returned to the client.
func Error(c *gin.Context, err error) {
	appErr := apperror.As(err)
	status := appErr.Kind.HTTPStatus()

	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("request_id", c.GetString("request_id")).
			Str("path", c.FullPath()).
			Msg("request failed")
	}

	body := gin.H{
		"success": false,
		"message": appErr.Message,
		"code":    appErr.Code,
	}
	if appErr.Details != nil {
		body["errors"] = appErr.Details
	}
	for k, v := range appErr.Extra {
		body[k] = v
	}
	c.JSON(status, body)
}

// Abort is Error for middleware: it also stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

func BadRequest(c *gin.Context, message string, details interface{}) {
	Error(c, apperror.New(apperror.KindBadRequest, "BAD_REQUEST", message).WithDetails(details))
}
