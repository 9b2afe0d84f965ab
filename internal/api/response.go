package api

import (
	"net/http"

	"github.com/DillanDevs/linkedin-scraping/internal/apperr"
	"github.com/gin-gonic/gin"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Envelope wraps every response body.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

func jsonData(c *gin.Context, code int, data any) {
	c.JSON(code, Envelope{Status: statusSuccess, Data: data})
}

func jsonMessage(c *gin.Context, code int, msg string) {
	c.JSON(code, Envelope{Status: statusSuccess, Message: msg})
}

func jsonError(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, Envelope{Status: statusError, Message: msg})
}

// statusFor maps a classified error to its HTTP status.
func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusUnprocessableEntity
	case apperr.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
