package httperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Conflict(c *gin.Context, code, message string) {
	Write(c, http.StatusConflict, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

// WriteBusiness maps a business error kind onto an HTTP status. Anything
// that is not a BusinessError is reported as a generic internal error.
func WriteBusiness(c *gin.Context, err error) {
	be, ok := AsBusiness(err)
	if !ok {
		if IsExclusionConflict(err) {
			Conflict(c, "time_conflict", "L'employé a déjà un rendez-vous sur cette plage horaire.")
			return
		}
		Internal(c, "internal_error", "Erreur serveur.")
		return
	}

	switch be.Kind {
	case KindNotFound:
		NotFound(c, be.Code, be.Message)
	case KindConflict, KindNoAvailableEmployee:
		Conflict(c, be.Code, be.Message)
	case KindInvalidState, KindValidation:
		BadRequest(c, be.Code, be.Message)
	default:
		Internal(c, be.Code, be.Message)
	}
}
