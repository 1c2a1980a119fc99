package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/leadops-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error  APIError `json:"error"`
	Result any      `json:"result,omitempty"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	RespondErrorWithResult(c, status, code, err, nil)
}

// RespondErrorWithResult writes the error envelope and attaches result, for
// failures that still produced a partial outcome worth returning.
func RespondErrorWithResult(c *gin.Context, status int, code string, err error, result any) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
		Result: result,
	})
}

func RespondAPIError(c *gin.Context, err *apierr.Error, result any) {
	if err == nil {
		return
	}
	status := err.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	RespondErrorWithResult(c, status, err.Code, err.Err, result)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
