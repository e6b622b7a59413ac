package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/adbroker-backend/internal/domain/aggregates"
	"github.com/yungbote/adbroker-backend/internal/platform/apierr"
)

type APIError struct {
	Message string         `json:"message"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondErr maps handler and domain errors onto a status. Validation failures
// carry their rule and details; server-side failures get a generic message and
// their cause is attached to the gin context for the request log.
func RespondErr(c *gin.Context, err error) {
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		RespondError(c, apiErr.Status, apiErr.Code, apiErr.Err)
		return
	}
	agg, ok := domainagg.As(err)
	if !ok {
		_ = c.Error(err)
		RespondError(c, http.StatusInternalServerError, string(domainagg.CodeInternal), errors.New("internal error"))
		return
	}
	switch agg.Code {
	case domainagg.CodeValidation:
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: APIError{Message: agg.Message, Code: agg.Rule, Details: agg.Details}})
	case domainagg.CodeNotFound:
		RespondError(c, http.StatusNotFound, string(agg.Code), errors.New(agg.Message))
	case domainagg.CodeConflict:
		_ = c.Error(err)
		RespondError(c, http.StatusConflict, string(agg.Code), errors.New("the resource changed concurrently, retry the request"))
	case domainagg.CodeClassificationUnavailable:
		_ = c.Error(err)
		RespondError(c, http.StatusBadGateway, string(agg.Code), errors.New("classification service unavailable"))
	default:
		_ = c.Error(err)
		RespondError(c, http.StatusInternalServerError, string(domainagg.CodeInternal), errors.New("internal error"))
	}
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
