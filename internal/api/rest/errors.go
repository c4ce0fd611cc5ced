package rest

import (
	"errors"
	"net/http"

	"github.com/KevinKickass/OpenAssetCore/internal/lifecycle"
	"github.com/KevinKickass/OpenAssetCore/internal/maintenance"
	"github.com/KevinKickass/OpenAssetCore/internal/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// classify maps an engine error to an HTTP status and an error code.
func classify(err error) (int, string) {
	var (
		ve *lifecycle.ValidationError
		de *lifecycle.InvalidDateRange
		se *lifecycle.SubstituteNotEligible
		te *lifecycle.InvalidStateTransition
		dc *lifecycle.DuplicateAssetCode
		sv *lifecycle.StaleVersion
		nf *lifecycle.NotFound
		ir *maintenance.InvalidReading
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.As(err, &de):
		return http.StatusBadRequest, "INVALID_DATE_RANGE"
	case errors.As(err, &se):
		return http.StatusBadRequest, "SUBSTITUTE_NOT_ELIGIBLE"
	case errors.As(err, &ir):
		return http.StatusBadRequest, "INVALID_READING"
	case errors.As(err, &te):
		return http.StatusConflict, "INVALID_STATE_TRANSITION"
	case errors.As(err, &dc):
		return http.StatusConflict, "DUPLICATE_ASSET_CODE"
	case errors.As(err, &sv):
		return http.StatusConflict, "STALE_VERSION"
	case errors.As(err, &nf):
		return http.StatusNotFound, "NOT_FOUND"
	default:
		return http.StatusInternalServerError, "STORE_FAILURE"
	}
}

func userMessage(err error) string {
	var ue lifecycle.UserError
	if errors.As(err, &ue) {
		return ue.UserMessage()
	}
	return err.Error()
}

func fieldErrors(err error) []lifecycle.FieldError {
	var ve *lifecycle.ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	var de *lifecycle.InvalidDateRange
	if errors.As(err, &de) {
		return []lifecycle.FieldError{{Field: de.Field, Message: de.UserMessage()}}
	}
	var ir *maintenance.InvalidReading
	if errors.As(err, &ir) {
		return []lifecycle.FieldError{{Field: ir.Field, Message: ir.Message}}
	}
	return nil
}

// respondError writes an engine error in the application API envelope.
func (s *Server) respondError(c *gin.Context, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		_ = c.Error(err)
	}

	resp := types.NewErrorResponse(code, userMessage(err), nil)
	if fields := fieldErrors(err); len(fields) > 0 {
		names := make([]string, 0, len(fields))
		for _, f := range fields {
			names = append(names, f.Field)
		}
		resp = resp.WithFields(names...)
		resp.Error.Details = fields
	}
	c.JSON(status, resp)
}

func badRequest(c *gin.Context, message string, details any) {
	c.JSON(http.StatusBadRequest, types.NewErrorResponse("BAD_REQUEST", message, details))
}

func appReject(c *gin.Context, status int, message string) {
	code := "UNAUTHORIZED"
	if status == http.StatusTooManyRequests {
		code = "RATE_LIMITED"
	}
	c.JSON(status, types.NewErrorResponse(code, message, nil))
}
