package controller

import (
	"errors"
	"net/http"

	"healmymind_backend/internal/scoring"
	"healmymind_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto the response envelope.
func respondError(ctx *gin.Context, err error) {
	var verr *scoring.ValidationError
	var derr *scoring.DefinitionError

	switch {
	case errors.As(err, &verr):
		util.ErrorWithData(ctx, http.StatusBadRequest, "Invalid answers", gin.H{
			"violations": verr.Violations,
			"detail":     verr.Error(),
		})
	case errors.As(err, &derr):
		util.ErrorWithData(ctx, http.StatusBadRequest, "Invalid test definition", gin.H{
			"problems": derr.Problems(),
		})
	case errors.Is(err, util.ErrTestNotFound), errors.Is(err, util.ErrResultNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrTestNotPublished):
		util.Error(ctx, http.StatusForbidden, "Test is not published")
	default:
		util.LogInternalError(ctx, err)
	}
}
