package controller

import (
	"healmymind_backend/internal/service"
	"healmymind_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ResultController struct {
	TestService *service.TestService
}

func NewResultController(testService *service.TestService) *ResultController {
	return &ResultController{TestService: testService}
}

// ListResults godoc
// @Summary List my results
// @Tags Results
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/tests/results [get]
func (c *ResultController) ListResults(ctx *gin.Context) {
	claims := util.CurrentUser(ctx)
	page, limit := util.ParsePage(ctx)

	results, total, err := c.TestService.ListResults(claims.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Paged(ctx, results, total, page, limit)
}

// GetResult godoc
// @Summary Get one of my results
// @Tags Results
// @Produce json
// @Security ApiKeyAuth
// @Param resultId path int true "Result ID"
// @Success 200 {object} util.Response{data=model.TestResult}
// @Failure 404 {object} util.Response
// @Router /api/tests/results/{resultId} [get]
func (c *ResultController) GetResult(ctx *gin.Context) {
	id, ok := util.ParseIDParam(ctx, "resultId")
	if !ok {
		util.BadRequest(ctx, "Invalid result ID")
		return
	}
	claims := util.CurrentUser(ctx)

	res, err := c.TestService.GetResult(claims.UserID, id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// GetAnalysis godoc
// @Summary AI analysis of a result
// @Description Returns the stored analysis, generating it if missing
// @Tags Results
// @Produce json
// @Security ApiKeyAuth
// @Param resultId path int true "Result ID"
// @Success 200 {object} util.Response{data=service.Recommendation}
// @Failure 404 {object} util.Response
// @Router /api/tests/results/{resultId}/analysis [get]
func (c *ResultController) GetAnalysis(ctx *gin.Context) {
	id, ok := util.ParseIDParam(ctx, "resultId")
	if !ok {
		util.BadRequest(ctx, "Invalid result ID")
		return
	}
	claims := util.CurrentUser(ctx)

	rec, err := c.TestService.Analysis(ctx.Request.Context(), claims.UserID, id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, rec)
}
