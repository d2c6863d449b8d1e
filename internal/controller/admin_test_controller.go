package controller

import (
	"bytes"
	"fmt"
	"net/http"

	"healmymind_backend/internal/model"
	"healmymind_backend/internal/service"
	"healmymind_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// AdminTestController manages test definitions. Every write is compiled
// first, so a test with broken scoring ranges never reaches the database.
type AdminTestController struct {
	TestService       *service.TestService
	StatisticsService *service.StatisticsService
	ExportService     *service.ExportService
}

func NewAdminTestController(ts *service.TestService, ss *service.StatisticsService, es *service.ExportService) *AdminTestController {
	return &AdminTestController{TestService: ts, StatisticsService: ss, ExportService: es}
}

type OptionRequest struct {
	Text  string `json:"text" binding:"required"`
	Value int    `json:"value"`
	Order *int   `json:"order"`
}

type QuestionRequest struct {
	Text    string          `json:"text" binding:"required"`
	Order   *int            `json:"order"`
	Options []OptionRequest `json:"options" binding:"required,dive"`
}

type ScoringRangeRequest struct {
	MinScore    int    `json:"minScore"`
	MaxScore    int    `json:"maxScore"`
	Severity    string `json:"severity" binding:"required"`
	Description string `json:"description"`
}

// swagger:model TestRequest
type TestRequest struct {
	Name          string                `json:"name" binding:"required"`
	Description   string                `json:"description"`
	TestType      string                `json:"testType" binding:"required"`
	Instructions  string                `json:"instructions"`
	EstimatedTime int                   `json:"estimatedTime"`
	IsPublished   *bool                 `json:"isPublished"`
	Questions     []QuestionRequest     `json:"questions" binding:"required,dive"`
	ScoringRanges []ScoringRangeRequest `json:"scoringRanges" binding:"required,dive"`
}

// orderOr returns the supplied order, or the 1-based list position when it
// was omitted. Zero is a valid supplied order.
func orderOr(order *int, index int) int {
	if order == nil {
		return index + 1
	}
	return *order
}

// Model converts the request. Missing orders default to list position.
func (r *TestRequest) Model() *model.Test {
	t := &model.Test{
		Name:          r.Name,
		Description:   r.Description,
		TestType:      r.TestType,
		Instructions:  r.Instructions,
		EstimatedTime: r.EstimatedTime,
		IsPublished:   true,
	}
	if r.IsPublished != nil {
		t.IsPublished = *r.IsPublished
	}
	for i, q := range r.Questions {
		mq := model.Question{Text: q.Text, Order: orderOr(q.Order, i)}
		for j, o := range q.Options {
			mq.Options = append(mq.Options, model.Option{Text: o.Text, Value: o.Value, Order: orderOr(o.Order, j)})
		}
		t.Questions = append(t.Questions, mq)
	}
	for _, sr := range r.ScoringRanges {
		t.ScoringRanges = append(t.ScoringRanges, model.ScoringRange{
			MinScore:    sr.MinScore,
			MaxScore:    sr.MaxScore,
			Severity:    sr.Severity,
			Description: sr.Description,
		})
	}
	return t
}

// CreateTest godoc
// @Summary Create a test
// @Tags Admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body TestRequest true "Test definition"
// @Success 201 {object} util.Response{data=model.Test}
// @Failure 400 {object} util.Response "Invalid definition; data.problems lists every defect"
// @Router /api/admin/tests [post]
func (c *AdminTestController) CreateTest(ctx *gin.Context) {
	var req TestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	t := req.Model()
	if err := c.TestService.CreateTest(ctx.Request.Context(), t); err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, t)
}

// UpdateTest godoc
// @Summary Replace a test definition
// @Tags Admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Test ID"
// @Param body body TestRequest true "Test definition"
// @Success 200 {object} util.Response{data=model.Test}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/admin/tests/{id} [put]
func (c *AdminTestController) UpdateTest(ctx *gin.Context) {
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "Invalid test ID")
		return
	}
	var req TestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	t := req.Model()
	t.ID = id
	if err := c.TestService.UpdateTest(ctx.Request.Context(), t); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, t)
}

// DeleteTest godoc
// @Summary Delete a test
// @Tags Admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Test ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/admin/tests/{id} [delete]
func (c *AdminTestController) DeleteTest(ctx *gin.Context) {
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "Invalid test ID")
		return
	}
	if err := c.TestService.DeleteTest(ctx.Request.Context(), id); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// CheckTest godoc
// @Summary Check a test definition without saving it
// @Tags Admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body TestRequest true "Test definition"
// @Success 200 {object} util.Response{data=object}
// @Failure 400 {object} util.Response
// @Router /api/admin/tests/check [post]
func (c *AdminTestController) CheckTest(ctx *gin.Context) {
	var req TestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	def, err := c.TestService.CheckTest(req.Model())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"valid":    true,
		"minScore": def.MinScore(),
		"maxScore": def.MaxScore(),
		"ranges":   def.Ranges(),
	})
}

// GetStatistics godoc
// @Summary Result statistics for a test
// @Tags Admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Test ID"
// @Success 200 {object} util.Response{data=service.TestStatistics}
// @Failure 404 {object} util.Response
// @Router /api/admin/tests/{id}/statistics [get]
func (c *AdminTestController) GetStatistics(ctx *gin.Context) {
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "Invalid test ID")
		return
	}
	st, err := c.StatisticsService.ForTest(id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, st)
}

// ExportResults godoc
// @Summary Export a test's results as XLSX
// @Tags Admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security ApiKeyAuth
// @Param id path int true "Test ID"
// @Success 200 {file} file
// @Failure 404 {object} util.Response
// @Router /api/admin/tests/{id}/results/export [get]
func (c *AdminTestController) ExportResults(ctx *gin.Context) {
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "Invalid test ID")
		return
	}

	var buf bytes.Buffer
	name, err := c.ExportService.ExportResults(id, &buf)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	ctx.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
