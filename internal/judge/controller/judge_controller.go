package controller

import (
	"judgecore/internal/judge/model"
	"judgecore/internal/judge/service"
	"judgecore/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// JudgeController exposes the engine operations over HTTP.
type JudgeController struct {
	svc *service.Service
}

// NewJudgeController creates a new controller.
func NewJudgeController(svc *service.Service) *JudgeController {
	return &JudgeController{svc: svc}
}

// Submit judges a full submission with score.
func (h *JudgeController) Submit(c *gin.Context) {
	var req model.SubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, err)
		return
	}
	res := h.svc.Judge(c.Request.Context(), req.Language, req.Code, req.Cases())
	response.Success(c, res)
}

// RunOne executes the program once against a custom input.
func (h *JudgeController) RunOne(c *gin.Context) {
	var req model.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, err)
		return
	}
	res := h.svc.RunOne(c.Request.Context(), req.Language, req.Code, req.Input, req.ExpectedOutput)
	response.Success(c, res)
}

// RunBatch executes the program against several inputs, stopping at the
// first failure.
func (h *JudgeController) RunBatch(c *gin.Context) {
	var req model.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, err)
		return
	}
	res := h.svc.RunBatch(c.Request.Context(), req.Language, req.Code, req.Inputs)
	response.Success(c, res)
}
