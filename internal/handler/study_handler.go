package handler

import (
	"study-assistant/internal/service"
	"study-assistant/pkg/jwt"
	"study-assistant/pkg/response"

	"github.com/gin-gonic/gin"
)

type StudyHandler struct {
	study *service.StudyService
}

func NewStudyHandler(study *service.StudyService) *StudyHandler {
	return &StudyHandler{study: study}
}

// Explain 概念学习
func (h *StudyHandler) Explain(c *gin.Context) {
	type req struct {
		Subject string `json:"subject" binding:"required"`
		Topic   string `json:"topic" binding:"required"`
		Level   string `json:"level"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	ans, err := h.study.Explain(c.Request.Context(), jwt.GetUsername(c), r.Subject, r.Topic, r.Level)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, ans)
}

// Solve 题目解答
func (h *StudyHandler) Solve(c *gin.Context) {
	type req struct {
		Subject    string `json:"subject" binding:"required"`
		Problem    string `json:"problem" binding:"required"`
		StepByStep *bool  `json:"step_by_step"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	steps := r.StepByStep == nil || *r.StepByStep
	ans, err := h.study.Solve(c.Request.Context(), jwt.GetUsername(c), r.Subject, r.Problem, steps)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, ans)
}

// Ask 提问
func (h *StudyHandler) Ask(c *gin.Context) {
	type req struct {
		Subject      string `json:"subject" binding:"required"`
		Question     string `json:"question" binding:"required"`
		WithExamples *bool  `json:"with_examples"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	examples := r.WithExamples == nil || *r.WithExamples
	ans, err := h.study.Ask(c.Request.Context(), jwt.GetUsername(c), r.Subject, r.Question, examples)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, ans)
}

// Similar 相似题目
func (h *StudyHandler) Similar(c *gin.Context) {
	type req struct {
		Subject string `json:"subject" binding:"required"`
		Problem string `json:"problem" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	ans, err := h.study.SimilarProblems(c.Request.Context(), jwt.GetUsername(c), r.Subject, r.Problem)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, ans)
}

// Summary 学习记录统计
func (h *StudyHandler) Summary(c *gin.Context) {
	sum, err := h.study.Summary(jwt.GetUsername(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, sum)
}
