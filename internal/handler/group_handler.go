package handler

import (
	"strconv"

	"study-assistant/internal/model"
	"study-assistant/internal/service"
	"study-assistant/pkg/jwt"
	"study-assistant/pkg/response"

	"github.com/gin-gonic/gin"
)

type GroupHandler struct {
	groups *service.GroupService
	study  *service.StudyService
}

func NewGroupHandler(groups *service.GroupService, study *service.StudyService) *GroupHandler {
	return &GroupHandler{groups: groups, study: study}
}

// List 当前用户所在的小组
func (h *GroupHandler) List(c *gin.Context) {
	groups := h.groups.ListForUser(jwt.GetUsername(c))
	if groups == nil {
		groups = []*model.Group{}
	}
	response.Success(c, groups)
}

// Create 创建小组
func (h *GroupHandler) Create(c *gin.Context) {
	type req struct {
		Name        string   `json:"name" binding:"required"`
		Subject     string   `json:"subject"`
		Members     []string `json:"members"`
		Description string   `json:"description"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	g, err := h.groups.Create(service.CreateGroupInput{
		Name:        r.Name,
		Creator:     jwt.GetUsername(c),
		Subject:     r.Subject,
		Members:     r.Members,
		Description: r.Description,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "小组已创建", g)
}

// Get 小组详情，仅成员可见
func (h *GroupHandler) Get(c *gin.Context) {
	g, err := h.groups.RequireMember(c.Param("name"), jwt.GetUsername(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, g)
}

// Delete 删除小组，仅创建者
func (h *GroupHandler) Delete(c *gin.Context) {
	if err := h.groups.Delete(c.Param("name"), jwt.GetUsername(c)); err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "小组已删除", nil)
}

// CreatePlan 生成学习计划并追加到小组
func (h *GroupHandler) CreatePlan(c *gin.Context) {
	type req struct {
		Title    string `json:"title" binding:"required"`
		Duration string `json:"duration"`
		Goals    string `json:"goals" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ans, err := h.study.GeneratePlan(c.Request.Context(), c.Param("name"), jwt.GetUsername(c), r.Title, r.Duration, r.Goals)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, ans)
}

// CreateDiscussion 生成讨论主题并追加到小组
func (h *GroupHandler) CreateDiscussion(c *gin.Context) {
	type req struct {
		Type string `json:"type" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ans, err := h.study.GenerateDiscussion(c.Request.Context(), c.Param("name"), jwt.GetUsername(c), r.Type)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, ans)
}

// AddComment 评论讨论，仅成员
func (h *GroupHandler) AddComment(c *gin.Context) {
	type req struct {
		Text string `json:"text" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.BadRequest(c, "invalid discussion index")
		return
	}

	name := c.Param("name")
	username := jwt.GetUsername(c)
	if _, err := h.groups.RequireMember(name, username); err != nil {
		fail(c, err)
		return
	}
	if err := h.groups.AddComment(name, index, username, r.Text); err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "评论成功", nil)
}
