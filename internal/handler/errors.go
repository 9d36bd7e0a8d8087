package handler

import (
	"errors"

	"study-assistant/internal/service"
	"study-assistant/pkg/response"

	"github.com/gin-gonic/gin"
)

// fail 将业务错误映射为 HTTP 响应
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrWrongPassword):
		response.Unauthorized(c, "用户名或密码错误")
	case errors.Is(err, service.ErrEmailMismatch):
		response.BadRequest(c, "邮箱与账号不匹配")
	case errors.Is(err, service.ErrNotMember):
		response.Forbidden(c, "不是成员")
	case errors.Is(err, service.ErrNotCreator):
		response.Forbidden(c, "只有创建者可以执行此操作")
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrAlreadyExists):
		response.Conflict(c, err.Error())
	default:
		response.ErrorWithDetails(c, 500, "服务器内部错误", err)
	}
}
