package handler

import (
	"net/http"

	"campus_lostfound/internal/infrastructure/middleware"
	"campus_lostfound/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户请求处理器
type UserHandler struct {
	userSvc service.UserService
	cookies sessionCookies
}

// NewUserHandler 创建用户处理器实例
func NewUserHandler(userSvc service.UserService, cookies sessionCookies) *UserHandler {
	return &UserHandler{userSvc: userSvc, cookies: cookies}
}

// GetByUsername 公开资料
// GET /api/v1/users/:username
func (h *UserHandler) GetByUsername(c *gin.Context) {
	user, err := h.userSvc.GetByUsername(c.Param("username"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, user)
}

// DeleteMe 删除当前账号及其全部数据，并清除会话 Cookie
// DELETE /api/v1/users/me
func (h *UserHandler) DeleteMe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Not authenticated"})
		return
	}
	if err := h.userSvc.DeleteAccount(c.Request.Context(), userID); err != nil {
		HandleError(c, err)
		return
	}
	h.cookies.clear(c)
	HandleSuccess(c, MessageResponse{Message: "User account deleted successfully"})
}
