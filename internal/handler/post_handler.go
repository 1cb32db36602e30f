package handler

import (
	"io"
	"net/http"

	"campus_lostfound/internal/dto/request"
	"campus_lostfound/internal/infrastructure/middleware"
	"campus_lostfound/internal/service"
	"campus_lostfound/internal/service/post"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PostHandler 帖子请求处理器
type PostHandler struct {
	postSvc      service.PostService
	maxImageSize int64
}

// NewPostHandler 创建帖子处理器实例
func NewPostHandler(postSvc service.PostService, maxImageSize int64) *PostHandler {
	return &PostHandler{postSvc: postSvc, maxImageSize: maxImageSize}
}

// All GET /api/v1/posts/all
func (h *PostHandler) All(c *gin.Context) {
	posts, err := h.postSvc.ListAll()
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, posts)
}

// ByUser GET /api/v1/posts/user/:username，用户不存在返回 404
func (h *PostHandler) ByUser(c *gin.Context) {
	posts, err := h.postSvc.ListByUsername(c.Param("username"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, posts)
}

// ByType GET /api/v1/posts/type/:itemType
func (h *PostHandler) ByType(c *gin.Context) {
	posts, err := h.postSvc.ListByItemType(c.Param("itemType"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, posts)
}

// My GET /api/v1/posts/my
func (h *PostHandler) My(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	posts, err := h.postSvc.ListByUser(userID)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, posts)
}

// Create 发帖
// POST /api/v1/posts（multipart: itemType, content, image 可选）
// 响应: 201 与新帖子
func (h *PostHandler) Create(c *gin.Context) {
	var form request.CreatePostForm
	if err := c.ShouldBind(&form); err != nil {
		HandleParamError(c, err)
		return
	}
	image, ok := h.readImage(c)
	if !ok {
		return
	}
	userID, _ := middleware.UserID(c)
	created, err := h.postSvc.Create(userID, form, image)
	if err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// readImage 读取可选的 image 文件字段，超出大小上限返回 413
func (h *PostHandler) readImage(c *gin.Context) (*post.Image, bool) {
	header, err := c.FormFile("image")
	if err != nil {
		// 未上传图片
		return nil, true
	}
	if header.Size > h.maxImageSize {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "Image is too large"})
		return nil, false
	}
	file, err := header.Open()
	if err != nil {
		zap.L().Error("open uploaded image", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid image upload"})
		return nil, false
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, h.maxImageSize+1))
	if err != nil || int64(len(data)) > h.maxImageSize {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid image upload"})
		return nil, false
	}
	return &post.Image{Data: data, ContentType: header.Header.Get("Content-Type")}, true
}

// Update PUT /api/v1/posts/:id，非作者返回 403
func (h *PostHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req request.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	userID, _ := middleware.UserID(c)
	updated, err := h.postSvc.Update(userID, id, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, updated)
}

// Delete DELETE /api/v1/posts/:id，成功返回 204，非作者返回 403
func (h *PostHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	userID, _ := middleware.UserID(c)
	if err := h.postSvc.Delete(userID, id); err != nil {
		HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Image GET /api/v1/posts/:id/image，返回原始图片数据
func (h *PostHandler) Image(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	image, err := h.postSvc.GetImage(id)
	if err != nil {
		HandleError(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, image.ContentType, image.Data)
}
