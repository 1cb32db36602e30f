package request

// CreatePostForm 发帖的 multipart 表单字段，图片作为可选文件字段 image 单独上传
type CreatePostForm struct {
	ItemType string `form:"itemType" json:"itemType" binding:"required,itemtype"`
	Content  string `form:"content" json:"content" binding:"required,max=2000"`
}

// UpdatePostRequest 编辑帖子，只允许修改内容和分类
type UpdatePostRequest struct {
	Content  string `json:"content" binding:"required,max=2000"`
	ItemType string `json:"itemType" binding:"required,itemtype"`
}
