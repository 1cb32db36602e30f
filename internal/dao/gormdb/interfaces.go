package gormdb

// UserRepository 用户数据访问接口
type UserRepository interface {
	// FindByID 根据 id 查找用户
	FindByID(id int64) (*UserEntity, error)
	// FindByUsername 根据用户名查找用户
	FindByUsername(username string) (*UserEntity, error)
	// FindByEmail 根据邮箱查找用户
	FindByEmail(email string) (*UserEntity, error)
	// FindByIDs 批量查找用户
	FindByIDs(ids []int64) ([]UserEntity, error)
	// ExistsByUsernameOrEmail 用户名或邮箱是否已被占用
	ExistsByUsernameOrEmail(username, email string) (bool, error)
	// Create 创建新用户
	Create(user *UserEntity) error
	// Update 保存用户的全部字段
	Update(user *UserEntity) error
	// Delete 删除用户
	Delete(id int64) error
}

// PostRepository 帖子数据访问接口
// 列表查询按创建时间倒序，且不读取图片数据
type PostRepository interface {
	FindAll() ([]PostEntity, error)
	FindByUserID(userID int64) ([]PostEntity, error)
	FindByItemType(itemType string) ([]PostEntity, error)
	// FindByID 包含图片数据
	FindByID(id int64) (*PostEntity, error)
	Create(post *PostEntity) error
	// UpdateContent 只更新内容与分类
	UpdateContent(id int64, itemType, content string) error
	Delete(id int64) error
	DeleteByUserID(userID int64) error
}

// MessageRepository 私信数据访问接口
type MessageRepository interface {
	Create(msg *MessageEntity) error
	FindByID(id int64) (*MessageEntity, error)
	// FindBetween 两个用户之间的双向消息，按时间升序
	FindBetween(userOneID, userTwoID int64) ([]MessageEntity, error)
	// FindInvolving 与某用户相关的全部消息，按时间倒序
	FindInvolving(userID int64) ([]MessageEntity, error)
	MarkRead(id int64) error
	DeleteByUserID(userID int64) error
}
