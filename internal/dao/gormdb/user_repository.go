package gormdb

import "gorm.io/gorm"

type userRepository struct {
	db *gorm.DB
}

// FindByID 按 id 查找用户
func (r *userRepository) FindByID(id int64) (*UserEntity, error) {
	var user UserEntity
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户 id=%d", id)
	}
	return &user, nil
}

// FindByUsername 按用户名查找用户
func (r *userRepository) FindByUsername(username string) (*UserEntity, error) {
	var user UserEntity
	if err := r.db.First(&user, "username = ?", username).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户 username=%s", username)
	}
	return &user, nil
}

// FindByEmail 按邮箱查找用户
func (r *userRepository) FindByEmail(email string) (*UserEntity, error) {
	var user UserEntity
	if err := r.db.First(&user, "email = ?", email).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户 email=%s", email)
	}
	return &user, nil
}

// FindByIDs 按 id 列表查找用户
func (r *userRepository) FindByIDs(ids []int64) ([]UserEntity, error) {
	var users []UserEntity
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, wrapDBError(err, "批量查询用户")
	}
	return users, nil
}

// ExistsByUsernameOrEmail 用户名或邮箱是否已存在
func (r *userRepository) ExistsByUsernameOrEmail(username, email string) (bool, error) {
	var count int64
	if err := r.db.Model(&UserEntity{}).Where("username = ? OR email = ?", username, email).Count(&count).Error; err != nil {
		return false, wrapDBError(err, "检查用户是否存在")
	}
	return count > 0, nil
}

// Create 创建用户
func (r *userRepository) Create(user *UserEntity) error {
	if err := r.db.Create(user).Error; err != nil {
		return wrapDBError(err, "创建用户")
	}
	return nil
}

// Update 更新用户信息
func (r *userRepository) Update(user *UserEntity) error {
	if err := r.db.Save(user).Error; err != nil {
		return wrapDBError(err, "更新用户信息")
	}
	return nil
}

// Delete 删除用户
func (r *userRepository) Delete(id int64) error {
	if err := r.db.Delete(&UserEntity{}, "id = ?", id).Error; err != nil {
		return wrapDBErrorf(err, "删除用户 id=%d", id)
	}
	return nil
}
