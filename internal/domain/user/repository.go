package user

import (
	"context"
)

// Repository 用户仓储接口
// 接口定义在domain层（依赖倒置），实现在infrastructure/persistence/mysql
type Repository interface {
	// Create 创建用户
	// 邮箱唯一索引冲突时返回errors.ErrEmailDuplicate
	Create(ctx context.Context, user *User) error

	// FindByID 根据ID查找用户
	FindByID(ctx context.Context, id uint) (*User, error)

	// FindByEmail 根据邮箱查找用户
	FindByEmail(ctx context.Context, email string) (*User, error)

	// Update 更新用户信息
	Update(ctx context.Context, user *User) error
}
