package user

import (
	"time"
)

// User 用户实体（聚合根）
// 设计说明：
// 1. 密码只存bcrypt哈希，不提供任何返回明文的方法
// 2. Role区分普通顾客和管理员（后台审核、订单管理接口需要admin）
// 3. 领域实体不带GORM tag，映射在infrastructure层处理
type User struct {
	ID        uint
	Email     string
	Password  string // bcrypt哈希值
	Name      string
	Phone     string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Role 用户角色
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// NewUser 创建新用户（工厂方法）
// hashedPassword必须是bcrypt加密后的密码
func NewUser(email, hashedPassword, name string) *User {
	now := time.Now()
	return &User{
		Email:     email,
		Password:  hashedPassword,
		Name:      name,
		Role:      RoleCustomer,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsAdmin 判断是否为管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Contact 返回用户资料中的联系方式
// 下单时若请求未提供联系方式，用该值做快照
func (u *User) Contact() (name, email, phone string) {
	return u.Name, u.Email, u.Phone
}
