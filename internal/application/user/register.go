package user

import (
	"context"

	"github.com/xiebiao/cocomart/internal/domain/user"
)

// RegisterUseCase 用户注册用例
// 校验、加密逻辑在domain层的user.Service中,用例只做编排
type RegisterUseCase struct {
	userService user.Service
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(userService user.Service) *RegisterUseCase {
	return &RegisterUseCase{userService: userService}
}

// Execute 执行注册
func (uc *RegisterUseCase) Execute(ctx context.Context, email, password, name string) (*user.User, error) {
	return uc.userService.Register(ctx, email, password, name)
}
