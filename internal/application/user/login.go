package user

import (
	"context"
	"time"

	"github.com/xiebiao/cocomart/internal/domain/user"
	"github.com/xiebiao/cocomart/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/cocomart/pkg/jwt"
)

// LoginUseCase 用户登录用例
// 流程:验密 → 签发双Token → Redis记录会话
type LoginUseCase struct {
	userService   user.Service
	jwtManager    *jwt.Manager
	sessionStore  *redis.SessionStore
	sessionExpire time.Duration // 与Refresh Token有效期一致
}

// NewLoginUseCase 创建登录用例
func NewLoginUseCase(
	userService user.Service,
	jwtManager *jwt.Manager,
	sessionStore *redis.SessionStore,
	sessionExpire time.Duration,
) *LoginUseCase {
	return &LoginUseCase{
		userService:   userService,
		jwtManager:    jwtManager,
		sessionStore:  sessionStore,
		sessionExpire: sessionExpire,
	}
}

// LoginResult 登录结果
type LoginResult struct {
	User   *user.User
	Tokens *jwt.TokenPair
}

// Execute 执行登录
// clientIP用于会话审计,可为空
func (uc *LoginUseCase) Execute(ctx context.Context, email, password, clientIP string) (*LoginResult, error) {
	// 1. 验证邮箱密码
	u, err := uc.userService.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	// 2. 签发Token对
	tokens, err := uc.jwtManager.GenerateToken(u.ID, u.Email, string(u.Role))
	if err != nil {
		return nil, err
	}

	// 3. 记录会话(失败不阻断登录,会话信息只用于审计和强制下线)
	if uc.sessionStore != nil {
		_ = uc.sessionStore.SaveSession(ctx, u.ID, map[string]interface{}{
			"email":      u.Email,
			"role":       string(u.Role),
			"login_at":   time.Now().Format(time.RFC3339),
			"login_ip":   clientIP,
			"user_agent": "",
		}, uc.sessionExpire)
	}

	return &LoginResult{User: u, Tokens: tokens}, nil
}

// Logout 登出:删除会话并把Access Token拉黑
// tokenTTL为Token剩余有效期,黑名单过期后自动清理
func (uc *LoginUseCase) Logout(ctx context.Context, userID uint, accessToken string, tokenTTL time.Duration) error {
	if uc.sessionStore == nil {
		return nil
	}

	if err := uc.sessionStore.DeleteSession(ctx, userID); err != nil {
		return err
	}

	return uc.sessionStore.AddToBlacklist(ctx, accessToken, tokenTTL)
}
