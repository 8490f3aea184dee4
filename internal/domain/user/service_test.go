package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/cocomart/pkg/errors"
)

// fakeUserRepo 内存用户仓储
type fakeUserRepo struct {
	nextID uint
	users  map[string]*User // email -> user
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[string]*User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, u *User) error {
	if _, ok := r.users[u.Email]; ok {
		return apperrors.ErrEmailDuplicate
	}
	u.ID = r.nextID
	r.nextID++
	cp := *u
	r.users[u.Email] = &cp
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uint) (*User, error) {
	for _, u := range r.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, u *User) error {
	r.users[u.Email] = u
	return nil
}

// TestService_Register 测试注册流程
func TestService_Register(t *testing.T) {
	t.Run("正常注册", func(t *testing.T) {
		svc := NewService(newFakeUserRepo())

		u, err := svc.Register(context.Background(), "buyer@example.com", "pass1234", "椰子买家")
		require.NoError(t, err)

		assert.NotZero(t, u.ID)
		assert.Equal(t, RoleCustomer, u.Role, "新用户默认为customer")
		assert.NotEqual(t, "pass1234", u.Password, "密码不能明文存储")
		assert.NoError(t, svc.ValidatePassword(u.Password, "pass1234"))
	})

	t.Run("邮箱格式不正确", func(t *testing.T) {
		svc := NewService(newFakeUserRepo())
		for _, email := range []string{"", "not-an-email", "a@b", "user@.com"} {
			_, err := svc.Register(context.Background(), email, "pass1234", "买家")
			assert.Error(t, err, "email=%q", email)
		}
	})

	t.Run("密码强度不足", func(t *testing.T) {
		svc := NewService(newFakeUserRepo())
		for _, password := range []string{
			"short1",                // 太短
			"12345678",              // 无字母
			"abcdefgh",              // 无数字
			"a1234567890123456789x", // 超过20位
		} {
			_, err := svc.Register(context.Background(), "buyer@example.com", password, "买家")
			assert.ErrorIs(t, err, apperrors.ErrWeakPassword, "password=%q", password)
		}
	})

	t.Run("邮箱已被注册", func(t *testing.T) {
		svc := NewService(newFakeUserRepo())

		_, err := svc.Register(context.Background(), "buyer@example.com", "pass1234", "买家甲")
		require.NoError(t, err)

		_, err = svc.Register(context.Background(), "buyer@example.com", "pass5678", "买家乙")
		assert.ErrorIs(t, err, apperrors.ErrEmailDuplicate)
	})
}

// TestService_Login 测试登录流程
func TestService_Login(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)

	registered, err := svc.Register(context.Background(), "buyer@example.com", "pass1234", "椰子买家")
	require.NoError(t, err)

	t.Run("正常登录", func(t *testing.T) {
		u, err := svc.Login(context.Background(), "buyer@example.com", "pass1234")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, u.ID)
	})

	t.Run("密码错误", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "buyer@example.com", "wrong123")
		assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)
	})

	t.Run("用户不存在", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "ghost@example.com", "pass1234")
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}

// TestUser_Contact 联系方式快照来源
func TestUser_Contact(t *testing.T) {
	u := &User{Name: "椰子买家", Email: "buyer@example.com", Phone: "13800000000"}
	name, email, phone := u.Contact()
	assert.Equal(t, "椰子买家", name)
	assert.Equal(t, "buyer@example.com", email)
	assert.Equal(t, "13800000000", phone)
}
