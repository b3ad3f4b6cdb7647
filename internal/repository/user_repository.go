package repository

import (
	"context"
	"strings"

	"sheet_lms_backend/internal/cache"
	"sheet_lms_backend/internal/model"
	"sheet_lms_backend/internal/sheet"
)

type UserRepository struct {
	Users *Table[model.User]
}

// NewUserRepository 用户行含密码哈希，不进入共享缓存，每次直接读表
func NewUserRepository(store sheet.Store) *UserRepository {
	return &UserRepository{Users: NewTable(store, cache.Nop{}, UserSchema)}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (model.User, bool, error) {
	return r.Users.FindOne(ctx, "id", id)
}

// FindByEmail 邮箱不区分大小写，绕过缓存保证注册时的唯一性检查
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (model.User, bool, error) {
	users, err := r.Users.Fresh(ctx)
	if err != nil {
		return model.User{}, false, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range users {
		if strings.ToLower(u.Email) == email {
			return u, true, nil
		}
	}
	return model.User{}, false, nil
}

func (r *UserRepository) Create(ctx context.Context, u model.User) error {
	return r.Users.Insert(ctx, u)
}
