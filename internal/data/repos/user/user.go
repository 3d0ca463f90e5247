package user

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/pylearn-backend/internal/domain/user"
	"github.com/yungbote/pylearn-backend/internal/platform/dbctx"
	"github.com/yungbote/pylearn-backend/internal/platform/logger"
)

type UserRepo interface {
	Create(dbc dbctx.Context, users []*user.User) ([]*user.User, error)
	GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*user.User, error)
	GetByUsername(dbc dbctx.Context, username string) (*user.User, error)
	UsernameExists(dbc dbctx.Context, username string) (bool, error)
	EmailExists(dbc dbctx.Context, email string) (bool, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (ur *userRepo) Create(dbc dbctx.Context, users []*user.User) ([]*user.User, error) {
	if len(users) == 0 {
		return []*user.User{}, nil
	}
	if err := dbc.DB(ur.db).Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (ur *userRepo) GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*user.User, error) {
	var results []*user.User
	if len(userIDs) == 0 {
		return results, nil
	}
	if err := dbc.DB(ur.db).
		Where("id IN ?", userIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetByUsername returns nil, nil when no user has that username.
func (ur *userRepo) GetByUsername(dbc dbctx.Context, username string) (*user.User, error) {
	var row user.User
	if err := dbc.DB(ur.db).
		Where("username = ?", username).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (ur *userRepo) UsernameExists(dbc dbctx.Context, username string) (bool, error) {
	return ur.exists(dbc, "username = ?", username)
}

func (ur *userRepo) EmailExists(dbc dbctx.Context, email string) (bool, error) {
	return ur.exists(dbc, "email = ?", email)
}

func (ur *userRepo) exists(dbc dbctx.Context, query string, arg any) (bool, error) {
	var count int64
	if err := dbc.DB(ur.db).
		Model(&user.User{}).
		Where(query, arg).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
