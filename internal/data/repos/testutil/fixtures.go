package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/pylearn-backend/internal/domain/user"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, username string) *user.User {
	tb.Helper()
	u := &user.User{
		ID:       uuid.New(),
		Username: username,
		Email:    username + "@example.com",
		Password: "pw",
		FullName: "Test " + username,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}
