package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"gamenick-bot/internal/model"
)

// UserRepository handles the users table.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByTelegramID returns the user row or gorm.ErrRecordNotFound.
func (r *UserRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpsertNick creates the row on first save and updates profile fields on later
// saves. created_at is written once and never touched again.
func (r *UserRepository) UpsertNick(ctx context.Context, telegramID int64, username, name, nick string) (*model.User, error) {
	var user model.User
	db := r.db.WithContext(ctx)
	err := db.Where("telegram_id = ?", telegramID).First(&user).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{
			"telegram_username": username,
			"telegram_name":     name,
			"game_nick":         nick,
		}
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
		return &user, nil
	case err == gorm.ErrRecordNotFound:
		user = model.User{
			TelegramID:       telegramID,
			TelegramUsername: username,
			TelegramName:     name,
			GameNick:         nick,
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		return &user, nil
	default:
		return nil, fmt.Errorf("find user: %w", err)
	}
}

// CountAndRecent returns the total row count and the n newest registrations.
func (r *UserRepository) CountAndRecent(ctx context.Context, n int) (int64, []model.User, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&model.User{}).Count(&total).Error; err != nil {
		return 0, nil, fmt.Errorf("count users: %w", err)
	}

	var recent []model.User
	if err := db.Order("created_at DESC").Limit(n).Find(&recent).Error; err != nil {
		return 0, nil, fmt.Errorf("list recent users: %w", err)
	}
	return total, recent, nil
}

// SearchByNickOrName matches a case-insensitive substring against game_nick or
// telegram_name. LOWER(...) LIKE keeps the query identical on Postgres and the
// sqlite test backend.
func (r *UserRepository) SearchByNickOrName(ctx context.Context, text string, limit int) ([]model.User, error) {
	pattern := "%" + strings.ToLower(text) + "%"

	var users []model.User
	err := r.db.WithContext(ctx).
		Where("LOWER(game_nick) LIKE ? OR LOWER(telegram_name) LIKE ?", pattern, pattern).
		Order("game_nick ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return users, nil
}
