package model

import "time"

// User maps a Telegram identity to the game nickname shown in groups.
// Column names match the shared Supabase "users" table.
type User struct {
	ID               uint      `gorm:"primaryKey"`
	TelegramID       int64     `gorm:"column:telegram_id;uniqueIndex"`
	TelegramUsername string    `gorm:"column:telegram_username"`
	TelegramName     string    `gorm:"column:telegram_name"`
	GameNick         string    `gorm:"column:game_nick"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (User) TableName() string {
	return "users"
}
