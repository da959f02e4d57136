package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"gamenick-bot/internal/model"
	"gamenick-bot/internal/repository"
)

const (
	recentLimit = 5
	searchLimit = 10
)

// Stats is the /stats payload: total registrations plus the newest rows.
type Stats struct {
	Total  int64
	Recent []model.User
}

// NickService fronts the users table. Every method separates "no such row"
// from a backend failure, so handlers choose how far to degrade; backend
// failures are logged once here with their cause.
type NickService struct {
	repo *repository.UserRepository
}

func NewNickService(repo *repository.UserRepository) *NickService {
	return &NickService{repo: repo}
}

// GetNick returns the stored nickname. found is false when the user has no
// row; err is non-nil only on a backend failure.
func (s *NickService) GetNick(ctx context.Context, telegramID int64) (string, bool, error) {
	user, found, err := s.Profile(ctx, telegramID)
	if err != nil || !found {
		return "", found, err
	}
	return user.GameNick, true, nil
}

// Profile returns the full user row for the identity.
func (s *NickService) Profile(ctx context.Context, telegramID int64) (*model.User, bool, error) {
	user, err := s.repo.FindByTelegramID(ctx, telegramID)
	switch {
	case err == nil:
		return user, true, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, nil
	default:
		log.Error().Err(err).Int64("telegram_id", telegramID).Msg("nick lookup failed")
		return nil, false, fmt.Errorf("lookup nick: %w", err)
	}
}

// SaveNick stores or replaces the nickname for the identity.
func (s *NickService) SaveNick(ctx context.Context, telegramID int64, username, name, nick string) error {
	if _, err := s.repo.UpsertNick(ctx, telegramID, username, name, nick); err != nil {
		log.Error().Err(err).Int64("telegram_id", telegramID).Msg("nick save failed")
		return fmt.Errorf("save nick: %w", err)
	}
	log.Info().Int64("telegram_id", telegramID).Str("game_nick", nick).Msg("nick saved")
	return nil
}

// Stats returns the total count and the five newest registrations.
func (s *NickService) Stats(ctx context.Context) (Stats, error) {
	total, recent, err := s.repo.CountAndRecent(ctx, recentLimit)
	if err != nil {
		log.Error().Err(err).Msg("stats query failed")
		return Stats{}, fmt.Errorf("load stats: %w", err)
	}
	return Stats{Total: total, Recent: recent}, nil
}

// Search finds up to ten users whose nickname or display name contains text.
func (s *NickService) Search(ctx context.Context, text string) ([]model.User, error) {
	users, err := s.repo.SearchByNickOrName(ctx, text, searchLimit)
	if err != nil {
		log.Error().Err(err).Str("query", text).Msg("nick search failed")
		return nil, fmt.Errorf("search nicks: %w", err)
	}
	return users, nil
}
