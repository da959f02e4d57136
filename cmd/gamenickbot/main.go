package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"gamenick-bot/internal/bot"
	"gamenick-bot/internal/config"
	"gamenick-bot/internal/logger"
	"gamenick-bot/internal/repository"
	"gamenick-bot/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	logger.Init(cfg.Debug)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	db, err := repository.NewDB(cfg.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("db")
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	nicks := service.NewNickService(userRepo)

	telegramBot, err := bot.New(cfg.BotToken, nicks, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("bot")
	}

	if cfg.StatsReportTime != "" && len(cfg.AdminIDs) > 0 {
		scheduler := service.NewScheduler(time.Local)
		if _, err := scheduler.ScheduleDaily(cfg.StatsReportTime, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := telegramBot.SendStatsReport(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("stats report")
			}
		}); err != nil {
			log.Fatal().Err(err).Msg("schedule stats report")
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	log.Info().Msg("game nick bot started")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("bot stopped with error")
	}
	log.Info().Msg("shutdown complete")
}
