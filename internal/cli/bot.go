package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"taskflow/internal/bot"
	"taskflow/internal/logger"
	"taskflow/internal/notify"
	"taskflow/internal/service"
)

func newBotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Serve the Telegram front-end with reminders and the daily digest",
		Args:  cobra.NoArgs,
		RunE:  runBot,
	}
}

func runBot(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The sink needs the bot to deliver and the bot needs the service that
	// owns the sink, so delivery goes through a late-bound reference.
	var telegramBot *bot.Bot
	deliver := func(ctx context.Context, n notify.Notification) error {
		if telegramBot == nil {
			return errors.New("bot is not running")
		}
		return telegramBot.Deliver(ctx, n)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateBot(); err != nil {
		return err
	}

	scheduler := service.NewSchedulerService(cfg.Location)
	sink := notify.NewCronSink(scheduler, deliver)

	a, err := openApp(ctx, cfg, sink)
	if err != nil {
		return err
	}
	defer a.Close()

	telegramBot, err = bot.New(a.cfg.TelegramToken, a.cfg.OwnerChatID, a.cfg.Location, a.tasks, service.NewDigestService(), nil)
	if err != nil {
		return fmt.Errorf("bot: %w", err)
	}

	if _, err := scheduler.ScheduleDaily(a.cfg.DigestTime, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := telegramBot.SendDigest(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Get().Warnw("digest", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule digest: %w", err)
	}

	a.tasks.RescheduleReminders(ctx)
	scheduler.Start()
	defer scheduler.Stop()

	logger.Get().Infow("taskflow bot started", "digest", a.cfg.DigestTime, "timezone", a.cfg.Location.String())
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("bot stopped with error: %w", err)
	}
	logger.Get().Info("shutdown complete")
	return nil
}
