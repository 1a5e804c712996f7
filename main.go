package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pivolan/grades_analyzer/config"
	"github.com/pivolan/grades_analyzer/logging"
)

var rootCmd = &cobra.Command{
	Use:           "grades_analyzer",
	Short:         "Student exam results dashboard, bot and reports",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web dashboard, and the Telegram bot when TG_TOKEN is set",
	RunE:  runServe,
}

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run only the Telegram bot",
	RunE:  runBot,
}

func init() {
	rootCmd.AddCommand(serveCmd, botCmd, reportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp() (*App, *zap.Logger, error) {
	cfg := config.GetConfig()
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	app, err := NewApp(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return app, logger, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runServe(cmd *cobra.Command, args []string) error {
	app, logger, err := newApp()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signalContext()
	defer stop()

	go app.runCleanup(ctx, time.Minute, app.cfg.CacheTTL)

	if app.cfg.TgToken != "" {
		if err := startBot(ctx, app); err != nil {
			return err
		}
	} else {
		logger.Info("TG_TOKEN not set, bot disabled")
	}

	srv := &http.Server{Addr: app.cfg.HttpAddr, Handler: app.Routes()}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listen", zap.String("addr", app.cfg.HttpAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func runBot(cmd *cobra.Command, args []string) error {
	app, logger, err := newApp()
	if err != nil {
		return err
	}
	defer logger.Sync()
	if app.cfg.TgToken == "" {
		return errors.New("TG_TOKEN is not set")
	}

	ctx, stop := signalContext()
	defer stop()
	go app.runCleanup(ctx, time.Minute, app.cfg.CacheTTL)

	if err := startBot(ctx, app); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

func startBot(ctx context.Context, app *App) error {
	api, err := tgbotapi.NewBotAPI(app.cfg.TgToken)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	app.logger.Info("bot authorized", zap.String("account", api.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates, err := api.GetUpdatesChan(u)
	if err != nil {
		return fmt.Errorf("telegram updates: %w", err)
	}
	go func() {
		<-ctx.Done()
		api.StopReceivingUpdates()
	}()
	go NewBot(app, api).Listen(ctx, updates)
	return nil
}
