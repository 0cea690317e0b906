package routes

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/walletbot/internal/bot"
	"github.com/congo-pay/walletbot/internal/config"
	"github.com/congo-pay/walletbot/internal/ledger"
	"github.com/congo-pay/walletbot/internal/middleware"
	"github.com/congo-pay/walletbot/internal/notification"
	"github.com/congo-pay/walletbot/internal/session"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Redelivered updates would be applied twice without the dedupe cache.
	if !d.Cfg.IsDev() && d.Cache == nil {
		return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	if d.Cfg.LogFormat == "text" {
		// [HH:MM:SS] 200 -  145ms METHOD /route
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} -  ${latency} ${method} ${route}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	}
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	notifiers := notification.Multi{notification.NewLoggerNotifier(d.Logger)}
	if d.DB != nil {
		notifiers = append(notifiers, notification.NewPostgresNotifier(d.DB))
	}

	wallets := ledger.NewInMemory()
	sessions := session.NewTracker(session.WithTTL(d.Cfg.SessionTTL))
	botSvc := bot.NewService(wallets, sessions, notifiers, d.Logger, bot.Config{
		MaxFundAmount: d.Cfg.MaxFundAmount,
		HistoryLimit:  d.Cfg.HistoryLimit,
	})

	RegisterWebhookRoutes(app, bot.NewHandler(botSvc, d.Logger), d)
	return nil
}
