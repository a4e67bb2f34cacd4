package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/sushihentaime/companyblog/internal/blogservice"
	"github.com/sushihentaime/companyblog/internal/common"
	"github.com/sushihentaime/companyblog/internal/companyservice"
	"github.com/sushihentaime/companyblog/internal/entityroute"
	"github.com/sushihentaime/companyblog/internal/mailservice"
	"github.com/sushihentaime/companyblog/internal/userservice"
)

type application struct {
	config         *Config
	logger         *slog.Logger
	db             *sql.DB
	userService    *userservice.UserService
	blogService    *blogservice.BlogService
	companyService *companyservice.CompanyService
	mailService    *mailservice.MailService
	broker         *common.MessageBroker
	entityRegistry *entityroute.Registry
}

func newLogger(environment string) *slog.Logger {
	if environment == "development" {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func main() {
	configPath := flag.String("config", ".env", "path to the .env configuration file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := newLogger(cfg.Environment)

	dsn := common.DSN(cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name)

	if cfg.DB.AutoMigrate {
		m, err := common.Migrate(cfg.DB.MigrationsPath, dsn)
		if err != nil {
			logger.Error("failed to migrate the database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		m.Close()
		logger.Info("database migrations applied")
	}

	db, err := common.NewDB(dsn, 25, 25, 15*time.Minute)
	if err != nil {
		logger.Error("failed to connect to the database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer common.CloseDB(db)

	URI := fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.RabbitMQ.User, cfg.RabbitMQ.Password, cfg.RabbitMQ.Host, cfg.RabbitMQ.Port)
	broker, err := common.NewMessageBroker(URI)
	if err != nil {
		logger.Error("failed to connect to the message broker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer broker.Close()

	err = common.SetupUserExchange(broker)
	if err != nil {
		logger.Error("failed to setup the user exchange", slog.String("error", err.Error()))
		os.Exit(1)
	}

	err = common.SetupBlogExchange(broker)
	if err != nil {
		logger.Error("failed to setup the blog exchange", slog.String("error", err.Error()))
		os.Exit(1)
	}

	templates, err := mailservice.NewTemplate()
	if err != nil {
		logger.Error("failed to parse the mail templates", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cache := common.NewCache(cfg.CacheTTL, 2*cfg.CacheTTL)
	mailer := mailservice.NewMailer(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Password, cfg.Mail.Sender, templates)

	app := &application{
		config:         cfg,
		logger:         logger,
		db:             db,
		userService:    userservice.NewUserService(db, broker),
		blogService:    blogservice.NewBlogService(db, cache, broker, logger),
		companyService: companyservice.NewCompanyService(db, cache),
		mailService:    mailservice.NewMailService(broker, mailer, cfg.Mail.ActivationURL, logger),
		broker:         broker,
	}

	app.entityRegistry, err = app.entities()
	if err != nil {
		logger.Error("failed to register the entity pages", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = app.mailService.Start(ctx)
	if err != nil {
		logger.Error("failed to start the mail service", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer app.mailService.Close()

	err = app.serve(cfg.Port)
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
