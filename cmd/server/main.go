package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cobaemon/portfolio/internal/account"
	"github.com/cobaemon/portfolio/internal/contact"
	"github.com/cobaemon/portfolio/internal/webapp"
	"github.com/cobaemon/portfolio/pkg/clientip"
	"github.com/cobaemon/portfolio/pkg/config"
	"github.com/cobaemon/portfolio/pkg/cookie"
	"github.com/cobaemon/portfolio/pkg/email"
	"github.com/cobaemon/portfolio/pkg/httpserver"
	"github.com/cobaemon/portfolio/pkg/logger"
	"github.com/cobaemon/portfolio/pkg/pg"
	"github.com/cobaemon/portfolio/pkg/ratelimiter"
	pkgredis "github.com/cobaemon/portfolio/pkg/redis"
	"github.com/cobaemon/portfolio/pkg/requestid"
	"github.com/cobaemon/portfolio/pkg/session"
)

type appConfig struct {
	Environment   string   `env:"APP_ENV" envDefault:"development"`
	CookieSecrets []string `env:"COOKIE_SECRETS,required" envSeparator:","`
	SessionStore  string   `env:"SESSION_STORE" envDefault:"memory"` // memory or redis
	DevMailDir    string   `env:"DEV_MAIL_DIR" envDefault:"tmp/mail"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	var appCfg appConfig
	config.MustLoad(&appCfg)

	log := logger.New(logger.WithEnvironment(appCfg.Environment, "portfolio"))
	logger.SetAsDefault(log)

	if err := run(ctx, appCfg, log); err != nil {
		log.ErrorContext(ctx, "server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, appCfg appConfig, log *slog.Logger) error {
	var (
		accountCfg account.Config
		pgCfg      pg.Config
		sessionCfg session.Config
		emailCfg   email.Config
		googleCfg  account.GoogleConfig
		serverCfg  httpserver.Config
	)
	config.MustLoad(&accountCfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&sessionCfg)
	config.MustLoad(&emailCfg)
	config.MustLoad(&googleCfg)
	config.MustLoad(&serverCfg)

	if err := accountCfg.Validate(); err != nil {
		return err
	}

	db, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := pg.Migrate(ctx, db, pgCfg, log); err != nil {
		return err
	}

	cookies, err := cookie.New(appCfg.CookieSecrets,
		cookie.WithSecure(sessionCfg.SecureCookies))
	if err != nil {
		return err
	}

	sessionStore, closeStore, err := newSessionStore(ctx, appCfg, sessionCfg)
	if err != nil {
		return err
	}
	defer closeStore()

	sessions := session.New(
		session.WithConfig(sessionCfg),
		session.WithStore(sessionStore),
		session.WithTransport(session.NewCookieTransport(
			cookies, sessionCfg.CookieName, sessionCfg.SecureCookies)),
	)

	mailer := newMailer(appCfg, emailCfg, log)

	repo := account.NewPostgresRepository(db, []byte(accountCfg.MasterSecret))
	secretKey := accountCfg.MasterKey()

	var oauthSvc *account.OAuthService
	if googleCfg.Enabled() {
		oauthSvc = account.NewOAuthService(repo, sessions, log,
			account.NewGoogleAdapter(googleCfg))
	}

	signupSvc := account.NewSignupService(accountCfg, repo, mailer, log)
	views := webapp.MustNewRenderer(log)

	accountHandler := account.NewHandler(account.HandlerDeps{
		Config:   accountCfg,
		Login:    account.NewLoginService(accountCfg, repo, sessions, mailer, log),
		Confirm:  account.NewConfirmService(accountCfg, repo, sessions, secretKey, log),
		Enroll:   account.NewEnrollService(accountCfg, repo, sessions, secretKey),
		Signup:   signupSvc,
		Password: account.NewPasswordService(accountCfg, repo, mailer, log),
		Settings: account.NewSettingsService(accountCfg, repo, signupSvc),
		OAuth:    oauthSvc,
		Sessions: sessions,
		Cookies:  cookies,
		Views:    views,
		Log:      log,
	})

	loginLimiter, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), ratelimiter.Config{
		Capacity:       10,
		RefillRate:     10,
		RefillInterval: time.Minute,
	})
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(clientip.Middleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", httpserver.HealthCheckHandler(ctx, log,
		pg.Healthcheck(db)))
	r.Mount("/accounts", accountHandler.Routes(loginLimiter))
	r.Method(http.MethodPost, "/contact",
		contact.NewHandler(emailCfg.ContactEmail, mailer, log))
	r.Handle("/static/*", webapp.Static())
	r.Get("/", webapp.NewHome(views, cookies, defaultProjects()).ServeHTTP)

	srv := httpserver.NewFromConfig(serverCfg, httpserver.WithLogger(log))
	return srv.Run(ctx, r)
}

// newSessionStore picks the session backend. Redis keeps sessions across
// restarts; the in-memory store is the development default.
func newSessionStore(ctx context.Context, appCfg appConfig, sessionCfg session.Config) (session.Store, func(), error) {
	if appCfg.SessionStore == "redis" {
		var redisCfg pkgredis.Config
		config.MustLoad(&redisCfg)
		client, err := pkgredis.Connect(ctx, redisCfg)
		if err != nil {
			return nil, nil, err
		}
		return session.NewRedisStore(client), func() { _ = client.Close() }, nil
	}
	store := session.NewMemoryStore(sessionCfg.CleanupInterval)
	return store, store.Close, nil
}

// newMailer routes outbound mail to Postmark when a server token is
// configured, and to on-disk files otherwise.
func newMailer(appCfg appConfig, emailCfg email.Config, log *slog.Logger) email.EmailSender {
	if emailCfg.PostmarkServerToken == "" {
		log.Info("no postmark token configured, writing mail to disk",
			slog.String("dir", appCfg.DevMailDir))
		return email.NewDevSender(appCfg.DevMailDir)
	}
	return email.MustNewPostmarkClient(emailCfg)
}

func defaultProjects() []webapp.Project {
	return []webapp.Project{
		{
			Name:        "Portfolio",
			Description: "This site: account management, passwordless login and a contact form.",
			URL:         "https://github.com/cobaemon/portfolio",
		},
	}
}
