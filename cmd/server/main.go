package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"strings"
	"time"
	"whist-server/internal/config"
	"whist-server/internal/email"
	"whist-server/internal/jwt"
	"whist-server/internal/mux"
	"whist-server/pkg/db"
	"whist-server/pkg/model"
	"whist-server/pkg/scorekeeper"

	"github.com/gorilla/handlers"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

const readTimeout = time.Second * 5
const writeTimeout = time.Second * 10

// Version is the server version
var Version = "v0.0.0-dev"

var addr = flag.String("addr", ":5000", "the listen address")

func main() {
	flag.Parse()
	setupLogger()

	// fail fast
	jwt.LoadKeys()

	cfg := config.Instance()
	if cfg.RecaptchaSecret == "" {
		logrus.Warn("missing recaptcha secret in configuration, user creation is not protected")
	}

	service := scorekeeper.NewService(newRepository(cfg))
	switch {
	case cfg.Email.Disable:
		logrus.Info("game summary emails are disabled")
	case cfg.Storage != config.StoragePostgres:
		// the recipients are looked up in the users table
		logrus.Warn("game summary emails require postgres storage")
	default:
		service.AddNotifier(newSummaryNotifier(cfg))
	}

	c := cors.New(cors.Options{
		AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With", "Authorization"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		ExposedHeaders: []string{mux.UserIDHeader},
	})

	srv := &http.Server{
		Addr:         *addr,
		Handler:      loggingHandler(c.Handler(mux.NewMux(Version, service))),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	logrus.WithField("addr", srv.Addr).WithField("storage", cfg.Storage).Info("listening")
	logrus.Fatal(srv.ListenAndServe())
}

func newRepository(cfg config.Config) scorekeeper.Repository {
	switch cfg.Storage {
	case config.StorageMemory:
		logrus.Warn("games are kept in memory and are lost on restart, user accounts still require postgres")
		return scorekeeper.NewMemoryRepository()
	case config.StoragePostgres:
		// run the db migrations
		db.Migrate()
		return model.NewRepository()
	default:
		logrus.WithField("storage", cfg.Storage).Fatal("unknown storage")
		return nil
	}
}

func newSummaryNotifier(cfg config.Config) *email.SummaryNotifier {
	client, err := email.NewClient(cfg.Email.From, cfg.Email.Sender, cfg.Email.Username, cfg.Email.Password, cfg.Email.Host)
	if err != nil {
		logrus.WithError(err).Fatal("could not create email client")
	}

	templates, err := email.NewTemplate(cfg.Email.TemplatesPath)
	if err != nil {
		logrus.WithError(err).WithField("path", cfg.Email.TemplatesPath).Fatal("could not load email templates")
	}

	return email.NewSummaryNotifier(client, templates, lookupEmail, cfg.Host)
}

func lookupEmail(ctx context.Context, userID int64) (string, error) {
	user, err := model.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}

	return user.Email, nil
}

func loggingHandler(next http.Handler) http.Handler {
	if config.Instance().Log.DisableAccessLogs {
		return next
	}

	return handlers.CombinedLoggingHandler(os.Stdout, next)
}

func setupLogger() {
	if lvl := config.Instance().Log.Level; lvl != "" {
		level, err := logrus.ParseLevel(lvl)
		if err != nil {
			logrus.WithError(err).Fatal("could not parse level")
		}

		logrus.SetLevel(level)
	}

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
