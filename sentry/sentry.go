package sentry

import (
	"time"

	sentry "github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"moodlist/config"
)

// Init configures the global Sentry client. An empty DSN leaves Sentry
// initialised but disabled, so capture calls stay safe.
func Init(cfg config.SentryConfig) error {
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		EnableTracing:    cfg.IsEnabled(),
		TracesSampleRate: 1.0,
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			if event.Request != nil {
				// the relay passes user tokens in query strings and bodies
				event.Request.QueryString = ""
				event.Request.Data = ""
				event.Request.Cookies = ""
			}
			return event
		},
	}); err != nil {
		return err
	}
	if cfg.IsEnabled() {
		log.Infof("Sentry enabled (environment=%q, release=%q)", cfg.Environment, cfg.Release)
	}
	return nil
}

func GetSentryGin() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         2 * time.Second,
	})
}

// Flush waits for buffered events before shutdown.
func Flush() {
	sentry.Flush(2 * time.Second)
}
