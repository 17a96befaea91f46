package launcher

import (
	"fmt"
	"io"

	"github.com/evalphobia/logrus_sentry"
	"github.com/sirupsen/logrus"
)

// sentryLevels are forwarded to Sentry when a DSN is configured.
var sentryLevels = []logrus.Level{
	logrus.PanicLevel,
	logrus.FatalLevel,
	logrus.ErrorLevel,
}

func setupLogging(cfg LoggingConfig, out io.Writer) (*logrus.Logger, error) {
	log := logrus.New()
	log.Out = out

	v := cfg.Verbosity
	if v < int(logrus.PanicLevel) {
		v = int(logrus.PanicLevel)
	}
	if v > int(logrus.TraceLevel) {
		v = int(logrus.TraceLevel)
	}
	log.SetLevel(logrus.Level(v))

	switch cfg.Format {
	case "text", "":
		log.Formatter = &logrus.TextFormatter{
			ForceColors:   cfg.Color,
			DisableColors: !cfg.Color,
			FullTimestamp: true,
		}
	case "json":
		log.Formatter = &logrus.JSONFormatter{}
	default:
		return nil, fmt.Errorf("unknown log format %q (valid: text, json)", cfg.Format)
	}

	if cfg.SentryDSN != "" {
		hook, err := logrus_sentry.NewSentryHook(cfg.SentryDSN, sentryLevels)
		if err != nil {
			return nil, fmt.Errorf("sentry hook: %w", err)
		}
		hook.StacktraceConfiguration.Enable = true
		log.Hooks.Add(hook)
	}
	return log, nil
}
