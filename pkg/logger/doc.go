// Package logger provides the structured logging interface used across vinearchive.
//
// It wraps zerolog and offers:
// - Leveled logging (Debug, Info, Warn, Error)
// - Structured fields via WithField, WithFields and the *WithFields variants
// - Colored console output on stderr, or JSON lines when a log file is configured
// - A run_id field on every entry so one archive run can be followed in a shared log
// - A global logger for components that are not handed one explicitly
//
// Basic Usage:
//
//	cfg := &config.LoggingConfig{
//	    Level: "info",
//	    File:  "/var/log/vinearchive.log",
//	}
//	if err := logger.Initialize(cfg); err != nil {
//	    return err
//	}
//
//	logger.Info("archive run started")
//	logger.WithField("username", "testuser").Info("user folder ready")
//
// Component loggers carry their own fields:
//
//	log := logger.GetLogger().WithField("component", "archiver")
//	log.InfoWithFields("post archived", map[string]interface{}{
//	    "post_id":  "a",
//	    "duration": time.Second,
//	})
//
// Tests use NewTestLogger to capture entries and NewNopLogger to discard them.
package logger
