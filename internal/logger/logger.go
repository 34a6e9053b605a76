package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// Init builds the zap logger for the given environment and installs it
// as the global logger, so callers can use zap.L() everywhere.
func Init(environment string) error {
	var (
		logger *zap.Logger
		err    error
	)

	switch environment {
	case "production":
		logger, err = zap.NewProduction()
	default:
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return fmt.Errorf("zap.New -> %w", err)
	}

	zap.ReplaceGlobals(logger)

	return nil
}
