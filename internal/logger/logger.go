package logger

import (
	"strings"

	"go.uber.org/zap"
)

// New builds the application logger. Anything other than prod/production
// gets the human-readable development encoder.
func New(mode string) (*zap.Logger, error) {
	switch strings.ToLower(mode) {
	case "prod", "production":
		return zap.NewProduction()
	default:
		return zap.NewDevelopment()
	}
}
