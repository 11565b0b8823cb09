package config

import "go.uber.org/zap"

// Logger builds the process logger: production JSON output, or the
// human-readable development logger when Debug is set.
func (c Config) Logger() (*zap.Logger, error) {
	if c.Debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
