package config

import (
	"go.uber.org/zap"
)

// Config bundles the cross-cutting concerns handed to every component at
// startup - the process logger and the imported environment.
type Config struct {
	Logger      *zap.SugaredLogger
	Environment *Environment
}
