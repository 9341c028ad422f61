package test

import (
	"github.com/mirrorcast/mirrorcast/server/logformatter"
	"github.com/mirrorcast/mirrorcast/server/logger"
)

func NewLogger() logger.Logger {
	return logger.NewFromEnv("MIRRORCAST_LOG").WithFormatter(logformatter.New())
}
