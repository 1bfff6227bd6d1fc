package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/carlschroedl/votelib/internal/config"
	"github.com/carlschroedl/votelib/pkg/db"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg      *config.Config
	Database db.Database // nil when no databaseURL is configured
	Logger   *zap.Logger
	Ctx      context.Context
}
