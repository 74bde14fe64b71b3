package repomanager

import (
	"context"
	"database/sql"

	"github.com/dprokopov/autofilterbot/internal/bot/repositories/records"
	"github.com/dprokopov/autofilterbot/internal/dbx"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Records(db dbx.DBTX) records.Repository
}
