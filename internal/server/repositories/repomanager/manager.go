package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/clinauth/internal/dbx"
	"github.com/dmitrijs2005/clinauth/internal/server/repositories/resetemails"
	"github.com/dmitrijs2005/clinauth/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX so services can run
// them either directly or inside dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	ResetEmails(db dbx.DBTX) resetemails.Repository
}
