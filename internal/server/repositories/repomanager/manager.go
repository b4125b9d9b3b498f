package repomanager

import (
	"context"
	"database/sql"

	"github.com/mkuzmins/authkeeper/internal/dbx"
	"github.com/mkuzmins/authkeeper/internal/server/repositories/users"
)

// RepositoryManager vends repository implementations bound to a DB handle
// (connection or transaction) and exposes a schema migration hook.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
}
