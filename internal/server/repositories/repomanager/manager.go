// Package repomanager vends repositories bound to a database handle, so a
// service can run the same repositories against *sql.DB or inside a
// transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/rabetweb/internal/dbx"
	"github.com/dmitrijs2005/rabetweb/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/rabetweb/internal/server/repositories/messages"
	"github.com/dmitrijs2005/rabetweb/internal/server/repositories/principals"
)

// RepositoryManager binds repositories to a connection or transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Principals(db dbx.DBTX) principals.Repository
	Messages(db dbx.DBTX) messages.Repository
}
