// Package store persists user collections and product history in PostgreSQL.
package store

import (
	"database/sql"
	"time"

	"gitlab.connectwisedev.com/product-scanner/pkg/database"
)

// Store implements the collection and history operations. A Store built
// without a database returns database.ErrStorageUnavailable from every call.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New returns a Store over client, which may be nil.
func New(client *database.DBClient) *Store {
	return &Store{db: client.GetDB(), now: time.Now}
}

func (s *Store) available() error {
	if s == nil || s.db == nil {
		return database.ErrStorageUnavailable
	}
	return nil
}
