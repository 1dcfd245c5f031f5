package query

/*
	Package `query` wraps https://github.com/mongodb/mongo-go-driver for the repositories.
	Every call takes ctx.Ctx; inside RunWithTransaction the ctx carries the session, so
	repositories join the transaction just by passing it along.
*/

import (
	"fmt"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/domain"
)

var (
	// ErrNotFound is mongo document not found error
	ErrNotFound = fmt.Errorf("document not found")

	// ErrDuplicateKey is an error when violating unique index
	ErrDuplicateKey = fmt.Errorf("duplicate key")
)

// Index describes a compound index on Keys, in order
type Index struct {
	Keys   []string
	Unique bool
}

// Mongo abstract the mongo layer.
type Mongo interface {
	domain.Transactor

	// Insert inserts a new document, ErrDuplicateKey when a unique index rejects it
	Insert(c ctx.Ctx, table domain.Table, insert interface{}) error

	// FindOne decodes the first match into result, ErrNotFound when nothing matches
	FindOne(c ctx.Ctx, table domain.Table, query, result interface{}) error

	// Count return counting for matched entry in the table
	Count(c ctx.Ctx, table domain.Table, selector interface{}) (int, error)

	// Upsert replaces the matched document or inserts update when none matches
	Upsert(c ctx.Ctx, table domain.Table, selector, update interface{}) error

	// Search sort order by `sort` argument (ex "timestamp" ascending, or "-timestamp" descending).
	// limit 0 means no limit.
	Search(c ctx.Ctx, table domain.Table, offset, limit int, sort string, query, results interface{}) error

	// Remove remove an entry from the table
	// Return ErrNotFound if selector does not match any documents
	Remove(c ctx.Ctx, table domain.Table, selector interface{}) error

	// Patch $sets update on the first match, ErrNotFound if selector does not match any documents
	Patch(c ctx.Ctx, table domain.Table, selector, update interface{}) error

	EnsureIndexes(c ctx.Ctx, table domain.Table, indexes ...Index) error
}
