package repositories

import (
	"context"
)

// TransactionManager runs a unit of work atomically.
// fn receives a Store bound to the transaction; when fn returns an error every write is rolled back.
// Calling RunInTx on a transaction-bound Store runs fn inside the same transaction.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(tx Store) error) error
}
