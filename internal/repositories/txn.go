package repositories

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/campuslink/backend/internal/errs"
)

// TxnRunner executes a function inside a single all-or-nothing
// transaction. Reads issued through the passed context see the same
// snapshot as the subsequent writes, so a validation read and the
// mutation it guards cannot be split by a concurrent committer.
type TxnRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// DefaultTxnTimeout bounds the lifetime of a single transaction.
const DefaultTxnTimeout = 15 * time.Second

// MongoTxnRunner implements TxnRunner on a MongoDB session.
type MongoTxnRunner struct {
	client  *mongo.Client
	timeout time.Duration
}

// NewMongoTxnRunner creates a MongoTxnRunner with the default timeout.
func NewMongoTxnRunner(client *mongo.Client) *MongoTxnRunner {
	return &MongoTxnRunner{client: client, timeout: DefaultTxnTimeout}
}

// WithTransaction runs fn inside a session with snapshot read concern and
// majority write concern. The driver retries transient aborts internally;
// once the bounded lifetime is exhausted a write conflict surfaces as
// KindContention so the caller knows a retry may succeed.
func (r *MongoTxnRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	session, err := r.client.StartSession()
	if err != nil {
		return errs.Wrap(errs.KindStoreFailure, "txn.start", errors.Wrap(err, "starting mongo session"))
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	}, txnOpts)
	if err != nil {
		return classifyTxnError(err)
	}
	return nil
}

// classifyTxnError keeps application error kinds intact and sorts the
// driver's failures into Contention (retryable) vs StoreFailure.
func classifyTxnError(err error) error {
	var appErr *errs.Error
	if errors.As(err, &appErr) {
		return err
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		if cmdErr.HasErrorLabel("TransientTransactionError") || cmdErr.HasErrorLabel("UnknownTransactionCommitResult") {
			return errs.Wrap(errs.KindContention, "txn.commit", err)
		}
	}
	if mongo.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return errs.Wrap(errs.KindContention, "txn.commit", err)
	}
	return errs.Wrap(errs.KindStoreFailure, "txn.commit", err)
}
