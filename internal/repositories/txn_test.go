package repositories

import (
	"context"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/campuslink/backend/internal/errs"
)

func TestClassifyTxnErrorKeepsAppKinds(t *testing.T) {
	forbidden := errs.E(errs.KindForbidden, "engine.DeletePost", "not the owner")
	assert.Equal(t, errs.KindForbidden, errs.KindOf(classifyTxnError(forbidden)))

	wrapped := pkgerrors.Wrap(errs.E(errs.KindConflict, "engine.LikePost", "already liked"), "txn")
	assert.Equal(t, errs.KindConflict, errs.KindOf(classifyTxnError(wrapped)))
}

func TestClassifyTxnErrorTransientIsContention(t *testing.T) {
	transient := mongo.CommandError{
		Code:    112,
		Message: "WriteConflict",
		Labels:  []string{"TransientTransactionError"},
	}
	got := classifyTxnError(transient)
	assert.Equal(t, errs.KindContention, errs.KindOf(got))
	assert.True(t, errs.Retryable(got))

	unknownCommit := mongo.CommandError{
		Code:    50,
		Message: "commit timed out",
		Labels:  []string{"UnknownTransactionCommitResult"},
	}
	assert.Equal(t, errs.KindContention, errs.KindOf(classifyTxnError(unknownCommit)))
}

func TestClassifyTxnErrorDeadlineIsContention(t *testing.T) {
	assert.Equal(t, errs.KindContention, errs.KindOf(classifyTxnError(context.DeadlineExceeded)))
}

func TestClassifyTxnErrorUnknownIsStoreFailure(t *testing.T) {
	got := classifyTxnError(pkgerrors.New("connection reset"))
	assert.Equal(t, errs.KindStoreFailure, errs.KindOf(got))
	assert.False(t, errs.Retryable(got))
}
