// internal/app/system/txn/txn.go

// Package txn runs multi-document MongoDB transactions with a bounded retry
// loop. Store methods accept a context; when that context is a session
// context started here, their reads and writes enlist in the surrounding
// transaction, which is how the coordinator keeps a map document and its
// derived grants atomically consistent.
package txn

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Praytic/places-sub000/internal/app/system/faults"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
	"go.uber.org/zap"
)

// DefaultMaxAttempts bounds how many times a conflicting transaction body
// is re-executed before the conflict surfaces to the caller.
const DefaultMaxAttempts = 3

const retryBaseDelay = 50 * time.Millisecond

// Run executes fn inside a snapshot/majority transaction on client,
// retrying the whole body on transient serialization failures up to
// maxAttempts times. fn must be safe to re-run from scratch: no side
// effects outside the transaction before commit.
//
// On servers without transaction support (standalone dev Mongo), fn runs
// once without a transaction. That relaxation only exists for local
// development; production deployments are expected to run a replica set.
func Run(ctx context.Context, client *mongo.Client, log *zap.Logger, maxAttempts int, fn func(ctx context.Context) error) error {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	sess, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return fn(ctx)
		}
		return fmt.Errorf("%w: start session: %v", faults.ErrUnavailable, err)
	}
	defer sess.EndSession(ctx)

	opts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
			if err := sess.StartTransaction(opts); err != nil {
				return err
			}
			if err := fn(sc); err != nil {
				_ = sess.AbortTransaction(sc)
				return err
			}
			return sess.CommitTransaction(sc)
		})
		if err == nil {
			return nil
		}
		if IsNotSupported(err) {
			return fn(ctx)
		}
		if !IsTransient(err) {
			return err
		}
		lastErr = err
		if log != nil {
			log.Warn("transaction conflict, retrying",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", maxAttempts),
				zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * retryBaseDelay):
		}
	}
	return fmt.Errorf("%w: gave up after %d attempts: %v", faults.ErrConflict, maxAttempts, lastErr)
}

// IsTransient reports whether err is a serialization failure worth retrying:
// a write-write conflict or a commit whose outcome is unknown.
func IsTransient(err error) bool {
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		if ce.HasErrorLabel("TransientTransactionError") || ce.HasErrorLabel("UnknownTransactionCommitResult") {
			return true
		}
		return ce.Code == 112 // WriteConflict
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		if we.HasErrorLabel("TransientTransactionError") {
			return true
		}
		for _, e := range we.WriteErrors {
			if e.Code == 112 {
				return true
			}
		}
	}
	return false
}

// IsNotSupported reports whether err indicates the server cannot run
// multi-document transactions at all (standalone server, old version, or a
// DocumentDB-style deployment without session support).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 20, 51, 263: // IllegalOperation / OperationNotSupported variants
			return true
		}
		return false
	}

	msg := strings.ToLower(err.Error())
	hasTxn := strings.Contains(msg, "transaction")
	hasSession := strings.Contains(msg, "session")
	if !hasTxn && !hasSession {
		return false
	}
	if hasTxn && hasSession {
		return true
	}
	for _, kw := range []string{"replica set", "not supported", "illegal operation"} {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}
