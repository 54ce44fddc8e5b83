// internal/app/system/txn/txn.go
//
// Multi-document transaction helper with a graceful fallback for
// deployments where transactions are unavailable (standalone mongod,
// as in local development). Callers get atomicity when the server
// supports it and best-effort sequential execution when it does not.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// WithTransaction runs fn inside a Mongo multi-document transaction. If the
// server reports that transactions are not supported, fn is re-run once
// outside a transaction so the operation still completes; the caller loses
// atomicity only in that degraded mode.
func WithTransaction(ctx context.Context, client *mongo.Client, fn func(ctx context.Context) error) error {
	sess, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		return fn(ctx)
	}
	return err
}

// IsNotSupported reports whether err indicates the server cannot run
// multi-document transactions (not a replica set / sessions unsupported).
// It matches the known server error codes first and falls back to message
// inspection, since drivers and proxies wrap these errors inconsistently.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		switch cmdErr.Code {
		case 20, 51, 263:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	hasTxn := strings.Contains(msg, "transaction")
	switch {
	case hasTxn && strings.Contains(msg, "replica set"):
		return true
	case hasTxn && strings.Contains(msg, "session"):
		return true
	case hasTxn && strings.Contains(msg, "illegal operation"):
		return true
	case strings.Contains(msg, "session") && strings.Contains(msg, "not supported"):
		return true
	}
	return false
}
