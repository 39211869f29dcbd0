// internal/app/system/txn/txn.go

// Package txn runs multi-document mutations inside a Mongo transaction
// when the server supports one, and falls back to plain sequential
// execution when it does not (standalone servers, some DocumentDB
// deployments). Callers get transactional cascade deletes on replica
// sets and best-effort semantics everywhere else.
package txn

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// WithTransaction executes fn inside a transaction where possible. On
// servers without transaction support it runs fn once without one.
// fn must be safe to run with either context (it receives the session
// context when a transaction is active).
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
		// The server accepted the session but rejected the transaction
		// (e.g. standalone mongod). Run the mutations directly.
		return fn(ctx)
	}
	return err
}

// Server error codes that indicate transactions are unavailable rather
// than that the transaction failed.
const (
	codeIllegalOperation        = 20
	codeCommandNotSupported     = 51
	codeOperationNotSupportedIn = 263
)

// IsNotSupported reports whether err means the server cannot run
// transactions at all (as opposed to a transient or logical failure).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	if ce, ok := err.(mongo.CommandError); ok {
		switch ce.Code {
		case codeIllegalOperation, codeCommandNotSupported, codeOperationNotSupportedIn:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	has := func(s string) bool { return strings.Contains(msg, s) }
	switch {
	case has("transaction") && has("replica set"):
		return true
	case has("transaction") && has("session"):
		return true
	case has("transaction") && has("illegal operation"):
		return true
	case has("session") && has("not supported"):
		return true
	}
	return false
}
