// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"
	"time"

	billstore "github.com/dalemusser/billtrack/internal/app/store/bills"
	categorystore "github.com/dalemusser/billtrack/internal/app/store/categories"
	hearingstore "github.com/dalemusser/billtrack/internal/app/store/hearings"
	jurisdictionstore "github.com/dalemusser/billtrack/internal/app/store/jurisdictions"
	membershipstore "github.com/dalemusser/billtrack/internal/app/store/memberships"
	sessionstore "github.com/dalemusser/billtrack/internal/app/store/sessions"
	userstore "github.com/dalemusser/billtrack/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll is called at startup. Each store owns its index definitions;
// CreateIndexes is idempotent for unchanged definitions, so reruns are
// cheap. Errors are aggregated so every problem is visible at once and
// startup can fail fast.
//
// The unique index on memberships (user_id, session_id) is load-bearing:
// it is what turns a concurrent duplicate membership insert into a clean
// ErrDuplicateMembership instead of a second row.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	type ensurer struct {
		name string
		fn   func(context.Context) error
	}

	ensurers := []ensurer{
		{"users", userstore.New(db).EnsureIndexes},
		{"jurisdictions", jurisdictionstore.New(db).EnsureIndexes},
		{"legislative_sessions", sessionstore.New(db).EnsureIndexes},
		{"memberships", membershipstore.New(db).EnsureIndexes},
		{"session_categories", categorystore.New(db).EnsureIndexes},
		{"bills", billstore.New(db).EnsureIndexes},
		{"hearings", hearingstore.New(db).EnsureIndexes},
	}

	var problems []string
	for _, e := range ensurers {
		start := time.Now()
		if err := e.fn(ctx); err != nil {
			zap.L().Warn("index ensure failed",
				zap.String("collection", e.name),
				zap.Error(err))
			problems = append(problems, e.name+": "+err.Error())
			continue
		}
		zap.L().Info("indexes ensured",
			zap.String("collection", e.name),
			zap.String("took", time.Since(start).String()))
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
