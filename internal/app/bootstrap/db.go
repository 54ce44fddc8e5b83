// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	auditstore "github.com/dalemusser/billtrack/internal/app/store/audit"
	jurisdictionstore "github.com/dalemusser/billtrack/internal/app/store/jurisdictions"
	userstore "github.com/dalemusser/billtrack/internal/app/store/users"
	"github.com/dalemusser/billtrack/internal/app/system/indexes"
	"github.com/dalemusser/billtrack/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ConnectDB establishes the MongoDB connection and verifies it with a ping
// before the rest of startup proceeds.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase))

	return DBDeps{
		BillTrackMongoClient:   client,
		BillTrackMongoDatabase: client.Database(appCfg.MongoDatabase),
	}, nil
}

// EnsureSchema creates indexes and seeds reference data. It runs after
// ConnectDB and before the HTTP handler is built.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.BillTrackMongoDatabase

	if err := indexes.EnsureAll(ctx, db); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	if err := auditstore.New(db).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure audit indexes: %w", err)
	}

	seeded, err := jurisdictionstore.New(db).EnsureDefaults(ctx)
	if err != nil {
		return fmt.Errorf("seed jurisdictions: %w", err)
	}
	if seeded > 0 {
		logger.Info("seeded default jurisdictions", zap.Int("count", seeded))
	}

	if appCfg.AdminEmail != "" {
		err := userstore.New(db).SetGlobalRoleByEmail(ctx, appCfg.AdminEmail, "admin")
		switch {
		case errors.Is(err, userstore.ErrNotFound):
			// The account may not exist yet; promotion happens on the next
			// restart after they sign up.
			logger.Warn("admin_email has no matching account yet",
				zap.String("email", appCfg.AdminEmail))
		case err != nil:
			return fmt.Errorf("promote admin: %w", err)
		default:
			logger.Info("ensured global admin", zap.String("email", appCfg.AdminEmail))
		}
	}

	return nil
}
