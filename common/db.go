package common

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"articlehub/config"
	"articlehub/database"
	"articlehub/store"
)

// OpenSqlite opens the SQLite file at path. ":memory:" is pinned to a single
// connection so every query sees the same database.
func OpenSqlite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	if path == ":memory:" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

func ConnectMongo(ctx context.Context, uri, dbName string) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client.Database(dbName), nil
}

// ConnectStore opens the backend named by cfg.DBDriver and brings its
// schema up to date.
func ConnectStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	switch cfg.DBDriver {
	case "mongo":
		db, err := ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		st := store.NewMongoStore(db)
		if err := st.EnsureIndexes(ctx); err != nil {
			st.Close(ctx)
			return nil, err
		}
		logger.Info("connected to mongo", zap.String("db", cfg.MongoDB))
		return st, nil
	default:
		db, err := OpenSqlite(cfg.SqliteDB)
		if err != nil {
			return nil, err
		}
		if err := database.RunMigrations(db, logger); err != nil {
			return nil, err
		}
		logger.Info("opened sqlite db", zap.String("path", cfg.SqliteDB))
		return store.NewGormStore(db), nil
	}
}
