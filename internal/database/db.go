package database

import (
	"errors"
	"sync"
	"time"

	"pdf2tsv/config"
	"pdf2tsv/internal/database/model"
	"pdf2tsv/pkg/logger"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

var (
	DB *gorm.DB
	mu sync.Mutex
)

// connect opens the DB, registers read replicas and applies pool configuration
func connect() (*gorm.DB, error) {
	if config.Cfg.Dns == "" {
		return nil, errors.New("database: empty dsn")
	}
	db, err := gorm.Open(mysql.Open(config.Cfg.Dns), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if replicas := replicaDialectors(config.Cfg.Database.Replicas); len(replicas) > 0 {
		resolver := dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		})
		if err := db.Use(resolver); err != nil {
			return nil, err
		}
		logger.Info("database: registered %d read replicas", len(replicas))
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(config.Cfg.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(config.Cfg.Database.MaxOpenConns)
	lifetime := time.Duration(config.Cfg.Database.MaxLifetime) * time.Minute
	sqlDB.SetConnMaxIdleTime(lifetime)
	sqlDB.SetConnMaxLifetime(lifetime)

	return db, nil
}

func replicaDialectors(dsns []string) []gorm.Dialector {
	out := make([]gorm.Dialector, 0, len(dsns))
	for _, dsn := range dsns {
		if dsn == "" {
			continue
		}
		out = append(out, mysql.Open(dsn))
	}
	return out
}

// ensureConnection connects on first use and reconnects when the pool stops answering pings.
func ensureConnection() error {
	mu.Lock()
	defer mu.Unlock()

	if DB != nil {
		sqlDB, err := DB.DB()
		if err == nil && sqlDB.Ping() == nil {
			return nil
		}
		logger.Warn("database: connection lost, reconnecting")
	}
	newDB, err := connect()
	if err != nil {
		logger.Error(err, "database: failed to connect to database")
		return err
	}
	DB = newDB
	return nil
}

// GetDB returns a healthy *gorm.DB, attempting reconnect if necessary
func GetDB() (*gorm.DB, error) {
	if err := ensureConnection(); err != nil {
		return nil, err
	}
	return DB, nil
}

// Migrate creates or updates the tables backing users, documents and chunks.
func Migrate() error {
	db, err := GetDB()
	if err != nil {
		return err
	}
	return db.AutoMigrate(&model.User{}, &model.Document{}, &model.Chunk{})
}
