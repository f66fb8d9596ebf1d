package database

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func gormLogger() logger.Interface {
	level := logger.Info
	colorful := true
	if os.Getenv("GO_ENV") == "production" {
		// Analysis runs issue bulk chunk inserts; only slow or failing
		// statements are worth the log volume in production.
		level = logger.Warn
		colorful = false
	}

	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  colorful,
		},
	)
}

// NewGormDBFromDSN opens the shared Postgres connection. The same database
// holds contracts, analyses, chat history and the pgvector chunk embeddings,
// so the pool is sized for the API serving reads while analysis workers
// write in bulk.
func NewGormDBFromDSN(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger(),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}
