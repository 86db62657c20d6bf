package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	DB *gorm.DB
}

func New(databaseURL string) (*Database, error) {
	var db *gorm.DB
	var err error

	if strings.HasPrefix(databaseURL, "sqlite://") {
		// SQLite for development
		dbPath := strings.TrimPrefix(databaseURL, "sqlite://")
		db, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	} else {
		// PostgreSQL for production
		db, err = gorm.Open(postgres.Open(databaseURL), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	createTablesSQL := `
	CREATE TABLE IF NOT EXISTS connectors (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		status TEXT DEFAULT 'INACTIVE',
		config TEXT,
		credentials TEXT,
		last_sync TIMESTAMP,
		created_at TIMESTAMP,
		updated_at TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS spus (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		vendor TEXT,
		category TEXT,
		tags TEXT,
		images TEXT,
		connector_id TEXT NOT NULL,
		external_id TEXT NOT NULL,
		created_at TIMESTAMP,
		updated_at TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS skus (
		id TEXT PRIMARY KEY,
		spu_id TEXT NOT NULL,
		supplier_sku TEXT NOT NULL,
		master_sku TEXT,
		price DECIMAL(10,2),
		stock INTEGER DEFAULT 0,
		weight DECIMAL(10,3),
		barcode TEXT,
		mapping_status TEXT DEFAULT 'pending',
		created_at TIMESTAMP,
		updated_at TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS sku_mappings (
		supplier_sku TEXT PRIMARY KEY,
		master_sku TEXT NOT NULL,
		confidence DECIMAL,
		mapping_type TEXT NOT NULL,
		created_at TIMESTAMP,
		updated_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_spus_connector ON spus(connector_id);
	CREATE INDEX IF NOT EXISTS idx_skus_spu ON skus(spu_id);
	CREATE INDEX IF NOT EXISTS idx_skus_supplier ON skus(supplier_sku);
	CREATE INDEX IF NOT EXISTS idx_skus_status ON skus(mapping_status);
	CREATE INDEX IF NOT EXISTS idx_mappings_master ON sku_mappings(master_sku);
	`

	for _, stmt := range strings.Split(createTablesSQL, ";") {
		if stmt = strings.TrimSpace(stmt); stmt == "" {
			continue
		}
		if err := db.Exec(stmt).Error; err != nil {
			return nil, fmt.Errorf("failed to create tables: %w", err)
		}
	}

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
