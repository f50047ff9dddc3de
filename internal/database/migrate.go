package database

import (
	migrate "github.com/rubenv/sql-migrate"
)

// Migrations are embedded so a fresh database is usable without a separate
// migration step. cmd/migration/initialize seeds data on top of this.
var migrations = &migrate.MemoryMigrationSource{
	Migrations: []*migrate.Migration{
		{
			Id: "001_sessions",
			Up: []string{`
CREATE TABLE IF NOT EXISTS test_sessions (
    id VARCHAR(64) PRIMARY KEY,
    created_at DATETIME,
    updated_at DATETIME,
    deleted_at DATETIME,
    visitor_identity VARCHAR(64) NOT NULL,
    test_id VARCHAR(64) NOT NULL,
    target_key VARCHAR(255)
);`,
				`CREATE INDEX IF NOT EXISTS idx_test_sessions_visitor_identity ON test_sessions(visitor_identity);`,
				`CREATE INDEX IF NOT EXISTS idx_test_sessions_test_id ON test_sessions(test_id);`,
				`CREATE INDEX IF NOT EXISTS idx_test_sessions_deleted_at ON test_sessions(deleted_at);`,
			},
			Down: []string{`DROP TABLE test_sessions;`},
		},
		{
			Id: "002_entries",
			Up: []string{`
CREATE TABLE IF NOT EXISTS captured_entries (
    id VARCHAR(64) PRIMARY KEY,
    created_at DATETIME,
    updated_at DATETIME,
    deleted_at DATETIME,
    uid VARCHAR(64) NOT NULL,
    form_id VARCHAR(64) NOT NULL,
    form_type VARCHAR(32) NOT NULL,
    source_url VARCHAR(512),
    status VARCHAR(32),
    date_created DATETIME,
    date_updated DATETIME
);`,
				`CREATE INDEX IF NOT EXISTS idx_captured_entries_uid ON captured_entries(uid);`,
				`CREATE INDEX IF NOT EXISTS idx_captured_entries_deleted_at ON captured_entries(deleted_at);`,
			},
			Down: []string{`DROP TABLE captured_entries;`},
		},
		{
			Id: "003_entry_meta",
			Up: []string{`
CREATE TABLE IF NOT EXISTS captured_fields (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    created_at DATETIME,
    updated_at DATETIME,
    deleted_at DATETIME,
    entry_id VARCHAR(64) NOT NULL,
    form_id VARCHAR(64) NOT NULL,
    uid VARCHAR(64) NOT NULL,
    meta_key VARCHAR(255) NOT NULL,
    meta_value TEXT
);`,
				`CREATE INDEX IF NOT EXISTS idx_captured_fields_entry_id ON captured_fields(entry_id);`,
				`CREATE INDEX IF NOT EXISTS idx_captured_fields_uid ON captured_fields(uid);`,
				`CREATE INDEX IF NOT EXISTS idx_captured_fields_deleted_at ON captured_fields(deleted_at);`,
			},
			Down: []string{`DROP TABLE captured_fields;`},
		},
		{
			Id: "004_settings",
			Up: []string{`
CREATE TABLE IF NOT EXISTS settings (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    created_at DATETIME,
    updated_at DATETIME,
    deleted_at DATETIME,
    key VARCHAR(255) NOT NULL,
    value TEXT
);`,
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_settings_key ON settings(key);`,
				`CREATE INDEX IF NOT EXISTS idx_settings_deleted_at ON settings(deleted_at);`,
			},
			Down: []string{`DROP TABLE settings;`},
		},
	},
}

func (s *DB) migrate() error {
	log := s.log.Function("migrate")

	sqlDB, err := s.SQL.DB()
	if err != nil {
		return log.Err("failed to get database from GORM", err)
	}

	applied, err := migrate.Exec(sqlDB, "sqlite3", migrations, migrate.Up)
	if err != nil {
		return log.Err("failed to apply migrations", err)
	}

	if applied > 0 {
		log.Info("Applied migrations", "count", applied)
	}
	return nil
}
