package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DB is the global database connection
var DB *sqlx.DB

// Connect establishes a connection to the database. DB_TYPE selects the
// driver: "sqlite" (default) opens the file at DATABASE_PATH and creates the
// schema, "postgres" connects to DATABASE_URL and expects the schema to be
// provisioned already.
func Connect() error {
	dbType := os.Getenv("DB_TYPE")
	if dbType == "" {
		dbType = "sqlite"
	}

	if dbType == "postgres" {
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			return fmt.Errorf("DATABASE_URL environment variable is not set")
		}
		db, err := sqlx.Connect("postgres", dsn)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		DB = db
		return nil
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = filepath.Join("data", "sipschool.db")
	}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// SQLite doesn't support multiple writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	DB = db

	return initializeSchema()
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema() error {
	statements := []struct {
		name string
		ddl  string
	}{
		{"users", `
			CREATE TABLE IF NOT EXISTS users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				username TEXT UNIQUE NOT NULL,
				questions_per_day INTEGER DEFAULT 10,
				notification_enabled BOOLEAN DEFAULT true,
				notification_hour INTEGER DEFAULT 9,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`},
		{"questions", `
			CREATE TABLE IF NOT EXISTS questions (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				text TEXT NOT NULL,
				answer TEXT NOT NULL,
				category TEXT NOT NULL,
				difficulty INTEGER DEFAULT 1,
				explanation TEXT,
				generated BOOLEAN DEFAULT false,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`},
		{"review_states", `
			CREATE TABLE IF NOT EXISTS review_states (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL,
				question_id INTEGER NOT NULL,
				attempts INTEGER DEFAULT 0,
				correct_count INTEGER DEFAULT 0,
				ease_factor REAL DEFAULT 2.5,
				interval_days REAL DEFAULT 1,
				last_answered_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				next_review_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				category TEXT,
				difficulty INTEGER DEFAULT 1,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (user_id) REFERENCES users(id),
				FOREIGN KEY (question_id) REFERENCES questions(id),
				UNIQUE(user_id, question_id)
			)
		`},
		{"concepts", `
			CREATE TABLE IF NOT EXISTS concepts (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT UNIQUE NOT NULL,
				category TEXT NOT NULL,
				description TEXT,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`},
		{"concept_relationships", `
			CREATE TABLE IF NOT EXISTS concept_relationships (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				concept_id INTEGER NOT NULL,
				related_concept_id INTEGER NOT NULL,
				relationship_type TEXT NOT NULL,
				strength REAL DEFAULT 1.0,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (concept_id) REFERENCES concepts(id),
				FOREIGN KEY (related_concept_id) REFERENCES concepts(id),
				UNIQUE(concept_id, related_concept_id, relationship_type)
			)
		`},
		{"question_concepts", `
			CREATE TABLE IF NOT EXISTS question_concepts (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				question_id INTEGER NOT NULL,
				concept_id INTEGER NOT NULL,
				weight REAL DEFAULT 1.0,
				FOREIGN KEY (question_id) REFERENCES questions(id),
				FOREIGN KEY (concept_id) REFERENCES concepts(id),
				UNIQUE(question_id, concept_id)
			)
		`},
		{"user_knowledge", `
			CREATE TABLE IF NOT EXISTS user_knowledge (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL,
				concept_id INTEGER NOT NULL,
				mastery_level REAL DEFAULT 0.0,
				times_seen INTEGER DEFAULT 0,
				times_correct INTEGER DEFAULT 0,
				learning_velocity REAL DEFAULT 0.0,
				confidence_score REAL DEFAULT 0.0,
				last_seen_at TIMESTAMP,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (user_id) REFERENCES users(id),
				FOREIGN KEY (concept_id) REFERENCES concepts(id),
				UNIQUE(user_id, concept_id)
			)
		`},
		{"knowledge_gaps", `
			CREATE TABLE IF NOT EXISTS knowledge_gaps (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL,
				concept_id INTEGER NOT NULL,
				gap_score REAL NOT NULL,
				identified_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				addressed_at TIMESTAMP,
				FOREIGN KEY (user_id) REFERENCES users(id),
				FOREIGN KEY (concept_id) REFERENCES concepts(id),
				UNIQUE(user_id, concept_id)
			)
		`},
	}

	for _, stmt := range statements {
		if _, err := DB.Exec(stmt.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", stmt.name, err)
		}
	}

	return nil
}
