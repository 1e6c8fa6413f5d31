package database

import (
	"context"
	"database/sql"
	"fmt"
	"lexora/internal/platform/config"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
)

var DB *sql.DB

func Connect() {
	var err error
	DB, err = sql.Open("pgx", config.AppConfig.DBConnStr)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = DB.PingContext(ctx); err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	if err = Migrate(ctx, DB); err != nil {
		log.Fatalf("Error migrating database: %v", err)
	}

	fmt.Println("Successfully connected to PostgreSQL database!")
}

// Migrate creates the tables and indexes if they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}

func Close() {
	if DB != nil {
		DB.Close()
		fmt.Println("Database connection closed.")
	}
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id              TEXT PRIMARY KEY,
		username        TEXT NOT NULL UNIQUE,
		name            TEXT NOT NULL DEFAULT '',
		email           TEXT NOT NULL UNIQUE,
		hashed_password TEXT NOT NULL,
		role            TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
		avatar          TEXT NOT NULL DEFAULT '/default-avatar.png',
		bio             TEXT NOT NULL DEFAULT 'Passionate writer.' CHECK (char_length(bio) <= 200),
		is_active       BOOLEAN NOT NULL DEFAULT TRUE,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS blogs (
		id         TEXT PRIMARY KEY,
		title      TEXT NOT NULL,
		slug       TEXT NOT NULL,
		content    TEXT NOT NULL,
		excerpt    TEXT NOT NULL DEFAULT '',
		author_id  TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		tags       JSONB NOT NULL DEFAULT '[]',
		image      TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS blogs_created_at_idx ON blogs (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS blogs_author_created_at_idx ON blogs (author_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS blog_likes (
		blog_id    TEXT NOT NULL REFERENCES blogs(id) ON DELETE CASCADE,
		user_id    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (blog_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS blog_comments (
		id         TEXT PRIMARY KEY,
		blog_id    TEXT NOT NULL REFERENCES blogs(id) ON DELETE CASCADE,
		user_id    TEXT NOT NULL,
		username   TEXT NOT NULL,
		text       TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS blog_comments_blog_idx ON blog_comments (blog_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS activities (
		id        TEXT PRIMARY KEY,
		user_id   TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		type      TEXT NOT NULL CHECK (type IN ('login', 'create_blog')),
		timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS activities_timestamp_idx ON activities (timestamp DESC)`,
}
