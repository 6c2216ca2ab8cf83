package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/mslee98/crawl/models"
)

// PostgresWriter persists final listings to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS listings (
			id         SERIAL PRIMARY KEY,
			url        TEXT        UNIQUE NOT NULL,
			title      TEXT        NOT NULL,
			raw_price  TEXT        NOT NULL DEFAULT '',
			price      BIGINT,
			location   TEXT        NOT NULL DEFAULT '',
			posted_at  TEXT        NOT NULL DEFAULT '',
			status     VARCHAR(20) NOT NULL DEFAULT '판매중',
			category   TEXT        NOT NULL DEFAULT '',
			scraped_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_listings_price    ON listings(price);
		CREATE INDEX IF NOT EXISTS idx_listings_status   ON listings(status);
		CREATE INDEX IF NOT EXISTS idx_listings_category ON listings(category);
	`)
	return err
}

// Write upserts all listings keyed by URL, so re-running a crawl refreshes
// existing rows instead of duplicating them.
func (pw *PostgresWriter) Write(records []*models.ListingRecord) error {
	if len(records) == 0 {
		return nil
	}

	const batchSize = 50
	for i := 0; i < len(records); i += batchSize {
		end := i + batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := pw.insertBatch(records[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []*models.ListingRecord) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*9)

	for idx, r := range batch {
		base := idx * 9
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9))
		valueArgs = append(valueArgs,
			r.URL, r.Title, r.RawPrice, r.Price, r.Location,
			r.PostedAt, string(r.Status), r.Category, r.ScrapedAt)
	}

	query := fmt.Sprintf(`
		INSERT INTO listings (url, title, raw_price, price, location, posted_at, status, category, scraped_at)
		VALUES %s
		ON CONFLICT (url) DO UPDATE SET
			title      = EXCLUDED.title,
			raw_price  = EXCLUDED.raw_price,
			price      = EXCLUDED.price,
			location   = EXCLUDED.location,
			posted_at  = EXCLUDED.posted_at,
			status     = EXCLUDED.status,
			category   = EXCLUDED.category,
			scraped_at = EXCLUDED.scraped_at
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	return err
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchAll retrieves all stored listings, oldest first.
func (pw *PostgresWriter) FetchAll() ([]*models.ListingRecord, error) {
	rows, err := pw.db.Query(`
		SELECT url, title, raw_price, price, location, posted_at, status, category, scraped_at
		FROM listings
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var records []*models.ListingRecord
	for rows.Next() {
		r := &models.ListingRecord{}
		var price sql.NullInt64
		var status string
		if err := rows.Scan(
			&r.URL, &r.Title, &r.RawPrice, &price, &r.Location,
			&r.PostedAt, &status, &r.Category, &r.ScrapedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		if price.Valid {
			v := price.Int64
			r.Price = &v
		}
		r.Status = models.Status(status)
		records = append(records, r)
	}
	return records, rows.Err()
}
