package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/baslie/yandex-reviews-to-md/models"
)

// ReviewStore archives fetched review batches to PostgreSQL.
type ReviewStore struct {
	db *sql.DB
}

// NewReviewStore opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use ReviewStore.
func NewReviewStore(dsn string) (*ReviewStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 5; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	rs := &ReviewStore{db: db}
	if err := rs.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return rs, nil
}

func (rs *ReviewStore) migrate() error {
	_, err := rs.db.Exec(`
		CREATE TABLE IF NOT EXISTS companies (
			id           BIGINT PRIMARY KEY,
			name         TEXT         NOT NULL DEFAULT '',
			rating       NUMERIC(3,1) NOT NULL DEFAULT 0,
			rating_count INT          NOT NULL DEFAULT 0,
			fetched_at   TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS reviews (
			id            SERIAL PRIMARY KEY,
			company_id    BIGINT      NOT NULL REFERENCES companies(id),
			author        TEXT        NOT NULL DEFAULT '',
			icon_url      TEXT        NOT NULL DEFAULT '',
			published_at  TIMESTAMPTZ NOT NULL,
			body          TEXT        NOT NULL DEFAULT '',
			stars         INT         NOT NULL DEFAULT 0,
			company_reply TEXT        NOT NULL DEFAULT '',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (company_id, author, published_at)
		);

		CREATE INDEX IF NOT EXISTS idx_reviews_company ON reviews(company_id);
		CREATE INDEX IF NOT EXISTS idx_reviews_stars   ON reviews(stars);
	`)
	return err
}

// Save upserts the company summary and batch-inserts its reviews. Reviews
// already archived in a previous run are skipped.
func (rs *ReviewStore) Save(result *models.Result) error {
	c := result.Company
	_, err := rs.db.Exec(`
		INSERT INTO companies (id, name, rating, rating_count, fetched_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    rating = EXCLUDED.rating,
		    rating_count = EXCLUDED.rating_count,
		    fetched_at = EXCLUDED.fetched_at
	`, c.ID, c.Name, c.Rating, c.RatingCount, result.FetchedAt)
	if err != nil {
		return fmt.Errorf("postgres: upsert company: %w", err)
	}

	const batchSize = 50
	for i := 0; i < len(result.Reviews); i += batchSize {
		end := i + batchSize
		if end > len(result.Reviews) {
			end = len(result.Reviews)
		}
		if err := rs.insertBatch(c.ID, result.Reviews[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (rs *ReviewStore) insertBatch(companyID int64, batch []models.Review) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*7)

	for idx, r := range batch {
		base := idx * 7
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7))
		valueArgs = append(valueArgs,
			companyID, r.Author, r.IconURL, r.Published(), r.Text, r.Stars, r.CompanyReply)
	}

	query := fmt.Sprintf(`
		INSERT INTO reviews (company_id, author, icon_url, published_at, body, stars, company_reply)
		VALUES %s
		ON CONFLICT (company_id, author, published_at) DO NOTHING
	`, strings.Join(valueStrings, ","))

	_, err := rs.db.Exec(query, valueArgs...)
	if err != nil {
		return fmt.Errorf("postgres: insert reviews: %w", err)
	}
	return nil
}

// Close releases the database connection.
func (rs *ReviewStore) Close() error {
	return rs.db.Close()
}
