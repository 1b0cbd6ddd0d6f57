// Package clientdata provides persistent caching for external API client
// responses. Provider payloads are stored as JSON blobs, the correlation
// matrix as a msgpack blob, all with expiration timestamps for cache-first
// behavior.
package clientdata

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// AllTables lists all tables in client_data.db for cleanup operations.
var AllTables = []string{
	"yahoo_info",
	"yahoo_daily",
	"yahoo_hourly",
	"earnings_dates",
	"corr_matrix",
}

// validTables is a set for O(1) table name validation.
var validTables = func() map[string]bool {
	m := make(map[string]bool, len(AllTables))
	for _, t := range AllTables {
		m[t] = true
	}
	return m
}()

// Repository provides cache operations for client data.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new client data repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// InitSchema creates the cache tables when they do not exist yet.
func (r *Repository) InitSchema() error {
	for _, table := range AllTables {
		stmt := fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %s (key TEXT PRIMARY KEY, data BLOB NOT NULL, expires_at INTEGER NOT NULL)",
			table,
		)
		if _, err := r.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}

// validateTable ensures the table name is in our allowed list.
// This prevents SQL injection through table names.
func validateTable(table string) error {
	if !validTables[table] {
		return fmt.Errorf("invalid table name: %s", table)
	}
	return nil
}

// Store saves data as JSON with expiration = now + ttl.
func (r *Repository) Store(table, key string, data interface{}, ttl time.Duration) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}
	return r.storeBlob(table, key, jsonData, ttl)
}

// StoreBinary saves data as a msgpack blob with expiration = now + ttl.
// Used for the correlation matrix cache, where the payload is a dense
// numeric structure rather than a provider response.
func (r *Repository) StoreBinary(table, key string, data interface{}, ttl time.Duration) error {
	packed, err := msgpack.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to msgpack-encode data: %w", err)
	}
	return r.storeBlob(table, key, packed, ttl)
}

func (r *Repository) storeBlob(table, key string, blob []byte, ttl time.Duration) error {
	if err := validateTable(table); err != nil {
		return err
	}

	expiresAt := time.Now().Add(ttl).Unix()

	query := fmt.Sprintf(
		"INSERT OR REPLACE INTO %s (key, data, expires_at) VALUES (?, ?, ?)",
		table,
	)
	if _, err := r.db.Exec(query, key, blob, expiresAt); err != nil {
		return fmt.Errorf("failed to store data in %s: %w", table, err)
	}

	return nil
}

// GetIfFresh returns data only if expires_at > now, nil otherwise.
// Returns nil, nil if the key doesn't exist or data is expired.
func (r *Repository) GetIfFresh(table, key string) (json.RawMessage, error) {
	blob, err := r.getBlobIfFresh(table, key)
	if err != nil || blob == nil {
		return nil, err
	}
	return json.RawMessage(blob), nil
}

// GetBinaryIfFresh decodes a fresh msgpack blob into dest.
// Returns (false, nil) on a miss or expired entry.
func (r *Repository) GetBinaryIfFresh(table, key string, dest interface{}) (bool, error) {
	blob, err := r.getBlobIfFresh(table, key)
	if err != nil || blob == nil {
		return false, err
	}
	if err := msgpack.Unmarshal(blob, dest); err != nil {
		return false, fmt.Errorf("failed to msgpack-decode data from %s: %w", table, err)
	}
	return true, nil
}

func (r *Repository) getBlobIfFresh(table, key string) ([]byte, error) {
	if err := validateTable(table); err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	query := fmt.Sprintf("SELECT data FROM %s WHERE key = ? AND expires_at > ?", table)

	var data []byte
	err := r.db.QueryRow(query, key, now).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get data from %s: %w", table, err)
	}

	return data, nil
}

// Get returns data regardless of expiration status.
// Stale data is better than no data when the provider call fails.
// Returns nil, nil if the key doesn't exist.
func (r *Repository) Get(table, key string) (json.RawMessage, error) {
	if err := validateTable(table); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT data FROM %s WHERE key = ?", table)

	var data []byte
	err := r.db.QueryRow(query, key).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get data from %s: %w", table, err)
	}

	return json.RawMessage(data), nil
}

// DeleteExpired removes all rows where expires_at < now.
// Returns the number of rows deleted.
func (r *Repository) DeleteExpired(table string) (int64, error) {
	if err := validateTable(table); err != nil {
		return 0, err
	}

	now := time.Now().Unix()
	result, err := r.db.Exec(fmt.Sprintf("DELETE FROM %s WHERE expires_at < ?", table), now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired from %s: %w", table, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected for %s: %w", table, err)
	}

	return deleted, nil
}

// DeleteAllExpired removes all expired entries from all tables.
// Returns a map of table name to number of rows deleted.
func (r *Repository) DeleteAllExpired() (map[string]int64, error) {
	results := make(map[string]int64)

	for _, table := range AllTables {
		deleted, err := r.DeleteExpired(table)
		if err != nil {
			return results, fmt.Errorf("failed to delete expired from %s: %w", table, err)
		}
		results[table] = deleted
	}

	return results, nil
}
