package clientdata

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewRepository(db)
	require.NoError(t, repo.InitSchema())
	return repo
}

func TestStoreAndGetIfFresh(t *testing.T) {
	repo := setupRepo(t)

	data := map[string]interface{}{
		"name":  "DBS Group Holdings",
		"price": 25.40,
	}
	require.NoError(t, repo.Store("yahoo_info", "D05.SI", data, time.Hour))

	raw, err := repo.GetIfFresh("yahoo_info", "D05.SI")
	require.NoError(t, err)
	require.NotNil(t, raw)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &parsed))
	assert.Equal(t, "DBS Group Holdings", parsed["name"])
}

func TestGetIfFresh_MissOrExpired(t *testing.T) {
	repo := setupRepo(t)

	raw, err := repo.GetIfFresh("yahoo_info", "missing")
	require.NoError(t, err)
	assert.Nil(t, raw)

	require.NoError(t, repo.Store("yahoo_info", "D05.SI", "stale", -time.Minute))
	raw, err = repo.GetIfFresh("yahoo_info", "D05.SI")
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestGet_ReturnsStaleData(t *testing.T) {
	repo := setupRepo(t)

	require.NoError(t, repo.Store("yahoo_daily", "D05.SI:30d", []float64{1, 2, 3}, -time.Minute))

	raw, err := repo.Get("yahoo_daily", "D05.SI:30d")
	require.NoError(t, err)
	require.NotNil(t, raw)

	var closes []float64
	require.NoError(t, json.Unmarshal(raw, &closes))
	assert.Equal(t, []float64{1, 2, 3}, closes)
}

func TestBinaryRoundtrip(t *testing.T) {
	repo := setupRepo(t)

	type payload struct {
		Tickers []string
		Matrix  [][]float64
	}
	stored := payload{
		Tickers: []string{"C52.SI", "D05.SI"},
		Matrix:  [][]float64{{1, 0.9}, {0.9, 1}},
	}
	require.NoError(t, repo.StoreBinary("corr_matrix", "C52.SI,D05.SI", stored, time.Hour))

	var loaded payload
	ok, err := repo.GetBinaryIfFresh("corr_matrix", "C52.SI,D05.SI", &loaded)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, stored, loaded)

	ok, err = repo.GetBinaryIfFresh("corr_matrix", "missing", &loaded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInvalidTableRejected(t *testing.T) {
	repo := setupRepo(t)

	err := repo.Store("positions; DROP TABLE yahoo_info", "k", "v", time.Hour)
	assert.Error(t, err)

	_, err = repo.Get("unknown_table", "k")
	assert.Error(t, err)
}

func TestDeleteExpired(t *testing.T) {
	repo := setupRepo(t)

	require.NoError(t, repo.Store("yahoo_hourly", "fresh", "v", time.Hour))
	require.NoError(t, repo.Store("yahoo_hourly", "stale", "v", -time.Minute))

	deleted, err := repo.DeleteExpired("yahoo_hourly")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	results, err := repo.DeleteAllExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(0), results["yahoo_hourly"])
}
