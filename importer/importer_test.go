package importer

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"

	"github.com/rustyeddy/coinfolio/market"
)

type memStore struct {
	data map[market.Product]market.Series
}

func newMemStore() *memStore {
	return &memStore{data: make(map[market.Product]market.Series)}
}

func (m *memStore) Store(s market.Series, p market.Product) error {
	m.data[p] = append(m.data[p], s...)
	return nil
}

const sampleCSV = `time,low,high,open,close,volume
1709251200,60900,61600,61000,61500,9.1
1709254800,61000,62000,61500,61800,12.5
not-a-time,1,2,3,4,5
`

func TestImportCSV(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	im := New(store, zerolog.Nop())

	res, err := im.ImportCSV(strings.NewReader(sampleCSV), "BTC-USD")
	require.NoError(t, err)

	assert.Equal(t, 2, res.Rows)
	assert.Equal(t, 2, res.BadLines) // header + bad row

	series := store.data["BTC-USD"]
	require.Len(t, series, 2)
	assert.True(t, series[0].Time.Equal(time.Unix(1709251200, 0).UTC()))
	assert.Equal(t, 61500.0, series[0].Close)
}

func TestImportCSVAcceptsRFC3339(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	im := New(store, zerolog.Nop())

	csv := "2024-03-01T00:00:00Z,1,2,3,4,5\n"
	res, err := im.ImportCSV(strings.NewReader(csv), "ETH-USD")
	require.NoError(t, err)

	assert.Equal(t, 1, res.Rows)
	assert.Equal(t, 0, res.BadLines)
	assert.True(t, store.data["ETH-USD"][0].Time.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
}

func TestImportXZFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "btc.csv.xz")
	f, err := os.Create(path)
	require.NoError(t, err)

	w, err := xz.NewWriter(f)
	require.NoError(t, err)
	_, err = w.Write([]byte(sampleCSV))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	store := newMemStore()
	im := New(store, zerolog.Nop())

	res, err := im.ImportFile(path, "BTC-USD")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Rows)
	assert.Len(t, store.data["BTC-USD"], 2)
}

func TestImportZipBundle(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dumps.zip")
	f, err := os.Create(path)
	require.NoError(t, err)

	zw := zip.NewWriter(f)
	for name, body := range map[string]string{
		"BTC-USD.csv": "1709251200,1,2,3,4,5\n",
		"ETH-USD.csv": "1709251200,1,2,3,4,5\n1709254800,1,2,3,5,6\n",
		"notes.txt":   "ignore me",
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	store := newMemStore()
	im := New(store, zerolog.Nop())

	results, err := im.ImportZip(path)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, 1, results["BTC-USD"].Rows)
	assert.Equal(t, 2, results["ETH-USD"].Rows)
	assert.Len(t, store.data["ETH-USD"], 2)
}
