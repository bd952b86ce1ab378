// Package importer seeds the candle cache from on-disk dumps: plain CSV
// files, xz-compressed CSV, and zip bundles of CSVs named after their
// product.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/ulikunitz/xz"
	"github.com/xyproto/unzip"

	"github.com/rustyeddy/coinfolio/market"
)

// Store is the candle cache contract the importer needs.
type Store interface {
	Store(series market.Series, product market.Product) error
}

// Result summarizes one import.
type Result struct {
	Rows     int // candles stored
	BadLines int // rows skipped as unparseable
}

type Importer struct {
	store Store
	log   zerolog.Logger
}

func New(store Store, log zerolog.Logger) *Importer {
	return &Importer{store: store, log: log}
}

// ImportFile imports a single dump into the cache. ".xz" files are
// decompressed on the fly; anything else is read as plain CSV. Rows are
// "time,low,high,open,close,volume" with time as unix seconds or RFC3339;
// a header line and bad rows are skipped, not fatal.
func (im *Importer) ImportFile(path string, product market.Product) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			return Result{}, fmt.Errorf("open xz stream %s: %w", path, err)
		}
		r = xr
	}
	return im.ImportCSV(r, product)
}

// ImportZip extracts a zip bundle to a scratch directory and imports every
// contained CSV, deriving each product from the file name ("BTC-USD.csv").
func (im *Importer) ImportZip(path string) (map[market.Product]Result, error) {
	dir, err := os.MkdirTemp("", "coinfolio-import-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	if err := unzip.Extract(path, dir); err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}

	results := make(map[market.Product]Result)
	err = filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(p, ".csv") {
			return err
		}
		product := market.Product(strings.TrimSuffix(filepath.Base(p), ".csv"))
		res, err := im.ImportFile(p, product)
		if err != nil {
			return fmt.Errorf("import %s: %w", p, err)
		}
		results[product] = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// ImportCSV parses candle rows from r and stores them under product.
func (im *Importer) ImportCSV(r io.Reader, product market.Product) (Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var series market.Series
	var res Result
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return res, err
		}
		candle, ok := parseRow(record)
		if !ok {
			res.BadLines++
			continue
		}
		series = append(series, candle)
	}
	// Header lines land in BadLines; only warn when actual data rows
	// failed too.
	if res.BadLines > 1 || (res.BadLines == 1 && len(series) == 0) {
		im.log.Warn().
			Str("product", string(product)).
			Int("bad_lines", res.BadLines).
			Msg("skipped unparseable candle rows")
	}

	if len(series) == 0 {
		return res, nil
	}
	series = series.Dedupe()
	series.Sort()
	if err := im.store.Store(series, product); err != nil {
		return res, err
	}
	res.Rows = len(series)
	return res, nil
}

func parseRow(record []string) (market.Candle, bool) {
	if len(record) < 6 {
		return market.Candle{}, false
	}

	ts, ok := parseTime(strings.TrimSpace(record[0]))
	if !ok {
		return market.Candle{}, false
	}

	vals := make([]float64, 5)
	for i := 0; i < 5; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(record[i+1]), 64)
		if err != nil {
			return market.Candle{}, false
		}
		vals[i] = v
	}

	return market.Candle{
		Time:   ts,
		Low:    vals[0],
		High:   vals[1],
		Open:   vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, true
}

func parseTime(s string) (time.Time, bool) {
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}
