// Package cache persists per-product candle series in a local sqlite file.
//
// Each product gets its own table named after the product id with the
// separator stripped (BTC-USD -> BTCUSD). Timestamps are the primary key,
// so storing is a set union that keeps the existing row on collision and is
// idempotent.
package cache

import (
	"database/sql"
	"fmt"
	"regexp"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/coinfolio/market"
)

const tableSchema = `
CREATE TABLE IF NOT EXISTS %s (
	time INTEGER PRIMARY KEY,
	low REAL NOT NULL,
	high REAL NOT NULL,
	open REAL NOT NULL,
	close REAL NOT NULL,
	volume REAL NOT NULL
);
`

// Table names come from product ids; refuse anything that could smuggle SQL.
var validTable = regexp.MustCompile(`^[A-Za-z0-9]+$`)

type Cache struct {
	db *sql.DB
}

// Open opens (creating if needed) the candle cache at path.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	return &Cache{db: db}, nil
}

// Load returns the persisted series for product, sorted ascending. A product
// that has never been stored is a normal negative result (ok=false, nil
// error); malformed stored rows are an error.
func (c *Cache) Load(product market.Product) (market.Series, bool, error) {
	table, err := tableName(product)
	if err != nil {
		return nil, false, err
	}

	exists, err := c.tableExists(table)
	if err != nil {
		return nil, false, err
	}
	if !exists {
		return nil, false, nil
	}

	rows, err := c.db.Query(fmt.Sprintf(
		`SELECT time, low, high, open, close, volume FROM %s ORDER BY time ASC`, table))
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var series market.Series
	for rows.Next() {
		var ts int64
		var cd market.Candle
		if err := rows.Scan(&ts, &cd.Low, &cd.High, &cd.Open, &cd.Close, &cd.Volume); err != nil {
			return nil, false, fmt.Errorf("malformed candle row in %s: %w", table, err)
		}
		cd.Time = time.Unix(ts, 0).UTC()
		series = append(series, cd)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	if len(series) == 0 {
		return nil, false, nil
	}
	return series, true, nil
}

// Store merges series into the persisted series for product. Existing rows
// win on timestamp collision, so storing the same series twice leaves the
// table unchanged.
func (c *Cache) Store(series market.Series, product market.Product) error {
	table, err := tableName(product)
	if err != nil {
		return err
	}

	if _, err := c.db.Exec(fmt.Sprintf(tableSchema, table)); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}

	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(fmt.Sprintf(
		`INSERT OR IGNORE INTO %s (time, low, high, open, close, volume) VALUES (?, ?, ?, ?, ?, ?)`, table))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, cd := range series {
		if _, err := stmt.Exec(cd.Time.Unix(), cd.Low, cd.High, cd.Open, cd.Close, cd.Volume); err != nil {
			return fmt.Errorf("store candle %s @ %s: %w", product, cd.Time, err)
		}
	}
	return tx.Commit()
}

// Products lists the products with a persisted series.
func (c *Cache) Products() ([]string, error) {
	rows, err := c.db.Query(`SELECT name FROM sqlite_master WHERE type='table' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) tableExists(table string) (bool, error) {
	var name string
	err := c.db.QueryRow(
		`SELECT name FROM sqlite_master WHERE type='table' AND name = ?`, table).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func tableName(product market.Product) (string, error) {
	table := product.TableName()
	if !validTable.MatchString(table) {
		return "", fmt.Errorf("invalid product id %q", product)
	}
	return table, nil
}
