package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

const transactionsDDL = `CREATE TABLE transactions (
	id INTEGER PRIMARY KEY,
	product_id INTEGER NOT NULL,
	product_name TEXT NOT NULL,
	brand TEXT NOT NULL,
	category TEXT NOT NULL,
	color TEXT NOT NULL,
	action TEXT NOT NULL,
	qty_delta INTEGER NOT NULL,
	unit_price REAL,
	notes TEXT,
	ts DATETIME NOT NULL
)`

// Transaction actions.
const (
	ActionRestock     = "restock"
	ActionSale        = "sale"
	ActionReturn      = "return"
	ActionPriceUpdate = "price_update"
)

type product struct {
	id       int
	name     string
	brand    string
	category string
	color    string
	price    float64
}

var catalog = []product{
	{1, "Aurora Running Shoe", "Stride", "footwear", "red", 89.99},
	{2, "Summit Hiking Boot", "Peakline", "footwear", "brown", 129.50},
	{3, "Breeze Tee", "Cotton & Co", "apparel", "white", 19.99},
	{4, "Breeze Tee", "Cotton & Co", "apparel", "black", 19.99},
	{5, "Trail Backpack 30L", "Peakline", "accessories", "green", 74.00},
	{6, "City Cap", "Stride", "accessories", "blue", 24.50},
	{7, "Rain Shell Jacket", "Northwind", "apparel", "blue", 149.00},
	{8, "Aurora Running Shoe", "Stride", "footwear", "black", 89.99},
}

// Seed defines which demo rows are generated. The same Seed always yields the
// same rows.
type Seed struct {
	Start time.Time
	Days  int
}

// DefaultSeed covers the first quarter of 2025.
var DefaultSeed = Seed{Start: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC), Days: 90}

type txn struct {
	p      product
	action string
	qty    int
	price  float64
	notes  string
	ts     time.Time
}

func (s Seed) transactions() []txn {
	var out []txn
	prices := make(map[int]float64, len(catalog))
	for _, p := range catalog {
		prices[p.id] = p.price
		out = append(out, txn{p: p, action: ActionRestock, qty: 50, price: p.price, notes: "initial stock", ts: s.Start})
	}

	for day := 1; day <= s.Days; day++ {
		ts := s.Start.AddDate(0, 0, day)
		for i, p := range catalog {
			// Spread sales unevenly across products and days.
			qty := (day*(i+3)+i*i)%4 + (i % 3)
			if qty > 0 {
				out = append(out, txn{p: p, action: ActionSale, qty: -qty, price: prices[p.id], ts: ts.Add(time.Duration(i) * time.Hour)})
			}
			if (day+i)%17 == 0 {
				out = append(out, txn{p: p, action: ActionReturn, qty: 1, price: prices[p.id], notes: "customer return", ts: ts.Add(time.Duration(i)*time.Hour + 30*time.Minute)})
			}
			if (day+2*i)%30 == 0 {
				prices[p.id] = float64(int(prices[p.id]*95)) / 100
				out = append(out, txn{p: p, action: ActionPriceUpdate, qty: 0, price: prices[p.id], notes: "5% markdown", ts: ts.Add(time.Duration(i)*time.Hour + 45*time.Minute)})
			}
			if day%30 == 0 {
				out = append(out, txn{p: p, action: ActionRestock, qty: 40, price: prices[p.id], notes: "monthly restock", ts: ts.Add(-time.Hour)})
			}
		}
	}
	return out
}

// CreateTransactionsDB creates the demo database at path, replacing any
// existing file, and seeds it with DefaultSeed.
func CreateTransactionsDB(ctx context.Context, path string) error {
	return CreateTransactionsDBWithSeed(ctx, path, DefaultSeed)
}

// CreateTransactionsDBWithSeed is CreateTransactionsDB with an explicit seed.
func CreateTransactionsDBWithSeed(ctx context.Context, path string, seed Seed) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove existing database: %w", err)
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("unable to open database: %w", err)
	}
	defer conn.Close()

	return seedTransactions(ctx, conn, seed)
}

func seedTransactions(ctx context.Context, conn *sql.DB, seed Seed) error {
	if _, err := conn.ExecContext(ctx, transactionsDDL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO transactions
		(product_id, product_name, brand, category, color, action, qty_delta, unit_price, notes, ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range seed.transactions() {
		var notes sql.NullString
		if t.notes != "" {
			notes = sql.NullString{String: t.notes, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, t.p.id, t.p.name, t.p.brand, t.p.category, t.p.color,
			t.action, t.qty, t.price, notes, t.ts.Format("2006-01-02 15:04:05")); err != nil {
			return fmt.Errorf("failed to insert transaction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed data: %w", err)
	}
	return nil
}
