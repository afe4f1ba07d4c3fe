// Package dataset loads and prepares the coffee sales data used by the chart
// workflow, and holds small tabular results in a Frame.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/smallnest/agentpatterns/display"
)

// Columns of a prepared coffee sales frame, in order.
var Columns = []string{"date", "time", "cash_type", "card", "price", "coffee_name", "quarter", "month", "year"}

// Frame is an in-memory table of string cells.
type Frame struct {
	Columns []string
	Rows    [][]string
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.Rows) }

// Sample returns up to n rows picked at random without replacement, in their
// original order.
func (f *Frame) Sample(n int, rng *rand.Rand) *Frame {
	if n >= len(f.Rows) {
		return &Frame{Columns: f.Columns, Rows: f.Rows}
	}
	if n < 0 {
		n = 0
	}
	picked := rng.Perm(len(f.Rows))[:n]
	keep := make([]bool, len(f.Rows))
	for _, i := range picked {
		keep[i] = true
	}
	out := &Frame{Columns: f.Columns, Rows: make([][]string, 0, n)}
	for i, row := range f.Rows {
		if keep[i] {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// Markdown renders the frame as a Markdown table.
func (f *Frame) Markdown() string {
	return display.MarkdownTable(f.Columns, f.Rows)
}

// WriteCSV writes the header and all rows as CSV.
func (f *Frame) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(f.Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(f.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// SaveCSV writes the frame to path, replacing any existing file.
func (f *Frame) SaveCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := f.WriteCSV(file); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}

var dateLayouts = []string{"2006-01-02", "1/2/06", "1/2/2006", "2006/01/02"}

var timeLayouts = []string{"2006-01-02 15:04:05", "2006-01-02T15:04:05Z07:00", "15:04:05", "15:04"}

// LoadCoffeeSales reads a coffee sales CSV and derives the prepared columns.
// The input needs a date column and a coffee_name column; the time is taken
// from "time" or "datetime" and the price from "price" or "money".
func LoadCoffeeSales(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer file.Close()
	return ReadCoffeeSales(file)
}

// ReadCoffeeSales is LoadCoffeeSales over an arbitrary reader.
func ReadCoffeeSales(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	col := func(names ...string) int {
		for _, n := range names {
			if i, ok := idx[n]; ok {
				return i
			}
		}
		return -1
	}

	dateCol := col("date")
	if dateCol < 0 {
		return nil, fmt.Errorf("dataset has no date column")
	}
	nameCol := col("coffee_name")
	if nameCol < 0 {
		return nil, fmt.Errorf("dataset has no coffee_name column")
	}
	timeCol := col("time", "datetime")
	priceCol := col("price", "money")
	cashCol := col("cash_type")
	cardCol := col("card")

	get := func(rec []string, i int) string {
		if i < 0 || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	frame := &Frame{Columns: Columns}
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		date, err := parseAny(dateLayouts, get(rec, dateCol))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid date: %w", line, err)
		}

		clock := ""
		if raw := get(rec, timeCol); raw != "" {
			ts, err := parseAny(timeLayouts, raw)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid time: %w", line, err)
			}
			clock = ts.Format("15:04")
		}

		price := ""
		if raw := get(rec, priceCol); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid price: %w", line, err)
			}
			price = strconv.FormatFloat(v, 'f', -1, 64)
		}

		frame.Rows = append(frame.Rows, []string{
			date.Format("1/2/06"),
			clock,
			get(rec, cashCol),
			get(rec, cardCol),
			price,
			get(rec, nameCol),
			strconv.Itoa((int(date.Month())-1)/3 + 1),
			strconv.Itoa(int(date.Month())),
			strconv.Itoa(date.Year()),
		})
	}
	return frame, nil
}

func parseAny(layouts []string, s string) (time.Time, error) {
	var firstErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
