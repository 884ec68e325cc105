// Package export writes a stored scenario in formats BI tools read.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"hardware-sim/internal/models"
	"hardware-sim/internal/store"
)

const dateLayout = "2006-01-02"

// Table is one exported sheet: a header row followed by typed cells.
type Table struct {
	Name   string
	Header []string
	Rows   [][]any
}

// Tables flattens a snapshot into its four tables, in storage order.
func Tables(snap *models.Snapshot) []Table {
	products := Table{
		Name:   store.TableProducts,
		Header: []string{"product_id", "name", "category", "cost", "price"},
	}
	for _, p := range snap.Products {
		products.Rows = append(products.Rows, []any{p.ProductID, p.Name, string(p.Category), p.Cost, p.Price})
	}

	customers := Table{
		Name:   store.TableCustomers,
		Header: []string{"client_id", "name", "email", "signup_date"},
	}
	for _, c := range snap.Customers {
		customers.Rows = append(customers.Rows, []any{c.ClientID, c.Name, c.Email, c.SignupDate})
	}

	txs := Table{
		Name:   store.TableTransactions,
		Header: []string{"date", "type", "client_id", "product_id", "quantity", "total_amount"},
	}
	for _, t := range snap.Transactions {
		var client any
		if t.ClientID != nil {
			client = *t.ClientID
		}
		txs.Rows = append(txs.Rows, []any{t.Date, string(t.Type), client, t.ProductID, t.Quantity, t.TotalAmount})
	}

	sc := snap.Scenario
	scenario := Table{
		Name: store.TableScenario,
		Header: []string{
			"scenario_id", "seed", "demand_factor", "price_increase",
			"assignment_policy", "transaction_count", "customer_count", "generated_at",
		},
		Rows: [][]any{{
			sc.ScenarioID, sc.Seed, sc.DemandFactor, sc.PriceIncrease,
			string(sc.AssignmentPolicy), sc.TransactionCount, sc.CustomerCount, sc.GeneratedAt,
		}},
	}

	return []Table{products, customers, txs, scenario}
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 {
			return x.Format(dateLayout)
		}
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}

// WriteTableCSV writes one table with a header row.
func WriteTableCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	record := make([]string, len(t.Header))
	for _, row := range t.Rows {
		for i, cell := range row {
			record[i] = formatCell(cell)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSV writes <dir>/<table>.csv for every table and returns the paths.
func WriteCSV(dir string, snap *models.Snapshot) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	var paths []string
	for _, t := range Tables(snap) {
		path := filepath.Join(dir, t.Name+".csv")
		if err := writeFile(path, t); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, t Table) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := WriteTableCSV(f, t); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Workbook builds an xlsx workbook with one sheet per table.
func Workbook(snap *models.Snapshot) (*excelize.File, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	if err != nil {
		f.Close()
		return nil, err
	}
	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		f.Close()
		return nil, err
	}

	for i, t := range Tables(snap) {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", t.Name); err != nil {
				f.Close()
				return nil, err
			}
		} else if _, err := f.NewSheet(t.Name); err != nil {
			f.Close()
			return nil, err
		}
		if err := writeSheet(f, t, headerStyle, dateStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %s: %w", t.Name, err)
		}
	}
	return f, nil
}

func writeSheet(f *excelize.File, t Table, headerStyle, dateStyle int) error {
	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(t.Name, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.ColumnNumberToName(len(t.Header))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(t.Name, "A1", last+"1", headerStyle); err != nil {
		return err
	}

	for r, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		values := make([]any, len(row))
		copy(values, row)
		if err := f.SetSheetRow(t.Name, cell, &values); err != nil {
			return err
		}
	}

	for c, v := range firstRow(t) {
		if _, ok := v.(time.Time); !ok {
			continue
		}
		col, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(t.Name, col+"2", fmt.Sprintf("%s%d", col, len(t.Rows)+1), dateStyle); err != nil {
			return err
		}
	}
	return nil
}

func firstRow(t Table) []any {
	if len(t.Rows) == 0 {
		return nil
	}
	return t.Rows[0]
}

// WriteXLSX streams the workbook to w.
func WriteXLSX(w io.Writer, snap *models.Snapshot) error {
	f, err := Workbook(snap)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

func WriteXLSXFile(path string, snap *models.Snapshot) error {
	f, err := Workbook(snap)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
