package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"hardware-sim/internal/models"
)

func sampleSnapshot() *models.Snapshot {
	client := int64(12345678)
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	return &models.Snapshot{
		Scenario: models.Scenario{
			ScenarioID:       "sc-1",
			Seed:             42,
			DemandFactor:     1,
			AssignmentPolicy: models.AssignInvoiceOnly,
			TransactionCount: 2,
			CustomerCount:    1,
			GeneratedAt:      time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC),
		},
		Products: []models.Product{
			{ProductID: 101, Name: "Cement 50kg", Category: models.CategoryStructural, Cost: 5, Price: 8.5},
		},
		Customers: []models.Customer{
			{ClientID: client, Name: "Builders, Inc.", Email: "ops@builders.test", SignupDate: day.AddDate(-2, 0, 0)},
		},
		Transactions: []models.Transaction{
			{Date: day, Type: models.DocInvoice, ClientID: &client, ProductID: 101, Quantity: 2, TotalAmount: 17},
			{Date: day, Type: models.DocReceipt, ProductID: 101, Quantity: 1, TotalAmount: 8.5},
		},
	}
}

func TestTables(t *testing.T) {
	tables := Tables(sampleSnapshot())
	require.Len(t, tables, 4)

	names := []string{tables[0].Name, tables[1].Name, tables[2].Name, tables[3].Name}
	assert.Equal(t, []string{"products", "customers", "transactions", "scenario"}, names)

	for _, tb := range tables {
		for _, row := range tb.Rows {
			assert.Len(t, row, len(tb.Header), "table %s", tb.Name)
		}
	}
	assert.Nil(t, tables[2].Rows[1][2], "receipt client must be empty")
}

func TestWriteCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	paths, err := WriteCSV(dir, sampleSnapshot())
	require.NoError(t, err)
	require.Len(t, paths, 4)

	f, err := os.Open(filepath.Join(dir, "transactions.csv"))
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"date", "type", "client_id", "product_id", "quantity", "total_amount"}, records[0])
	assert.Equal(t, []string{"2024-03-04", "Invoice", "12345678", "101", "2", "17"}, records[1])
	assert.Equal(t, []string{"2024-03-04", "Receipt", "", "101", "1", "8.5"}, records[2])
}

func TestWriteTableCSV_QuotesCommas(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTableCSV(&buf, Tables(sampleSnapshot())[1]))
	assert.Contains(t, buf.String(), `"Builders, Inc."`)
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{7, "7"},
		{int64(99999999), "99999999"},
		{12.25, "12.25"},
		{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "2024-01-01"},
		{time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC), "2024-01-01T09:30:00Z"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatCell(tt.in))
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleSnapshot()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"products", "customers", "transactions", "scenario"}, f.GetSheetList())

	rows, err := f.GetRows("products")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "product_id", rows[0][0])
	assert.Equal(t, "Cement 50kg", rows[1][1])

	txRows, err := f.GetRows("transactions")
	require.NoError(t, err)
	assert.Len(t, txRows, 3)
}

func TestWriteXLSXFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.xlsx")
	require.NoError(t, WriteXLSXFile(path, sampleSnapshot()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
