package models

import (
	"fmt"
	"time"
)

// DocType is the sales document kind: Invoice for B2B, Receipt for walk-in.
type DocType string

const (
	DocInvoice DocType = "Invoice"
	DocReceipt DocType = "Receipt"
)

func (d DocType) Valid() bool {
	return d == DocInvoice || d == DocReceipt
}

const (
	MinQuantity = 1
	MaxQuantity = 20
)

type Transaction struct {
	Date        time.Time `json:"date" gorm:"column:date;not null"`
	Type        DocType   `json:"type" gorm:"column:type;not null"`
	ClientID    *int64    `json:"client_id" gorm:"column:client_id"`
	ProductID   int       `json:"product_id" gorm:"column:product_id;not null"`
	Quantity    int       `json:"quantity" gorm:"column:quantity;not null"`
	TotalAmount float64   `json:"total_amount" gorm:"column:total_amount;not null"`
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return fmt.Errorf("unknown document type %q", t.Type)
	}
	if t.Quantity < MinQuantity || t.Quantity > MaxQuantity {
		return fmt.Errorf("quantity %d outside [%d, %d]", t.Quantity, MinQuantity, MaxQuantity)
	}
	if t.ProductID <= 0 {
		return fmt.Errorf("product id must be positive, got %d", t.ProductID)
	}
	return nil
}

// AssignmentPolicy decides which transactions carry a customer reference.
type AssignmentPolicy string

const (
	// AssignInvoiceOnly leaves Receipt rows anonymous (null client_id).
	AssignInvoiceOnly AssignmentPolicy = "invoice-only"
	// AssignAlways gives every row a customer regardless of document type.
	AssignAlways AssignmentPolicy = "always"
)

func (p AssignmentPolicy) Valid() bool {
	return p == AssignInvoiceOnly || p == AssignAlways
}
