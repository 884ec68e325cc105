package models

import (
	"fmt"
	"time"
)

// Customer is a B2B contractor account.
type Customer struct {
	ClientID   int64     `json:"client_id" gorm:"column:client_id;not null"`
	Name       string    `json:"name" gorm:"column:name;not null"`
	Email      string    `json:"email" gorm:"column:email;not null"`
	SignupDate time.Time `json:"signup_date" gorm:"column:signup_date;not null"`
}

func (c Customer) Validate() error {
	if c.ClientID <= 0 {
		return fmt.Errorf("client id must be positive, got %d", c.ClientID)
	}
	if c.Name == "" {
		return fmt.Errorf("customer %d: name is empty", c.ClientID)
	}
	return nil
}
