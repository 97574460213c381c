package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// CustomerSnapshot freezes the customer details a quotation was issued for.
// Quotations stay readable even when the underlying patient record changes,
// so the snapshot is persisted as JSONB next to the quotation itself.
type CustomerSnapshot struct {
	Name      string `json:"name"`
	Document  string `json:"document,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	PatientID string `json:"patient_id,omitempty"`
}

// Value marshals the snapshot into JSON for Postgres.
func (c CustomerSnapshot) Value() (driver.Value, error) {
	buf, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Scan decodes JSONB into the snapshot.
func (c *CustomerSnapshot) Scan(value interface{}) error {
	if value == nil {
		*c = CustomerSnapshot{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("customer snapshot: unsupported scan type %T", value)
	}

	var result CustomerSnapshot
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*c = result
	return nil
}
