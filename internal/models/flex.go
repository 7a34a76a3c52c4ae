package models

import (
	"database/sql"
	"strconv"
	"strings"
)

// FlexFloat decodes a numeric feed value sent either as a JSON number or as a
// string (".275", "5.1"). Placeholders such as "-.--" decode as null.
type FlexFloat struct {
	Value float64
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(strings.Trim(string(data), `"`))
	switch s {
	case "", "null", "-", "-.--", "-.---", ".---":
		*f = FlexFloat{}
		return nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Unknown placeholder strings are treated as missing values.
		*f = FlexFloat{}
		return nil
	}
	*f = FlexFloat{Value: v, Valid: true}
	return nil
}

// NullFloat64 converts to the database nullable type
func (f FlexFloat) NullFloat64() sql.NullFloat64 {
	return sql.NullFloat64{Float64: f.Value, Valid: f.Valid}
}

// NullInt32 truncates to an integer nullable type
func (f FlexFloat) NullInt32() sql.NullInt32 {
	return sql.NullInt32{Int32: int32(f.Value), Valid: f.Valid}
}

// Float returns a FlexFloat holding v
func Float(v float64) FlexFloat {
	return FlexFloat{Value: v, Valid: true}
}
