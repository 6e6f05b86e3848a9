package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// Amount is a fixed-point decimal with two fractional digits, held as hundredths.
// It marshals to a JSON number such as 10.00 and is stored as an INTEGER column.
type Amount int64

// MaxAmount bounds a single caller-supplied amount. It keeps every value exact
// as a float64 and leaves room to add several amounts without overflowing int64.
const MaxAmount Amount = 1e15 - 1

// AmountFromFloat rounds f to the nearest hundredth, saturating at ±MaxAmount.
// NaN yields zero.
func AmountFromFloat(f float64) Amount {
	h := math.Round(f * 100)
	switch {
	case math.IsNaN(h):
		return 0
	case h > float64(MaxAmount):
		return MaxAmount
	case h < -float64(MaxAmount):
		return -MaxAmount
	}
	return Amount(h)
}

// InRange reports whether a lies within ±MaxAmount.
func (a Amount) InRange() bool {
	return a <= MaxAmount && a >= -MaxAmount
}

func (a Amount) Float64() float64 {
	return float64(a) / 100
}

func (a Amount) String() string {
	sign := ""
	v := int64(a)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts JSON numbers only; quoted numbers and values beyond
// MaxAmount are rejected.
func (a *Amount) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		return &json.UnmarshalTypeError{Value: "string", Type: reflect.TypeOf(Amount(0))}
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil || math.Abs(math.Round(f*100)) > float64(MaxAmount) {
		return &json.UnmarshalTypeError{Value: "number " + string(b), Type: reflect.TypeOf(Amount(0))}
	}
	*a = AmountFromFloat(f)
	return nil
}

func (a *Amount) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		*a = Amount(v)
	case float64:
		*a = Amount(math.Round(v))
	case nil:
		*a = 0
	default:
		return fmt.Errorf("scan amount: unsupported type %T", src)
	}
	return nil
}

func (a Amount) Value() (driver.Value, error) {
	return int64(a), nil
}
