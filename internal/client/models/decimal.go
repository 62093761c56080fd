package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Decimal is a monetary or rating value. The API serialises decimals as
// strings ("12.50"), older endpoints as JSON numbers; both decode.
type Decimal float64

func (d Decimal) Float64() float64 { return float64(d) }

// String formats with two fraction digits.
func (d Decimal) String() string {
	return strconv.FormatFloat(float64(d), 'f', 2, 64)
}

func (d Decimal) MarshalJSON() ([]byte, error) {
	if !d.finite() {
		return nil, fmt.Errorf("decimal %v is not finite", float64(d))
	}
	return []byte(strconv.FormatFloat(float64(d), 'f', -1, 64)), nil
}

func (d *Decimal) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := ParseDecimal(s)
		if err != nil {
			return err
		}
		*d = v
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("decimal: %w", err)
	}
	*d = Decimal(f)
	return nil
}

func (d Decimal) finite() bool {
	return !math.IsInf(float64(d), 0) && !math.IsNaN(float64(d))
}

// ParseDecimal parses user or wire input such as "1,299.99" or " 12.5 ".
// Infinities and NaN are rejected.
func ParseDecimal(s string) (Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("decimal %q: %w", s, err)
	}
	if d := Decimal(f); !d.finite() {
		return 0, fmt.Errorf("decimal %q: not a finite number", s)
	}
	return Decimal(f), nil
}

// FormatOptional renders a nullable decimal, "-" when absent.
func FormatOptional(d *Decimal) string {
	if d == nil {
		return "-"
	}
	return d.String()
}
