package model

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
)

// PartialDate is a date that may omit the day, or both the month and the day.
// A zero month or day means the component is absent.
type PartialDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// NewPartialDate builds a partial date from its components; month and day
// may be zero.
func NewPartialDate(year, month, day int) *PartialDate {
	return &PartialDate{Year: year, Month: month, Day: day}
}

// AsRegistryMap returns the registry's wire representation:
//
//	{"year": {"value": "2003"}, "month": nil, "day": nil}
//
// Absent finer components are nil, not omitted.
func (pd *PartialDate) AsRegistryMap() map[string]interface{} {
	if pd == nil || pd.Year == 0 {
		return nil
	}
	m := map[string]interface{}{
		"year":  map[string]string{"value": fmt.Sprintf("%04d", pd.Year)},
		"month": nil,
		"day":   nil,
	}
	if pd.Month != 0 {
		m["month"] = map[string]string{"value": fmt.Sprintf("%02d", pd.Month)}
	}
	if pd.Day != 0 {
		m["day"] = map[string]string{"value": fmt.Sprintf("%02d", pd.Day)}
	}
	return m
}

// PartialDateFromMap parses the registry's wire representation. Returns nil
// for a nil or empty map.
func PartialDateFromMap(m map[string]interface{}) *PartialDate {
	if len(m) == 0 {
		return nil
	}
	pd := &PartialDate{}
	for field, dst := range map[string]*int{"year": &pd.Year, "month": &pd.Month, "day": &pd.Day} {
		v, ok := m[field].(map[string]interface{})
		if !ok {
			continue
		}
		if s, ok := v["value"].(string); ok {
			if n, err := strconv.Atoi(s); err == nil {
				*dst = n
			}
		}
	}
	if pd.Year == 0 && pd.Month == 0 && pd.Day == 0 {
		return nil
	}
	return pd
}

// Equal reports whether both dates carry the same components. Either side
// may be nil.
func (pd *PartialDate) Equal(other *PartialDate) bool {
	if pd == nil || other == nil {
		return pd == other
	}
	return pd.Year == other.Year && pd.Month == other.Month && pd.Day == other.Day
}

func (pd *PartialDate) String() string {
	if pd == nil || pd.Year == 0 {
		return ""
	}
	res := fmt.Sprintf("%04d", pd.Year)
	if pd.Month == 0 {
		return res + "-**-**"
	}
	res += fmt.Sprintf("-%02d", pd.Month)
	if pd.Day == 0 {
		return res + "-**"
	}
	return res + fmt.Sprintf("-%02d", pd.Day)
}

// Value serializes the date for storage as varchar(10): YYYY-**-**,
// YYYY-MM-**, or YYYY-MM-DD.
func (pd PartialDate) Value() (driver.Value, error) {
	if pd.Year == 0 {
		return nil, nil
	}
	return pd.String(), nil
}

// Scan parses the textual storage representation.
func (pd *PartialDate) Scan(value interface{}) error {
	var s string
	switch v := value.(type) {
	case nil:
		*pd = PartialDate{}
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into PartialDate", value)
	}
	parsed := PartialDate{}
	for i, p := range strings.Split(s, "-") {
		if strings.Contains(p, "*") {
			break
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("malformed partial date %q: %w", s, err)
		}
		switch i {
		case 0:
			parsed.Year = n
		case 1:
			parsed.Month = n
		case 2:
			parsed.Day = n
		}
	}
	*pd = parsed
	return nil
}
