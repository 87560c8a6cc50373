package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexFloat decodes a JSON number or a numeric string. Form fields from
// the frontend send weights and coordinates as strings.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", raw)
		}
		*f = FlexFloat(value)
		return nil
	}

	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*f = FlexFloat(value)
	return nil
}

func (f *FlexFloat) Ptr() *float64 {
	if f == nil {
		return nil
	}
	value := float64(*f)
	return &value
}
