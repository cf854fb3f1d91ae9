package utils

import (
	"fmt"
	"strconv"
)

// ToString converts a loosely typed value to string. nil yields "".
func ToString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ToStrings converts every element of row with ToString.
func ToStrings(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = ToString(v)
	}
	return out
}
