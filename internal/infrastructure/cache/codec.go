package cache

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// encodeValue turns a value into the text stored at a key. Strings and byte slices are
// stored verbatim, numbers and booleans as their text form, everything else as JSON.
func encodeValue(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", v), nil
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("encode value: %w", err)
	}
	return string(data), nil
}

// maxExactInteger is the largest magnitude a float64 holds without losing integer precision.
const maxExactInteger = 1 << 53

// decodeValue parses stored text as JSON and falls back to the raw text when it is not.
// There is no record of how a value was written, so "42" comes back as a number even
// when it was stored as a string. Numbers decode to float64, except integers beyond
// float64 precision, which stay json.Number so they round-trip exactly.
func decodeValue(raw string) any {
	if !json.Valid([]byte(raw)) {
		return raw
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return raw
	}
	return normalizeNumbers(v)
}

func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		return numberValue(t)
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeNumbers(e)
		}
	case []any:
		for i, e := range t {
			t[i] = normalizeNumbers(e)
		}
	}
	return v
}

func numberValue(n json.Number) any {
	f, err := n.Float64()
	if err != nil {
		return n
	}
	if !strings.ContainsAny(n.String(), ".eE") && math.Abs(f) > maxExactInteger {
		return n
	}
	return f
}

func unmarshal(raw string, dst any) error {
	return json.Unmarshal([]byte(raw), dst)
}
