// Package canonical produces deterministic JSON and content-addressed
// hashes for run configurations and trajectories.
//
// The encoding follows RFC 8785 for structure: object keys sorted by UTF-16
// code units, NFC-normalized strings, no HTML escaping. Numbers deviate from
// the RFC deliberately - trajectories are float-valued, so floats are
// encoded with Go's shortest round-trip representation (strconv 'g', -1).
// The encoding only ever feeds hash comparison against itself, so internal
// consistency is what matters, not cross-ecosystem interop.
package canonical

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// Marshal produces canonical JSON for v. Supported values: string, bool,
// int, int64, float64, []float64, []any, map[string]any, and nil-free
// nestings thereof. NaN and infinities are rejected - they would make the
// hash depend on unreproducible states.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := marshal(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshal(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("null is forbidden in canonical JSON")
	case string:
		return marshalString(buf, val)
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
		return nil
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
		return nil
	case float64:
		return marshalFloat(buf, val)
	case []float64:
		buf.WriteByte('[')
		for i, f := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := marshalFloat(buf, f); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
		return nil
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := marshal(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
		return nil
	case map[string]any:
		return marshalObject(buf, val)
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

// marshalFloat encodes a finite float with the shortest representation that
// round-trips through ParseFloat. Integral floats keep a decimal form
// (FormatFloat 'g' emits "5" for 5.0), which is fine: the hash input is the
// byte sequence, not a typed value.
func marshalFloat(buf *bytes.Buffer, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("non-finite float %v is forbidden in canonical JSON", f)
	}
	buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	return nil
}

// marshalString encodes a string with NFC normalization and without HTML
// escaping, per RFC 8785.
func marshalString(buf *bytes.Buffer, s string) error {
	normalized := norm.NFC.String(s)

	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false) // <, > and & must NOT be escaped
	if err := enc.Encode(normalized); err != nil {
		return err
	}

	out := tmp.Bytes()
	// json.Encoder appends a trailing newline.
	out = bytes.TrimSuffix(out, []byte{'\n'})
	buf.Write(out)
	return nil
}

func marshalObject(buf *bytes.Buffer, obj map[string]any) error {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := marshalString(buf, k); err != nil {
			return fmt.Errorf("key %q: %w", k, err)
		}
		buf.WriteByte(':')
		if err := marshal(buf, obj[k]); err != nil {
			return fmt.Errorf("value for key %q: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

// compareUTF16 orders strings by UTF-16 code units as RFC 8785 requires.
// Go's native string comparison is UTF-8 and orders supplementary-plane
// characters differently.
func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	n := min(len(a16), len(b16))
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}
