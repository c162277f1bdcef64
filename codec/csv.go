// Package codec converts a stored submission document into a single-row
// CSV export. Response keys are composite ("{fieldId}_{label}"); the
// codec recovers the label part, flattens nested objects one level and
// passes arrays through.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/zenrsr/form-craft/model"
)

// Record is one CSV export: the header row and its single data row,
// aligned by index.
type Record struct {
	Headers []string
	Values  []string
}

const submittedAtLayout = "2006-01-02 15:04:05"

// Export builds the CSV record for one submission. The raw responses
// document is parsed token-wise so columns come out in the order the
// respondent's client stored them; field ids never leak into headers.
func Export(sub model.Submission, responsesJSON []byte) (Record, error) {
	entries, err := decodeOrdered(responsesJSON)
	if err != nil {
		return Record{}, fmt.Errorf("parse responses: %w", err)
	}

	rec := Record{}
	index := make(map[string]int)
	put := func(header, value string) {
		if i, ok := index[header]; ok {
			rec.Values[i] = value
			return
		}
		index[header] = len(rec.Headers)
		rec.Headers = append(rec.Headers, header)
		rec.Values = append(rec.Values, value)
	}

	put("Email", sub.Email)

	for _, e := range entries {
		label := recoverLabel(e.key)

		if bytes.HasPrefix(bytes.TrimSpace(e.raw), []byte("{")) {
			nested, err := decodeOrdered(e.raw)
			if err != nil {
				return Record{}, fmt.Errorf("parse responses[%s]: %w", e.key, err)
			}
			for _, n := range nested {
				put(label+"_"+n.key, formatValue(n.value()))
			}
			continue
		}

		put(label, formatValue(e.value()))
	}

	put("Submitted At", sub.CreatedAt.Format(submittedAtLayout))
	return rec, nil
}

// WriteCSV writes the record as two lines: an unquoted header row and a
// data row with every cell wrapped in double quotes. Embedded quotes and
// commas inside cells are not escaped further.
func WriteCSV(w io.Writer, rec Record) error {
	var b strings.Builder
	b.WriteString(strings.Join(rec.Headers, ","))
	b.WriteByte('\n')
	for i, v := range rec.Values {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(v)
		b.WriteByte('"')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// recoverLabel strips the "{fieldId}_" prefix. Keys without a separator,
// or with nothing after it, stay as they are.
func recoverLabel(key string) string {
	idx := strings.Index(key, "_")
	if idx < 0 || idx == len(key)-1 {
		return key
	}
	return key[idx+1:]
}

type entry struct {
	key string
	raw json.RawMessage
}

func (e entry) value() any {
	var v any
	if err := json.Unmarshal(e.raw, &v); err != nil {
		return string(e.raw)
	}
	return v
}

// decodeOrdered reads one JSON object preserving key order, which
// encoding/json's map decoding would throw away.
func decodeOrdered(data []byte) ([]entry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	var entries []entry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		entries = append(entries, entry{key: key, raw: raw})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return entries, nil
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = formatValue(item)
		}
		return strings.Join(parts, ",")
	case time.Time:
		return v.Format(submittedAtLayout)
	default:
		return fmt.Sprint(v)
	}
}
