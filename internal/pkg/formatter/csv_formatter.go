package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"

	"github.com/segaai/testcase-backend/internal/entity"
)

type CSVFormatter struct{}

func NewCSVFormatter() *CSVFormatter {
	return &CSVFormatter{}
}

// FormatDataPool renders data pool items as CSV. The header comes
// from the first item's JSON keys in their original order; items
// missing a key produce an empty cell.
func (f *CSVFormatter) FormatDataPool(pool *entity.DataPool) ([]byte, error) {
	if len(pool.Items) == 0 {
		return nil, entity.ErrEmptyDataPool
	}

	headers, err := jsonKeyOrder([]byte(pool.Items[0].Data))
	if err != nil {
		return nil, fmt.Errorf("parse data pool item: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(headers); err != nil {
		return nil, err
	}

	for _, item := range pool.Items {
		values, err := decodeValues([]byte(item.Data))
		if err != nil {
			return nil, fmt.Errorf("parse data pool item: %w", err)
		}

		record := make([]string, 0, len(headers))
		for _, h := range headers {
			record = append(record, stringify(values[h]))
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// jsonKeyOrder returns the top-level object keys in document order,
// which a plain map unmarshal would lose.
func jsonKeyOrder(raw []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("ожидается JSON-объект")
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		keys = append(keys, tok.(string))

		// Skip the value, whatever its shape.
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}

	return keys, nil
}

func decodeValues(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var values map[string]any
	if err := dec.Decode(&values); err != nil {
		return nil, err
	}

	return values, nil
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return fmt.Sprintf("%t", v)
	default:
		// Nested objects and arrays are re-serialized as JSON.
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(raw)
	}
}
