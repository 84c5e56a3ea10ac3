package recipestore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/viant/recipevec/vector"
)

// Metadata keys copied from each record.
const (
	FieldID          = "id"
	FieldTitle       = "title"
	FieldIngredients = "ingredients"
	FieldURL         = "url"
	FieldContent     = "combined_text"
)

// MetadataFields lists the record fields kept as document metadata.
var MetadataFields = []string{FieldID, FieldTitle, FieldIngredients, FieldURL}

// Record is one object of the source JSON array. Fields keep their raw JSON so
// structured values (e.g. an ingredients list) survive extraction.
type Record map[string]json.RawMessage

// Text returns field as a string: strings verbatim, arrays of strings joined
// with ", ", other JSON values as compact JSON, absent or null as "".
func (r Record) Text(field string) string {
	raw, ok := r[field]
	if !ok {
		return ""
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, ", ")
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// ToDocument maps a record to the document handed to the store: content is
// combined_text and metadata carries exactly id, title, ingredients and url.
func ToDocument(r Record) vector.Document {
	md := make(map[string]string, len(MetadataFields))
	for _, f := range MetadataFields {
		md[f] = r.Text(f)
	}
	return vector.Document{Content: r.Text(FieldContent), Metadata: md}
}

// ToDocuments maps records in order.
func ToDocuments(records []Record) []vector.Document {
	docs := make([]vector.Document, len(records))
	for i, r := range records {
		docs[i] = ToDocument(r)
	}
	return docs
}

// ReadRecords parses a UTF-8 JSON file holding an array of records.
func ReadRecords(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("recipestore: parse %s: %w", path, err)
	}
	return records, nil
}
