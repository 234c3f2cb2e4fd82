package inventory

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is one stored object of an entity. Values stay raw JSON so fields the
// server does not know about round-trip unchanged.
type Record map[string]json.RawMessage

// Assessment field names.
const (
	FieldID                     = "id"
	FieldProcessName            = "processName"
	FieldContent                = "content"
	FieldInformationController  = "informationController"
	FieldMedium                 = "medium"
	FieldLocation               = "location"
	FieldSecurityClassification = "securityClassification"
	FieldPIB                    = "pib"
	FieldFCTFunction            = "fctFunction"
	FieldFCTActivity            = "fctActivity"
	FieldStatus                 = "status"
	FieldCreatedDate            = "createdDate"
	FieldLastModified           = "lastModified"
)

// Workflow statuses. The status field is free-form; these are the values the UI knows.
const (
	StatusDraft    = "Draft"
	StatusInReview = "In Review"
	StatusApproved = "Approved"
)

// DateLayout is the calendar-date format of createdDate and lastModified.
const DateLayout = "2006-01-02"

// ParseRecord decodes a JSON object. Arrays, scalars and null are rejected.
// Values are compacted so a record read back from storage compares equal to
// the one written, whatever indentation the store used.
func ParseRecord(data []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("record must be a JSON object: %w", err)
	}
	if r == nil {
		return nil, fmt.Errorf("record must be a JSON object")
	}
	for k, v := range r {
		var buf bytes.Buffer
		if err := json.Compact(&buf, v); err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		r[k] = buf.Bytes()
	}
	return r, nil
}

// ParseRecords decodes a top-level JSON array of objects. Blank input is an
// empty collection.
func ParseRecords(data []byte) ([]Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []Record{}, nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("collection must be a JSON array: %w", err)
	}
	recs := make([]Record, 0, len(raws))
	for i, raw := range raws {
		r, err := ParseRecord(raw)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		recs = append(recs, r)
	}
	return recs, nil
}

// String returns the string value of key, or "" when absent or not a string.
func (r Record) String(key string) string {
	raw, ok := r[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// SetString stores s under key.
func (r Record) SetString(key, s string) {
	b, _ := json.Marshal(s)
	r[key] = b
}

// ID returns the record identity.
func (r Record) ID() string { return r.String(FieldID) }

// Clone returns a shallow copy; raw values are never mutated in place.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Merge returns a copy of r with every field of patch laid over it.
func (r Record) Merge(patch Record) Record {
	out := r.Clone()
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// Equal reports whether both records hold the same fields with identical raw values.
func (r Record) Equal(o Record) bool {
	if len(r) != len(o) {
		return false
	}
	for k, v := range r {
		ov, ok := o[k]
		if !ok || string(v) != string(ov) {
			return false
		}
	}
	return true
}
