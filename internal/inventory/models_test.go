package inventory

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRecord(t *testing.T) {
	r, err := ParseRecord([]byte(`{"processName":"Payroll Export","status":"Draft","extra":{"a":[1,2]}}`))
	require.NoError(t, err)
	require.Equal(t, "Payroll Export", r.String(FieldProcessName))
	require.Equal(t, `{"a":[1,2]}`, string(r["extra"]))

	for _, body := range []string{`[]`, `"x"`, `null`, `{`, `12`} {
		_, err := ParseRecord([]byte(body))
		require.Error(t, err, body)
	}
}

func TestRecordMergeAndClone(t *testing.T) {
	base := Record{}
	base.SetString(FieldID, "1")
	base.SetString(FieldStatus, StatusDraft)

	patch := Record{}
	patch.SetString(FieldStatus, StatusInReview)
	patch.SetString(FieldLocation, "Calgary")

	merged := base.Merge(patch)
	require.Equal(t, StatusInReview, merged.String(FieldStatus))
	require.Equal(t, "Calgary", merged.String(FieldLocation))
	require.Equal(t, "1", merged.ID())
	// base untouched
	require.Equal(t, StatusDraft, base.String(FieldStatus))
	require.NotContains(t, base, FieldLocation)

	c := merged.Clone()
	require.True(t, c.Equal(merged))
	c.SetString(FieldID, "2")
	require.False(t, c.Equal(merged))
}

func TestRecordStringNonString(t *testing.T) {
	r, err := ParseRecord([]byte(`{"pib":true,"status":"Draft"}`))
	require.NoError(t, err)
	require.Equal(t, "", r.String(FieldPIB))
	require.Equal(t, "", r.String("missing"))
}

func TestValidateAssessment(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		fields []string
	}{
		{"valid", `{"processName":"Payroll Export","status":"Draft"}`, nil},
		{"missing both", `{"content":"x"}`, []string{"processName", "status"}},
		{"missing status", `{"processName":"x"}`, []string{"status"}},
		{"empty process name", `{"processName":"","status":"Draft"}`, []string{"processName"}},
		{"wrong type", `{"processName":42,"status":"Draft"}`, []string{"processName"}},
		{"non-string optional fields", `{"processName":"x","status":"Draft","pib":true,"content":123,"medium":null}`, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := ParseRecord([]byte(tc.body))
			require.NoError(t, err)
			err = ValidateAssessment(r)
			if tc.fields == nil {
				require.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.Equal(t, tc.fields, verr.Fields)
			require.Contains(t, verr.Error(), tc.fields[0])
		})
	}
}

func TestLookup(t *testing.T) {
	e, ok := Lookup(EntityAssessments)
	require.True(t, ok)
	require.True(t, e.Writable)
	e, ok = Lookup(EntityRFIs)
	require.True(t, ok)
	require.False(t, e.Writable)
	_, ok = Lookup("nope")
	require.False(t, ok)
}
