package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/shariqkhan335/RFI-PROJ/internal/inventory"
	"github.com/shariqkhan335/RFI-PROJ/internal/inventory/repository"
	"github.com/shariqkhan335/RFI-PROJ/internal/inventory/service"
)

var today = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T, guard ...gin.HandlerFunc) (*gin.Engine, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	repo, err := repository.NewFileRepo(fs, "/data")
	require.NoError(t, err)
	svc := service.New(repo, service.WithClock(func() time.Time { return today }))
	t.Cleanup(func() { _ = svc.Close() })

	g := gin.New()
	RegisterRoutes(g, svc, Middleware{Write: guard})
	return g, fs
}

func do(g *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestAssessmentHandler_CreateUpdateList(t *testing.T) {
	g, _ := setup(t)

	// create
	w := do(g, http.MethodPost, "/api/assessments", `{"processName":"Payroll Export","status":"Draft","location":"Calgary"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]any
	decode(t, w, &created)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	require.Equal(t, "2026-10-14", created["createdDate"])
	require.Equal(t, "2026-10-14", created["lastModified"])
	require.Equal(t, "Calgary", created["location"])

	// get
	w = do(g, http.MethodGet, "/api/assessments/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)

	// update
	w = do(g, http.MethodPut, "/api/assessments/"+id, `{"status":"In Review","id":"other"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var updated map[string]any
	decode(t, w, &updated)
	require.Equal(t, id, updated["id"])
	require.Equal(t, "In Review", updated["status"])
	require.Equal(t, "Payroll Export", updated["processName"])
	require.Equal(t, created["createdDate"], updated["createdDate"])

	// list
	w = do(g, http.MethodGet, "/api/assessments", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	decode(t, w, &list)
	require.Len(t, list, 1)
	require.Equal(t, "In Review", list[0]["status"])
}

func TestAssessmentHandler_MissingFileListsEmpty(t *testing.T) {
	g, _ := setup(t)
	for _, path := range []string{"/api/assessments", "/api/rfis"} {
		w := do(g, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, w.Code, path)
		require.JSONEq(t, `[]`, w.Body.String(), path)
	}
}

func TestAssessmentHandler_ListFilters(t *testing.T) {
	g, _ := setup(t)
	for _, body := range []string{
		`{"processName":"Alpha","content":"x","location":"Calgary","status":"Draft"}`,
		`{"processName":"Beta","content":"y","location":"Red Deer","status":"Approved"}`,
	} {
		require.Equal(t, http.StatusCreated, do(g, http.MethodPost, "/api/assessments", body).Code)
	}

	var list []map[string]any
	decode(t, do(g, http.MethodGet, "/api/assessments?q=calgary", ""), &list)
	require.Len(t, list, 1)
	require.Equal(t, "Alpha", list[0]["processName"])

	decode(t, do(g, http.MethodGet, "/api/assessments?status=Approved", ""), &list)
	require.Len(t, list, 1)
	require.Equal(t, "Beta", list[0]["processName"])

	decode(t, do(g, http.MethodGet, "/api/assessments?q=calgary&status=Approved", ""), &list)
	require.Empty(t, list)
}

func TestAssessmentHandler_Errors(t *testing.T) {
	g, _ := setup(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		code   int
		errMsg string
	}{
		{"missing status", http.MethodPost, "/api/assessments", `{"processName":"x"}`, http.StatusBadRequest, "status"},
		{"missing both", http.MethodPost, "/api/assessments", `{"content":"x"}`, http.StatusBadRequest, "processName"},
		{"array body", http.MethodPost, "/api/assessments", `[{"processName":"x","status":"Draft"}]`, http.StatusBadRequest, "JSON object"},
		{"malformed", http.MethodPost, "/api/assessments", `{"processName":`, http.StatusBadRequest, ""},
		{"update unknown", http.MethodPut, "/api/assessments/999", `{"status":"Approved"}`, http.StatusNotFound, "not found"},
		{"get unknown", http.MethodGet, "/api/assessments/999", "", http.StatusNotFound, "not found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(g, tc.method, tc.path, tc.body)
			require.Equal(t, tc.code, w.Code, w.Body.String())
			var body map[string]any
			decode(t, w, &body)
			require.Contains(t, body["error"], tc.errMsg)
		})
	}

	// nothing was persisted by the failed requests
	w := do(g, http.MethodGet, "/api/assessments", "")
	require.JSONEq(t, `[]`, w.Body.String())
}

func TestAssessmentHandler_StorageFailureIsGeneric(t *testing.T) {
	g, fs := setup(t)
	require.NoError(t, afero.WriteFile(fs, "/data/rfis.json", []byte(`{"broken":`), 0o644))

	w := do(g, http.MethodGet, "/api/rfis", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}

func TestAssessmentHandler_RFIsVerbatim(t *testing.T) {
	g, fs := setup(t)
	require.NoError(t, afero.WriteFile(fs, "/data/rfis.json", []byte(`[{"id":"r1","question":"Who owns it?","refs":[1,2]}]`), 0o644))

	w := do(g, http.MethodGet, "/api/rfis", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `[{"id":"r1","question":"Who owns it?","refs":[1,2]}]`, w.Body.String())
}

func TestAssessmentHandler_GuardOnlyOnWrites(t *testing.T) {
	deny := func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
	}
	g, _ := setup(t, deny)

	require.Equal(t, http.StatusOK, do(g, http.MethodGet, "/api/assessments", "").Code)
	require.Equal(t, http.StatusUnauthorized, do(g, http.MethodPost, "/api/assessments", `{"processName":"x","status":"Draft"}`).Code)
	require.Equal(t, http.StatusUnauthorized, do(g, http.MethodPut, "/api/assessments/1", `{}`).Code)
}

func TestInventoryPage(t *testing.T) {
	g, _ := setup(t)
	long := strings.Repeat("z", 45)
	require.Equal(t, http.StatusCreated, do(g, http.MethodPost, "/api/assessments",
		`{"processName":"Alpha","content":"`+long+`","location":"Calgary","status":"Approved"}`).Code)
	require.Equal(t, http.StatusCreated, do(g, http.MethodPost, "/api/assessments",
		`{"processName":"Beta","location":"Red Deer","status":"Draft"}`).Code)

	w := do(g, http.MethodGet, "/inventory", "")
	require.Equal(t, http.StatusOK, w.Code)
	page := w.Body.String()
	require.Contains(t, page, "Alpha")
	require.Contains(t, page, "Beta")
	require.Contains(t, page, `title="`+long+`"`)
	require.Contains(t, page, strings.Repeat("z", 40)+"…")

	w = do(g, http.MethodGet, "/inventory?q=red+deer", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, w.Body.String(), "Alpha")
	require.Contains(t, w.Body.String(), "Beta")
}

func TestReadOnlyErrorMapsTo405(t *testing.T) {
	g := gin.New()
	g.GET("/x", func(c *gin.Context) { writeError(c, service.ErrReadOnly) })
	w := do(g, http.MethodGet, "/x", "")
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)

	g.GET("/v", func(c *gin.Context) { writeError(c, &inventory.ValidationError{Fields: []string{"status"}}) })
	w = do(g, http.MethodGet, "/v", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), `"fields":["status"]`)
}

func TestAssessmentHandler_NonStringOptionalFieldsStored(t *testing.T) {
	g, _ := setup(t)

	for _, body := range []string{
		`{"processName":"Payroll Export","status":"Draft","pib":true}`,
		`{"processName":"Payroll Export","status":"Draft","content":123}`,
	} {
		w := do(g, http.MethodPost, "/api/assessments", body)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var created map[string]any
		decode(t, w, &created)

		// a later PUT of the same record is still accepted
		id, _ := created["id"].(string)
		w = do(g, http.MethodPut, "/api/assessments/"+id, `{"status":"In Review"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := do(g, http.MethodGet, "/api/assessments", "")
	var list []map[string]any
	decode(t, w, &list)
	require.Len(t, list, 2)
	require.Equal(t, true, list[0]["pib"])
	require.Equal(t, float64(123), list[1]["content"])
}

func TestAssessmentHandler_RepeatedPutIsIdempotent(t *testing.T) {
	clock := today
	repo, err := repository.NewFileRepo(afero.NewMemMapFs(), "/data")
	require.NoError(t, err)
	svc := service.New(repo, service.WithClock(func() time.Time { return clock }))
	t.Cleanup(func() { _ = svc.Close() })
	g := gin.New()
	RegisterRoutes(g, svc, Middleware{})

	w := do(g, http.MethodPost, "/api/assessments", `{"processName":"Payroll Export","status":"Draft"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]any
	decode(t, w, &created)
	id, _ := created["id"].(string)

	put := `{"processName":"Payroll Export","status":"Approved","medium":"Paper"}`
	stored := func() map[string]any {
		t.Helper()
		w := do(g, http.MethodGet, "/api/assessments/"+id, "")
		require.Equal(t, http.StatusOK, w.Code)
		var got map[string]any
		decode(t, w, &got)
		return got
	}

	clock = today.Add(24 * time.Hour)
	require.Equal(t, http.StatusOK, do(g, http.MethodPut, "/api/assessments/"+id, put).Code)
	first := stored()
	clock = today.Add(72 * time.Hour)
	require.Equal(t, http.StatusOK, do(g, http.MethodPut, "/api/assessments/"+id, put).Code)
	second := stored()

	ignoreModified := cmpopts.IgnoreMapEntries(func(k string, _ any) bool { return k == inventory.FieldLastModified })
	require.Empty(t, cmp.Diff(first, second, ignoreModified))
	require.Equal(t, "2026-10-17", second[inventory.FieldLastModified])
}

func TestInventoryPage_EmptyRowSpansActions(t *testing.T) {
	g, _ := setup(t)
	w := do(g, http.MethodGet, "/inventory", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `<td colspan="10">No assessments found.</td>`)
}

func TestRegisterRoutes_ReadMiddleware(t *testing.T) {
	fs := afero.NewMemMapFs()
	repo, err := repository.NewFileRepo(fs, "/data")
	require.NoError(t, err)
	svc := service.New(repo)
	t.Cleanup(func() { _ = svc.Close() })

	var reads, writes int
	g := gin.New()
	RegisterRoutes(g, svc, Middleware{
		Read:  []gin.HandlerFunc{func(c *gin.Context) { reads++ }},
		Write: []gin.HandlerFunc{func(c *gin.Context) { writes++ }},
	})

	require.Equal(t, http.StatusOK, do(g, http.MethodGet, "/api/assessments", "").Code)
	require.Equal(t, http.StatusOK, do(g, http.MethodGet, "/api/rfis", "").Code)
	require.Equal(t, http.StatusOK, do(g, http.MethodGet, "/inventory", "").Code)
	require.Equal(t, http.StatusCreated, do(g, http.MethodPost, "/api/assessments", `{"processName":"P","status":"Draft"}`).Code)
	require.Equal(t, 3, reads)
	require.Equal(t, 1, writes)
}
