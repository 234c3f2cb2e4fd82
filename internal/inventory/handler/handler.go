package handler

import (
	"errors"
	"html/template"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shariqkhan335/RFI-PROJ/internal/inventory"
	"github.com/shariqkhan335/RFI-PROJ/internal/inventory/service"
	"github.com/shariqkhan335/RFI-PROJ/internal/table"
	"github.com/shariqkhan335/RFI-PROJ/pkg/logger"
)

// MaxBodyBytes bounds the size of a record submitted on POST or PUT.
const MaxBodyBytes = 1 << 20

// Middleware holds the handlers run in front of the read and the mutating
// routes. Write usually carries the auth guard.
type Middleware struct {
	Read  []gin.HandlerFunc
	Write []gin.HandlerFunc
}

func chain(mw []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	return append(append([]gin.HandlerFunc{}, mw...), h)
}

// RegisterRoutes mounts the assessment and RFI endpoints plus the
// server-rendered inventory page.
func RegisterRoutes(r *gin.Engine, svc service.Service, mw Middleware) {
	r.SetHTMLTemplate(inventoryPage)

	r.GET("/api/assessments", chain(mw.Read, func(c *gin.Context) {
		list, err := svc.List(c.Request.Context(), inventory.EntityAssessments)
		if err != nil {
			writeError(c, err)
			return
		}
		list = table.FilterStatus(table.Filter(list, c.Query("q")), c.Query("status"))
		c.JSON(http.StatusOK, list)
	})...)

	r.GET("/api/assessments/:id", chain(mw.Read, func(c *gin.Context) {
		rec, err := svc.Get(c.Request.Context(), inventory.EntityAssessments, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	})...)

	r.POST("/api/assessments", chain(mw.Write, func(c *gin.Context) {
		body, ok := readRecord(c)
		if !ok {
			return
		}
		rec, err := svc.Create(c.Request.Context(), inventory.EntityAssessments, body)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, rec)
	})...)

	r.PUT("/api/assessments/:id", chain(mw.Write, func(c *gin.Context) {
		body, ok := readRecord(c)
		if !ok {
			return
		}
		rec, err := svc.Update(c.Request.Context(), inventory.EntityAssessments, c.Param("id"), body)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	})...)

	r.GET("/api/rfis", chain(mw.Read, func(c *gin.Context) {
		list, err := svc.List(c.Request.Context(), inventory.EntityRFIs)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	})...)

	r.GET("/inventory", chain(mw.Read, func(c *gin.Context) {
		list, err := svc.List(c.Request.Context(), inventory.EntityAssessments)
		if err != nil {
			writeError(c, err)
			return
		}
		q := c.Query("q")
		c.HTML(http.StatusOK, "inventory", gin.H{
			"Query":   q,
			"Columns": table.Columns,
			"Rows":    table.Rows(table.Filter(list, q)),
			"ColSpan": len(table.Columns) + 1,
		})
	})...)
}

func readRecord(c *gin.Context) (inventory.Record, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return nil, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read request body"})
		return nil, false
	}
	rec, err := inventory.ParseRecord(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return rec, true
}

// writeError maps store errors onto status codes. Storage failures are
// logged and answered with a generic message.
func writeError(c *gin.Context, err error) {
	var verr *inventory.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "fields": verr.Fields})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrReadOnly):
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrClosed):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service is shutting down"})
	default:
		_ = c.Error(err)
		logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

var inventoryPage = template.Must(template.New("inventory").Parse(`<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Content Inventory</title>
    <link rel="stylesheet" href="/css/styles.css" />
  </head>
  <body>
    <h1>Content Inventory</h1>
    <form method="get" action="/inventory">
      <input type="search" name="q" value="{{.Query}}" placeholder="Search process, content, location" />
    </form>
    <table class="inventory">
      <thead><tr>{{range .Columns}}<th>{{.Label}}</th>{{end}}<th>Actions</th></tr></thead>
      <tbody>
      {{range .Rows}}<tr data-id="{{.ID}}">
        {{range .Cells}}<td{{if .Tooltip}} title="{{.Tooltip}}"{{end}}>{{.Text}}</td>{{end}}
        <td>
          <button data-action="view" data-id="{{.ID}}">View</button>
          <button data-action="edit" data-id="{{.ID}}"{{if not .Actions.Edit}} disabled{{end}}>Edit</button>
          <button data-action="submit" data-id="{{.ID}}"{{if not .Actions.Submit}} disabled{{end}}>Submit</button>
        </td>
      </tr>{{else}}<tr><td colspan="{{$.ColSpan}}">No assessments found.</td></tr>{{end}}
      </tbody>
    </table>
    <script src="/js/inventory.js"></script>
  </body>
</html>`))
