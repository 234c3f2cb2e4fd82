package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the record API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Content Inventory API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "content-inventory", "version": "v1.0.0" },
  "components": {
    "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" } },
    "schemas": {
      "Assessment": {
        "type": "object",
        "additionalProperties": true,
        "required": ["processName", "status"],
        "properties": {
          "id": { "type": "string", "readOnly": true },
          "processName": { "type": "string" },
          "content": { "type": "string" },
          "informationController": { "type": "string" },
          "medium": { "type": "string" },
          "location": { "type": "string" },
          "securityClassification": { "type": "string" },
          "pib": { "type": "string", "example": "Yes" },
          "fctFunction": { "type": "string" },
          "fctActivity": { "type": "string" },
          "status": { "type": "string", "example": "Draft" },
          "createdDate": { "type": "string", "format": "date", "readOnly": true },
          "lastModified": { "type": "string", "format": "date", "readOnly": true }
        }
      },
      "Error": { "type": "object", "properties": { "error": { "type": "string" }, "fields": { "type": "array", "items": { "type": "string" } } } }
    }
  },
  "paths": {
    "/health": { "get": { "summary": "Liveness probe", "responses": { "200": { "description": "OK" } } } },
    "/ready": { "get": { "summary": "Readiness probe", "responses": { "200": { "description": "backend reachable" }, "503": { "description": "backend unavailable" } } } },
    "/api/assessments": {
      "get": {
        "summary": "List assessments",
        "parameters": [
          { "name": "q", "in": "query", "schema": { "type": "string" }, "description": "case-insensitive match on processName, content, location" },
          { "name": "status", "in": "query", "schema": { "type": "string" } }
        ],
        "responses": { "200": { "description": "assessments", "content": { "application/json": { "schema": { "type": "array", "items": { "$ref": "#/components/schemas/Assessment" } } } } } }
      },
      "post": {
        "summary": "Create an assessment",
        "security": [{ "bearer": [] }],
        "requestBody": { "content": { "application/json": { "schema": { "$ref": "#/components/schemas/Assessment" } } } },
        "responses": { "201": { "description": "created" }, "400": { "description": "missing required fields" } }
      }
    },
    "/api/assessments/{id}": {
      "get": {
        "summary": "Get one assessment",
        "parameters": [{ "name": "id", "in": "path", "required": true, "schema": { "type": "string" } }],
        "responses": { "200": { "description": "assessment" }, "404": { "description": "not found" } }
      },
      "put": {
        "summary": "Merge fields into an assessment",
        "security": [{ "bearer": [] }],
        "parameters": [{ "name": "id", "in": "path", "required": true, "schema": { "type": "string" } }],
        "requestBody": { "content": { "application/json": { "schema": { "type": "object", "additionalProperties": true } } } },
        "responses": { "200": { "description": "updated" }, "400": { "description": "invalid merged record" }, "404": { "description": "not found" } }
      }
    },
    "/api/rfis": { "get": { "summary": "List RFIs (read-only)", "responses": { "200": { "description": "rfis" } } } },
    "/inventory": { "get": { "summary": "Server-rendered inventory table", "responses": { "200": { "description": "HTML page" } } } }
  }
}`
