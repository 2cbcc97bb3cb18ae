// Package docs registers the OpenAPI description of the pricing API with swag.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/pricing": {
            "get": {
                "tags": ["pricing"],
                "summary": "List pricing documents",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "default": 0, "description": "Offset for pagination", "name": "offset", "in": "query"},
                    {"type": "integer", "default": 20, "description": "Limit for pagination (max 100)", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "List of pricing documents", "schema": {"$ref": "#/definitions/handler.Response"}}}
            }
        },
        "/pricing/import": {
            "post": {
                "tags": ["pricing"],
                "summary": "Import a pricing workbook",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "file", "description": "Workbook (xlsx or xlsm)", "name": "file", "in": "formData", "required": true},
                    {"type": "boolean", "description": "Reject the import when validation fails", "name": "strict", "in": "formData"},
                    {"type": "string", "description": "Sheet to try first", "name": "sheet", "in": "formData"}
                ],
                "responses": {
                    "201": {"description": "Imported", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "400": {"description": "Missing file, unsupported type or unreadable workbook", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "413": {"description": "File too large", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "422": {"description": "No pricing sheet or strict validation failed", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/pricing/{id}": {
            "get": {
                "tags": ["pricing"],
                "summary": "Get a pricing document",
                "parameters": [{"type": "string", "description": "Pricing document ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Pricing document", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            },
            "delete": {
                "tags": ["pricing"],
                "summary": "Delete a pricing document and its archived workbook",
                "parameters": [{"type": "string", "description": "Pricing document ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Deleted", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/pricing/{id}/validation": {
            "get": {
                "tags": ["pricing"],
                "summary": "Get the stored validation report",
                "parameters": [{"type": "string", "description": "Pricing document ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "Validation report", "schema": {"$ref": "#/definitions/handler.Response"}}}
            }
        },
        "/pricing/{id}/totals": {
            "post": {
                "tags": ["pricing"],
                "summary": "Compute rendered totals",
                "consumes": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Pricing document ID", "name": "id", "in": "path", "required": true},
                    {"description": "Price overrides", "name": "body", "in": "body", "schema": {"$ref": "#/definitions/handler.TotalsRequest"}}
                ],
                "responses": {
                    "200": {"description": "Totals", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "400": {"description": "Invalid override key", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/pricing/{id}/revalidate": {
            "post": {
                "tags": ["pricing"],
                "summary": "Re-parse a document with the current parser",
                "parameters": [{"type": "string", "description": "Pricing document ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "Revalidated document", "schema": {"$ref": "#/definitions/handler.Response"}}}
            }
        },
        "/pricing/{id}/export-check": {
            "get": {
                "tags": ["pricing"],
                "summary": "Check whether a document may be exported",
                "parameters": [{"type": "string", "description": "Pricing document ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Exportable", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "409": {"description": "Report produced by an older parser", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "422": {"description": "Stored report failed", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/pricing/{id}/export.csv": {
            "post": {
                "tags": ["pricing"],
                "summary": "Export rendered totals as CSV",
                "consumes": ["application/json"],
                "produces": ["text/csv"],
                "parameters": [
                    {"type": "string", "description": "Pricing document ID", "name": "id", "in": "path", "required": true},
                    {"description": "Price overrides", "name": "body", "in": "body", "schema": {"$ref": "#/definitions/handler.TotalsRequest"}}
                ],
                "responses": {"200": {"description": "CSV file", "schema": {"type": "file"}}}
            }
        },
        "/pricing/{id}/source": {
            "get": {
                "tags": ["pricing"],
                "summary": "Get a presigned download URL for the archived workbook",
                "parameters": [{"type": "string", "description": "Pricing document ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "Presigned URL", "schema": {"$ref": "#/definitions/handler.Response"}}}
            }
        }
    },
    "definitions": {
        "handler.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "details": {}
            }
        },
        "handler.ErrorResponseBody": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": false},
                "error": {"$ref": "#/definitions/handler.APIError"}
            }
        },
        "handler.PagMeta": {
            "type": "object",
            "properties": {
                "total": {"type": "integer"},
                "offset": {"type": "integer"},
                "limit": {"type": "integer"}
            }
        },
        "handler.Response": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": true},
                "data": {},
                "meta": {"$ref": "#/definitions/handler.PagMeta"}
            }
        },
        "handler.TotalsRequest": {
            "type": "object",
            "properties": {
                "overrides": {"type": "object", "additionalProperties": {"type": "number"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Pricing Document API",
	Description:      "Parses spreadsheet pricing workbooks, validates their totals and renders round-then-sum totals.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
