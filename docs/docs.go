// Package docs registers the OpenAPI description of the sales dashboard API.
// Regenerate with: swag init -g cmd/sales-api/main.go
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
        "/datasets": {
            "post": {
                "description": "Load a CSV or XLSX sales file, derive calendar features, drop duplicates and make it the current dataset",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["datasets"],
                "summary": "Upload a dataset",
                "parameters": [
                    {"type": "file", "description": "Sales CSV or XLSX file", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "201": {"description": "Dataset loaded", "schema": {"$ref": "#/definitions/handler.Dataset"}},
                    "400": {"description": "Missing file", "schema": {"$ref": "#/definitions/handler.APIError"}},
                    "422": {"description": "File could not be loaded", "schema": {"$ref": "#/definitions/handler.APIError"}}
                }
            }
        },
        "/datasets/current": {
            "get": {
                "description": "Metadata of the dataset the dashboard is serving",
                "produces": ["application/json"],
                "tags": ["datasets"],
                "summary": "Current dataset",
                "responses": {
                    "200": {"description": "Current dataset", "schema": {"$ref": "#/definitions/handler.Dataset"}},
                    "404": {"description": "No dataset loaded", "schema": {"$ref": "#/definitions/handler.APIError"}}
                }
            }
        },
        "/dashboard/filters": {
            "get": {
                "description": "Distinct years (ascending), categories and regions (first-seen order)",
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Filter options",
                "responses": {
                    "200": {"description": "Filter options", "schema": {"$ref": "#/definitions/analytics.FilterOptions"}},
                    "404": {"description": "No dataset loaded", "schema": {"$ref": "#/definitions/handler.APIError"}}
                }
            }
        },
        "/dashboard/kpis": {
            "get": {
                "description": "Total sales, total profit and distinct orders of the filtered rows",
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Dashboard KPIs",
                "parameters": [
                    {"$ref": "#/parameters/year"},
                    {"$ref": "#/parameters/category"},
                    {"$ref": "#/parameters/region"}
                ],
                "responses": {
                    "200": {"description": "KPIs", "schema": {"$ref": "#/definitions/analytics.KPIs"}},
                    "400": {"description": "Invalid filter", "schema": {"$ref": "#/definitions/handler.APIError"}},
                    "404": {"description": "No dataset loaded", "schema": {"$ref": "#/definitions/handler.APIError"}}
                }
            }
        },
        "/dashboard/charts": {
            "get": {
                "description": "Daily sales trend, sales by category, sales by region and top 10 products by sales of the filtered rows",
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Dashboard charts",
                "parameters": [
                    {"$ref": "#/parameters/year"},
                    {"$ref": "#/parameters/category"},
                    {"$ref": "#/parameters/region"}
                ],
                "responses": {
                    "200": {"description": "Chart series", "schema": {"$ref": "#/definitions/handler.ChartsResponse"}},
                    "400": {"description": "Invalid filter", "schema": {"$ref": "#/definitions/handler.APIError"}},
                    "404": {"description": "No dataset loaded", "schema": {"$ref": "#/definitions/handler.APIError"}}
                }
            }
        },
        "/records": {
            "get": {
                "description": "First rows of the filtered dataset",
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Filtered records",
                "parameters": [
                    {"type": "integer", "description": "Maximum rows (default 100)", "name": "limit", "in": "query"},
                    {"$ref": "#/parameters/year"},
                    {"$ref": "#/parameters/category"},
                    {"$ref": "#/parameters/region"}
                ],
                "responses": {
                    "200": {"description": "Rows", "schema": {"$ref": "#/definitions/handler.RecordsResponse"}},
                    "400": {"description": "Invalid parameter", "schema": {"$ref": "#/definitions/handler.APIError"}},
                    "404": {"description": "No dataset loaded", "schema": {"$ref": "#/definitions/handler.APIError"}}
                }
            }
        },
        "/aggregate": {
            "get": {
                "description": "Group the filtered rows by a column and reduce a metric",
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Ad hoc aggregation",
                "parameters": [
                    {"type": "string", "description": "Group-by column, e.g. Region", "name": "group_by", "in": "query", "required": true},
                    {"type": "string", "description": "Metric column (default Sales)", "name": "metric", "in": "query"},
                    {"type": "string", "description": "sum, count, mean, min or max (default sum)", "name": "reducer", "in": "query"},
                    {"type": "string", "description": "key_asc, value_desc or value_asc (default key_asc)", "name": "order", "in": "query"},
                    {"type": "integer", "description": "Maximum groups, 0 for all", "name": "limit", "in": "query"},
                    {"$ref": "#/parameters/year"},
                    {"$ref": "#/parameters/category"},
                    {"$ref": "#/parameters/region"}
                ],
                "responses": {
                    "200": {"description": "Aggregation result", "schema": {"$ref": "#/definitions/model.AggregationResult"}},
                    "400": {"description": "Invalid query", "schema": {"$ref": "#/definitions/handler.APIError"}},
                    "404": {"description": "No dataset loaded", "schema": {"$ref": "#/definitions/handler.APIError"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "Service healthy", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        }
    },
    "parameters": {
        "year": {"type": "array", "items": {"type": "integer"}, "collectionFormat": "multi", "description": "Years (absent: all, empty: none)", "name": "year", "in": "query"},
        "category": {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "description": "Categories (absent: all, empty: none)", "name": "category", "in": "query"},
        "region": {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "description": "Regions (absent: all, empty: none)", "name": "region", "in": "query"}
    },
    "definitions": {
        "handler.APIError": {
            "type": "object",
            "properties": {
                "status_code": {"type": "integer"},
                "error_code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "handler.Dataset": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "loaded_at": {"type": "string"},
                "rows": {"type": "integer"},
                "duplicates_removed": {"type": "integer"},
                "load": {"type": "object"}
            }
        },
        "handler.ChartsResponse": {
            "type": "object",
            "properties": {
                "rows": {"type": "integer"},
                "charts": {"type": "array", "items": {"$ref": "#/definitions/model.AggregationResult"}}
            }
        },
        "handler.RecordsResponse": {
            "type": "object",
            "properties": {
                "total": {"type": "integer"},
                "records": {"type": "array", "items": {"type": "object"}}
            }
        },
        "analytics.FilterOptions": {
            "type": "object",
            "properties": {
                "years": {"type": "array", "items": {"type": "integer"}},
                "categories": {"type": "array", "items": {"type": "string"}},
                "regions": {"type": "array", "items": {"type": "string"}}
            }
        },
        "analytics.KPIs": {
            "type": "object",
            "properties": {
                "rows": {"type": "integer"},
                "total_sales": {"type": "number"},
                "total_profit": {"type": "number"},
                "total_orders": {"type": "integer"},
                "negative_profit_rows": {"type": "integer"}
            }
        },
        "model.Entry": {
            "type": "object",
            "properties": {
                "key": {},
                "value": {"type": "number", "x-nullable": true},
                "count": {"type": "integer"}
            }
        },
        "model.AggregationResult": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "group_by": {"type": "string"},
                "metric": {"type": "string"},
                "reducer": {"type": "string"},
                "order": {"type": "string"},
                "entries": {"type": "array", "items": {"$ref": "#/definitions/model.Entry"}}
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
	Title:            "Sales Analytics API",
	Description:      "Upload retail sales data and query KPIs, chart series and ad hoc aggregations.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
