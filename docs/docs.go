// Package docs registers the OpenAPI description of the POS REST API.
// Regenerate with: swag init -g cmd/pos/main.go -o docs
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.Response"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/http.Response"}}
                }
            }
        },
        "/api/auth/login": {
            "post": {
                "description": "Authenticate an operator and get a JWT token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Operator login",
                "parameters": [
                    {
                        "description": "Login credentials",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "properties": {
                                "username": {"type": "string"},
                                "password": {"type": "string"}
                            }
                        }
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.Response"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/http.Response"}}
                }
            }
        },
        "/api/products": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Products"],
                "summary": "List products",
                "parameters": [
                    {"type": "string", "description": "Name or SKU fragment", "name": "search", "in": "query"},
                    {"type": "string", "description": "Category or all", "name": "category", "in": "query"},
                    {"type": "boolean", "description": "Only products at or below their alert threshold", "name": "low_stock", "in": "query"},
                    {"type": "integer", "description": "Page size", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Page offset", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.Response"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Products"],
                "summary": "Create a product",
                "parameters": [
                    {"description": "Product", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.Product"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/http.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.Response"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/http.Response"}}
                }
            }
        },
        "/api/products/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Products"],
                "summary": "Get a product",
                "parameters": [{"type": "integer", "description": "Product ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.Response"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Products"],
                "summary": "Update a product",
                "parameters": [
                    {"type": "integer", "description": "Product ID", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.Product"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.Response"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/http.Response"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Products"],
                "summary": "Delete a product",
                "parameters": [{"type": "integer", "description": "Product ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.Response"}}
                }
            }
        },
        "/api/carts/{id}/checkout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Carts"],
                "summary": "Commit a cart as an order",
                "parameters": [
                    {"type": "string", "description": "Cart ID", "name": "id", "in": "path", "required": true},
                    {
                        "description": "Payment",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"type": "object", "properties": {"payment_method": {"type": "string"}}}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/http.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.Response"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/http.Response"}}
                }
            }
        },
        "/api/reports/calendar": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Reports"],
                "summary": "Calendar page of daily results",
                "parameters": [
                    {"type": "string", "description": "week, month or year", "name": "mode", "in": "query"},
                    {"type": "string", "description": "Anchor day YYYY-MM-DD", "name": "date", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.Response"}}
                }
            }
        },
        "/api/notifications": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Notifications"],
                "summary": "Merged notification feed",
                "parameters": [
                    {"type": "string", "description": "all, order, expense, alert or system", "name": "filter", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.Response"}}
                }
            }
        }
    },
    "definitions": {
        "domain.Product": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "sku": {"type": "string"},
                "price": {"type": "number"},
                "cost": {"type": "number"},
                "stock": {"type": "integer"},
                "alert_threshold": {"type": "integer"},
                "category": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "image": {"type": "string"},
                "production_date": {"type": "string"},
                "shelf_life_days": {"type": "integer"}
            }
        },
        "http.Response": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {},
                "error": {"type": "string"},
                "warning": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "POS Core API",
	Description:      "Point of sale back office: catalog, carts, restocking, reports and notifications.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
