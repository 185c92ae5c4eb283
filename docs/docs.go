// Package docs holds the Swagger 2.0 document served at /swagger.
// Keep it in step with the handler annotations in internal/http/handler.
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
        "/items": {
            "get": {
                "summary": "List items",
                "parameters": [
                    {"$ref": "#/parameters/policy"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ItemListResult"}}
                }
            },
            "put": {
                "summary": "Create or replace an item",
                "consumes": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/policy"},
                    {"name": "item", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.Item"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Item"}}
                }
            }
        },
        "/items/{id}": {
            "get": {
                "summary": "Get an item",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"$ref": "#/parameters/policy"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Item"}},
                    "404": {"description": "Not Found"}
                }
            },
            "delete": {
                "summary": "Delete an item",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"$ref": "#/parameters/policy"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found"}
                }
            }
        }
    },
    "parameters": {
        "policy": {
            "name": "policy",
            "in": "query",
            "type": "string",
            "enum": ["network", "network_sync", "storage", "storage_sync"],
            "description": "Sync policy deciding which store answers"
        }
    },
    "definitions": {
        "model.Item": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "updated_at": {"type": "string", "format": "date-time"}
            }
        },
        "handler.ItemListResult": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/model.Item"}},
                "total": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "datasync API",
	Description:      "Items kept in sync between a local store and an object store.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
