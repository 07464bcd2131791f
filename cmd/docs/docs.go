// Package docs holds the Swagger document served under /swagger. Keep it in
// step with the @Router annotations in internal/handlers.
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
        "/linked-accounts/{id}/sync": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns the latest sync run of the linked bank, or an IDLE status if none ran yet.",
                "produces": ["application/json"],
                "tags": ["sync"],
                "summary": "Get sync status",
                "parameters": [{"type": "string", "description": "Linked account ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.SyncRunResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Linked account not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Starts an incremental sync of the linked bank in the background. Only one sync per bank runs at a time.",
                "produces": ["application/json"],
                "tags": ["sync"],
                "summary": "Start a sync",
                "parameters": [{"type": "string", "description": "Linked account ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/dto.SyncRunResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Linked account not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "A sync is already running", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.SyncRunResponse": {
            "type": "object",
            "properties": {
                "runID": {"type": "string"},
                "linkedAccountID": {"type": "string"},
                "state": {"type": "string"},
                "startedAt": {"type": "string"},
                "finishedAt": {"type": "string"},
                "pagesApplied": {"type": "integer"},
                "created": {"type": "integer"},
                "updated": {"type": "integer"},
                "removed": {"type": "integer"},
                "error": {"type": "string"}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
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
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Budget Sync API",
	Description:      "Bank linking, incremental transaction sync, budgets and goals.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
