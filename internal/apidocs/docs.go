// Package apidocs registers the OpenAPI document served by the Swagger UI.
package apidocs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/providers": {
            "get": {"summary": "Language model configuration of every provider", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}
        },
        "/providers/{provider}": {
            "get": {"summary": "One provider's configuration", "parameters": [{"name": "provider", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Unknown provider"}}},
            "patch": {"summary": "Merge a partial provider configuration", "parameters": [{"name": "provider", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid body"}, "502": {"description": "Persistence failed"}}}
        },
        "/providers/{provider}/enabled": {
            "put": {"summary": "Enable or disable a provider", "parameters": [{"name": "provider", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}
        },
        "/providers/{provider}/custom-models": {
            "post": {"summary": "Add, update, delete or replace custom model cards", "parameters": [{"name": "provider", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "204": {"description": "Provider has no entry"}}}
        },
        "/providers/{provider}/enabled-models/{model}": {
            "delete": {"summary": "Remove a model from the enabled list", "parameters": [{"name": "provider", "in": "path", "required": true, "type": "string"}, {"name": "model", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}
        },
        "/providers/{provider}/models": {
            "get": {"summary": "Cached remote model list", "parameters": [{"name": "provider", "in": "path", "required": true, "type": "string"}, {"name": "auto_fetch", "in": "query", "type": "boolean"}], "responses": {"200": {"description": "Resolved or idle"}, "202": {"description": "Fetch still pending"}, "502": {"description": "Fetch failed"}}},
            "delete": {"summary": "Drop cached model lists", "parameters": [{"name": "provider", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "No Content"}}}
        },
        "/providers/{provider}/models/revalidate": {
            "post": {"summary": "Fetch the remote model list again", "parameters": [{"name": "provider", "in": "path", "required": true, "type": "string"}, {"name": "auto_fetch", "in": "query", "type": "boolean"}], "responses": {"200": {"description": "OK"}, "502": {"description": "Fetch failed"}}}
        },
        "/editing": {
            "get": {"summary": "Custom model card open for edit", "responses": {"200": {"description": "OK"}}},
            "put": {"summary": "Set or clear the card open for edit", "responses": {"200": {"description": "OK"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "llmsettings API",
	Description:      "Language model provider settings and remote model lists.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
