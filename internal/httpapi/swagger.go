//go:build swagger

package httpapi

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "schemes": {{ marshal .Schemes }},
    "paths": {
        "/generate": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Generate text with a brand strategy or an adapter checkpoint",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/types.GenerateRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.GenerateResponse"}},
                    "400": {"description": "Bad request or unsupported adapter", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "422": {"description": "Adapter load failed", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "429": {"description": "Too busy", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "500": {"description": "Generation failed", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Base model unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/adapters": {
            "get": {"produces": ["application/json"], "summary": "List adapter catalog, supported ids, brands and loaded adapters", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.AdaptersResponse"}}}}
        },
        "/adapters/unload": {
            "post": {
                "consumes": ["application/json"],
                "summary": "Unload a cached adapter checkpoint",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/types.UnloadRequest"}}],
                "responses": {"204": {"description": "Unloaded"}, "404": {"description": "Not loaded", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}}
            }
        },
        "/status": {
            "get": {"produces": ["application/json"], "summary": "Service status", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}}}
        },
        "/healthz": {"get": {"summary": "Liveness", "responses": {"200": {"description": "ok"}}}},
        "/readyz": {"get": {"summary": "Readiness (base model loaded)", "responses": {"200": {"description": "ready"}, "503": {"description": "loading"}}}}
    },
    "definitions": {
        "types.GenerateRequest": {"type": "object", "required": ["prompt"], "properties": {
            "prompt": {"type": "string"}, "brand": {"type": "string"}, "adapter_id": {"type": "string"},
            "checkpoint": {"type": "string"}, "max_tokens": {"type": "integer"}, "temperature": {"type": "number"},
            "top_p": {"type": "number"}, "top_k": {"type": "integer"}, "stop": {"type": "array", "items": {"type": "string"}},
            "seed": {"type": "integer"}, "repeat_penalty": {"type": "number"}}},
        "types.GenerateResponse": {"type": "object", "properties": {
            "text": {"type": "string"}, "adapter": {"type": "string"}, "strategy": {"type": "string"},
            "checkpoint": {"type": "string"}, "duration_ms": {"type": "integer"}}},
        "types.UnloadRequest": {"type": "object", "properties": {"checkpoint": {"type": "string"}}},
        "types.ErrorResponse": {"type": "object", "properties": {"error": {"type": "string"}, "kind": {"type": "string"}, "code": {"type": "integer"}}},
        "types.AdaptersResponse": {"type": "object", "properties": {
            "catalog": {"type": "array", "items": {"type": "object"}}, "supported": {"type": "array", "items": {"type": "string"}},
            "brands": {"type": "array", "items": {"type": "object"}}, "loaded": {"type": "array", "items": {"type": "object"}}}},
        "types.StatusResponse": {"type": "object", "properties": {
            "state": {"type": "string"}, "base_model": {"type": "string"}, "last_error": {"type": "string"},
            "adapters": {"type": "array", "items": {"type": "object"}}, "max_adapters": {"type": "integer"},
            "base_loads_total": {"type": "integer"}, "adapter_loads_total": {"type": "integer"},
            "evictions_total": {"type": "integer"}, "llama_built": {"type": "boolean"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "adapterd API",
	Description:      "HTTP API for LoRA adapter-aware text generation.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// MountSwagger serves the Swagger UI under /swagger/.
func MountSwagger(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}
