// Package docs holds the swaggo description of the inference API.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/fortune": {
            "get": {
                "produces": ["application/json"],
                "tags": ["service"],
                "summary": "A random fortune",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.FortuneResponse"}}
                }
            }
        },
        "/generate": {
            "post": {
                "description": "Runs the loaded model on the prompt and returns the completion.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["generate"],
                "summary": "Generate text",
                "parameters": [
                    {
                        "description": "Generation request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/types.GenerateRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.GenerateResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "415": {"description": "Unsupported Media Type", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "504": {"description": "Gateway Timeout", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["service"],
                "summary": "Service health",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.HealthResponse"}}
                }
            }
        },
        "/model": {
            "get": {
                "produces": ["application/json"],
                "tags": ["service"],
                "summary": "Loaded model name",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ModelNameResponse"}}
                }
            }
        }
    },
    "definitions": {
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 400},
                "error": {"type": "string", "example": "invalid JSON body"}
            }
        },
        "types.FortuneResponse": {
            "type": "object",
            "properties": {
                "fortune": {"type": "string", "example": "A fresh start will put you on your way."}
            }
        },
        "types.GenerateRequest": {
            "type": "object",
            "properties": {
                "do_sample": {"type": "boolean", "example": true},
                "max_new_tokens": {"type": "integer", "example": 512},
                "prompt": {"type": "string", "example": "Tell me about AI in 100 characters."},
                "temperature": {"type": "number", "example": 0.7},
                "top_p": {"type": "number", "example": 0.9}
            }
        },
        "types.GenerateResponse": {
            "type": "object",
            "properties": {
                "generated_text": {"type": "string"},
                "response_time": {"type": "number", "example": 0.5},
                "total_request_time": {"type": "number"}
            }
        },
        "types.HealthResponse": {
            "type": "object",
            "properties": {
                "model": {"type": "string", "example": "tinyllama-q4.gguf"},
                "ready": {"type": "boolean"},
                "status": {"type": "string", "example": "ok"}
            }
        },
        "types.ModelNameResponse": {
            "type": "object",
            "properties": {
                "model_name": {"type": "string", "example": "tinyllama-q4.gguf"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "llmchat API",
	Description:      "Text generation API consumed by the llmchat client.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
