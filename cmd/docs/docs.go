// Package docs holds the generated swagger spec.
package docs

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
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Register new user",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "User login",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "404": {"description": "Not Found"}}
            }
        },
        "/auth/refresh-token": {
            "post": {
                "tags": ["auth"],
                "summary": "Refresh access token",
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["auth"],
                "summary": "User logout",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/auth/forgot-password": {
            "post": {
                "tags": ["auth"],
                "summary": "Request password reset",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/auth/reset-password/{token}": {
            "post": {
                "tags": ["auth"],
                "summary": "Reset password",
                "parameters": [{"name": "token", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/v1/users/me": {
            "get": {
                "tags": ["users"],
                "summary": "Current user profile",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
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

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Authgate API",
	Description:      "Credential-based authentication service: registration, login, token refresh, logout and password reset.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
