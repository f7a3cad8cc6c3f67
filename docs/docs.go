// Package docs registra la especificación OpenAPI servida en /swagger.
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
        "/pets": {
            "get": {
                "description": "Devuelve las mascotas del usuario autenticado, más nuevas primero.",
                "produces": ["application/json"],
                "tags": ["pets"],
                "summary": "Listar mis mascotas",
                "parameters": [
                    {"type": "string", "description": "Solo en modo dev, ID de usuario para depuración", "name": "X-Debug-User-ID", "in": "header"},
                    {"type": "string", "description": "Bearer token en producción", "name": "Authorization", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/pets.Row"}}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}}
                }
            },
            "post": {
                "description": "Crea el perfil de una mascota del usuario autenticado. El backend asigna id, version y fechas.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["pets"],
                "summary": "Publicar mascota",
                "parameters": [
                    {"type": "string", "description": "Solo en modo dev, ID de usuario para depuración", "name": "X-Debug-User-ID", "in": "header"},
                    {"type": "string", "description": "Bearer token en producción", "name": "Authorization", "in": "header"},
                    {"description": "Datos de la mascota", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/pets.DraftRow"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/pets.Row"}},
                    "400": {"description": "invalid json / reglas de negocio", "schema": {"type": "string"}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}}
                }
            }
        },
        "/pets/{petID}": {
            "get": {
                "description": "Solo el dueño puede ver el perfil completo.",
                "produces": ["application/json"],
                "tags": ["pets"],
                "summary": "Ver mascota",
                "parameters": [
                    {"type": "string", "description": "ID de la mascota", "name": "petID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/pets.Row"}},
                    "403": {"description": "forbidden", "schema": {"type": "string"}},
                    "404": {"description": "pet not found", "schema": {"type": "string"}}
                }
            },
            "patch": {
                "description": "PATCH parcial: los campos ausentes no se tocan; photos reemplaza la lista completa. Incrementa version.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["pets"],
                "summary": "Actualizar mascota",
                "parameters": [
                    {"type": "string", "description": "ID de la mascota", "name": "petID", "in": "path", "required": true},
                    {"description": "Campos a modificar", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/pets.PatchRow"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/pets.Row"}},
                    "400": {"description": "invalid json / patch vacío / reglas de negocio", "schema": {"type": "string"}},
                    "403": {"description": "forbidden", "schema": {"type": "string"}},
                    "404": {"description": "pet not found", "schema": {"type": "string"}}
                }
            },
            "delete": {
                "tags": ["pets"],
                "summary": "Borrar mascota",
                "parameters": [
                    {"type": "string", "description": "ID de la mascota", "name": "petID", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "forbidden", "schema": {"type": "string"}},
                    "404": {"description": "pet not found", "schema": {"type": "string"}}
                }
            }
        },
        "/storage/pets/{ownerID}/{petID}/{filename}": {
            "get": {
                "produces": ["application/octet-stream"],
                "tags": ["storage"],
                "summary": "Descargar foto de mascota",
                "parameters": [
                    {"type": "string", "name": "ownerID", "in": "path", "required": true},
                    {"type": "string", "name": "petID", "in": "path", "required": true},
                    {"type": "string", "name": "filename", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "404": {"description": "not found", "schema": {"type": "string"}}
                }
            },
            "put": {
                "description": "Guarda el body crudo como objeto y devuelve su URL pública.",
                "consumes": ["application/octet-stream"],
                "produces": ["application/json"],
                "tags": ["storage"],
                "summary": "Subir foto de mascota",
                "parameters": [
                    {"type": "string", "name": "ownerID", "in": "path", "required": true},
                    {"type": "string", "name": "petID", "in": "path", "required": true},
                    {"type": "string", "name": "filename", "in": "path", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/pets.uploadResponse"}},
                    "400": {"description": "key inválida", "schema": {"type": "string"}},
                    "403": {"description": "forbidden", "schema": {"type": "string"}},
                    "404": {"description": "pet not found", "schema": {"type": "string"}},
                    "413": {"description": "too large", "schema": {"type": "string"}}
                }
            }
        }
    },
    "definitions": {
        "pets.Row": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "owner_user_id": {"type": "string"},
                "name": {"type": "string"},
                "species": {"type": "string", "enum": ["dog", "cat", "bird", "rabbit", "other"]},
                "breed": {"type": "string"},
                "sex": {"type": "string", "enum": ["male", "female", "unknown"]},
                "age": {"type": "integer"},
                "weight_kg": {"type": "number"},
                "photos": {"type": "array", "items": {"type": "string"}},
                "notes": {"type": "string"},
                "version": {"type": "integer"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "pets.DraftRow": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "species": {"type": "string"},
                "breed": {"type": "string"},
                "sex": {"type": "string"},
                "age": {"type": "integer"},
                "weight_kg": {"type": "number"},
                "photos": {"type": "array", "items": {"type": "string"}},
                "notes": {"type": "string"}
            }
        },
        "pets.PatchRow": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "species": {"type": "string"},
                "breed": {"type": "string"},
                "sex": {"type": "string"},
                "age": {"type": "integer"},
                "weight_kg": {"type": "number"},
                "photos": {"type": "array", "items": {"type": "string"}},
                "notes": {"type": "string"}
            }
        },
        "pets.uploadResponse": {
            "type": "object",
            "properties": {
                "url": {"type": "string"}
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
	Title:            "Pet Marketplace API",
	Description:      "Backend colaborador de petsync: CRUD de mascotas, fotos y feed realtime.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
