// Package docs registers the storefront OpenAPI description with swag.
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
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "in": "header", "name": "X-API-KEY"},
        "BearerAuth": {"type": "apiKey", "in": "header", "name": "Authorization"}
    },
    "security": [{"ApiKeyAuth": []}],
    "paths": {
        "/categories": {"get": {"tags": ["catalog"], "summary": "List categories", "produces": ["application/json"],
            "parameters": [{"type": "string", "name": "lang", "in": "query"}],
            "responses": {"200": {"description": "OK"}}}},
        "/products": {"get": {"tags": ["catalog"], "summary": "List active products", "produces": ["application/json"],
            "parameters": [
                {"type": "string", "name": "category", "in": "query"},
                {"type": "boolean", "name": "featured", "in": "query"},
                {"type": "string", "name": "q", "in": "query"},
                {"type": "string", "name": "min_price", "in": "query"},
                {"type": "string", "name": "max_price", "in": "query"},
                {"type": "string", "name": "sort", "in": "query", "enum": ["name", "newest", "price_asc", "price_desc"], "default": "name"},
                {"type": "integer", "name": "limit", "in": "query"},
                {"type": "integer", "name": "offset", "in": "query"}
            ],
            "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/products/featured": {"get": {"tags": ["catalog"], "summary": "Featured products", "produces": ["application/json"],
            "parameters": [{"type": "integer", "name": "limit", "in": "query"}],
            "responses": {"200": {"description": "OK"}}}},
        "/products/{slug}": {"get": {"tags": ["catalog"], "summary": "Product detail", "produces": ["application/json"],
            "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}],
            "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/auth/signup": {"post": {"tags": ["auth"], "summary": "Create an account", "consumes": ["application/json"],
            "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SignUpRequest"}}],
            "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}}},
        "/auth/signin": {"post": {"tags": ["auth"], "summary": "Sign in", "consumes": ["application/json"],
            "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SignInRequest"}}],
            "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/auth/signout": {"post": {"tags": ["auth"], "summary": "Revoke the current session", "security": [{"ApiKeyAuth": [], "BearerAuth": []}],
            "responses": {"204": {"description": "No Content"}}}},
        "/auth/session": {"get": {"tags": ["auth"], "summary": "Current identity", "security": [{"ApiKeyAuth": [], "BearerAuth": []}],
            "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/profile": {
            "get": {"tags": ["profile"], "summary": "Profile", "security": [{"ApiKeyAuth": [], "BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["profile"], "summary": "Update profile", "security": [{"ApiKeyAuth": [], "BearerAuth": []}],
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateProfileRequest"}}],
                "responses": {"200": {"description": "OK"}}}},
        "/cart": {
            "get": {"tags": ["cart"], "summary": "Current cart", "security": [{"ApiKeyAuth": [], "BearerAuth": []}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}},
            "delete": {"tags": ["cart"], "summary": "Empty the cart", "security": [{"ApiKeyAuth": [], "BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}}},
        "/cart/items": {"post": {"tags": ["cart"], "summary": "Add a product", "security": [{"ApiKeyAuth": [], "BearerAuth": []}],
            "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AddItemRequest"}}],
            "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}}},
        "/cart/items/{product_id}": {
            "put": {"tags": ["cart"], "summary": "Change quantity", "security": [{"ApiKeyAuth": [], "BearerAuth": []}],
                "parameters": [
                    {"type": "string", "name": "product_id", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetQuantityRequest"}}
                ],
                "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["cart"], "summary": "Remove a line", "security": [{"ApiKeyAuth": [], "BearerAuth": []}],
                "parameters": [{"type": "string", "name": "product_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}}},
        "/orders": {
            "post": {"tags": ["orders"], "summary": "Place an order from the cart", "security": [{"ApiKeyAuth": [], "BearerAuth": []}],
                "parameters": [
                    {"type": "string", "name": "Idempotency-Key", "in": "header"},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ShippingForm"}}
                ],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}},
            "get": {"tags": ["orders"], "summary": "Order history", "security": [{"ApiKeyAuth": [], "BearerAuth": []}],
                "parameters": [
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}}},
        "/orders/{id}": {"get": {"tags": ["orders"], "summary": "Order detail", "security": [{"ApiKeyAuth": [], "BearerAuth": []}],
            "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
            "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/admin/stats": {"get": {"tags": ["admin"], "summary": "Dashboard figures", "security": [{"ApiKeyAuth": [], "BearerAuth": []}],
            "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}},
        "/admin/orders": {"get": {"tags": ["admin"], "summary": "Newest orders", "security": [{"ApiKeyAuth": [], "BearerAuth": []}],
            "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}},
        "/admin/orders/export": {"get": {"tags": ["admin"], "summary": "Orders spreadsheet", "security": [{"ApiKeyAuth": [], "BearerAuth": []}],
            "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
            "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}},
        "/admin/orders/{id}/status": {"put": {"tags": ["admin"], "summary": "Change an order's status", "security": [{"ApiKeyAuth": [], "BearerAuth": []}],
            "parameters": [
                {"type": "string", "name": "id", "in": "path", "required": true},
                {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStatusRequest"}}
            ],
            "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}}},
        "/admin/orders/feed": {"get": {"tags": ["admin"], "summary": "Websocket feed of new orders", "security": [{"ApiKeyAuth": [], "BearerAuth": []}],
            "responses": {"101": {"description": "Switching Protocols"}, "403": {"description": "Forbidden"}}}}
    },
    "definitions": {
        "SignUpRequest": {"type": "object", "required": ["email", "password", "confirm_password"], "properties": {
            "email": {"type": "string", "example": "abebe@example.com"},
            "password": {"type": "string", "example": "secret1"},
            "confirm_password": {"type": "string", "example": "secret1"},
            "full_name": {"type": "string", "example": "Abebe Kebede"}}},
        "SignInRequest": {"type": "object", "required": ["email", "password"], "properties": {
            "email": {"type": "string"}, "password": {"type": "string"}}},
        "UpdateProfileRequest": {"type": "object", "properties": {
            "full_name": {"type": "string"}, "phone": {"type": "string"},
            "address": {"$ref": "#/definitions/Address"}}},
        "Address": {"type": "object", "properties": {
            "address": {"type": "string"}, "city": {"type": "string"}, "region": {"type": "string"}}},
        "AddItemRequest": {"type": "object", "required": ["product_id"], "properties": {
            "product_id": {"type": "string", "format": "uuid"}, "quantity": {"type": "integer", "minimum": 1}}},
        "SetQuantityRequest": {"type": "object", "properties": {"quantity": {"type": "integer"}}},
        "ShippingForm": {"type": "object", "required": ["full_name", "email", "phone", "address", "city"], "properties": {
            "full_name": {"type": "string"}, "email": {"type": "string"}, "phone": {"type": "string"},
            "address": {"type": "string"}, "city": {"type": "string"}, "region": {"type": "string"},
            "payment_method": {"type": "string", "enum": ["cash_on_delivery", "bank_transfer", "telebirr"]},
            "notes": {"type": "string"}}},
        "UpdateStatusRequest": {"type": "object", "required": ["status"], "properties": {
            "status": {"type": "string", "enum": ["pending", "processing", "shipped", "delivered", "cancelled"]}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Storefront API",
	Description:      "Bilingual (English/Amharic) storefront: catalog, cart, checkout and admin order console.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
