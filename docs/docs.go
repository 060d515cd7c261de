// Package docs содержит OpenAPI-описание HTTP API в формате swag.
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
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["auth"], "summary": "Регистрация покупателя",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/http.CredentialsRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/http.UserResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "409": {"description": "Логин занят", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"], "summary": "Вход",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/http.CredentialsRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.TokenResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/products": {
            "get": {
                "tags": ["products"], "summary": "Каталог товаров",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "ID товаров через запятую", "name": "ids", "in": "query"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/http.ProductResponse"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["products"], "summary": "Создание товара",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/http.CreateProductRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/http.ProductResponse"}},
                    "400": {"description": "Ошибка валидации", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/products/{id}": {
            "get": {
                "tags": ["products"], "summary": "Товар по идентификатору",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "ID товара", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.ProductResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/cart": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["cart"], "summary": "Корзина пользователя",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.CartResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/cart/items": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["cart"], "summary": "Добавление товара в корзину",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/http.AddCartItemRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.CartResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/cart/items/{productId}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["cart"], "summary": "Изменение количества товара в корзине",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "ID товара", "name": "productId", "in": "path", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/http.UpdateCartItemRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.CartResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["cart"], "summary": "Удаление товара из корзины",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "ID товара", "name": "productId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.CartResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/orders": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["orders"], "summary": "Заказы пользователя",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/http.OrderResponse"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Превращает корзину пользователя в заказ: списывает остатки и очищает корзину в одной транзакции",
                "tags": ["orders"], "summary": "Оформление заказа",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Ключ идемпотентности", "name": "Idempotency-Key", "in": "header"},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/http.PlaceOrderRequest"}}
                ],
                "responses": {
                    "200": {"description": "Повтор по ключу идемпотентности", "schema": {"$ref": "#/definitions/http.PlaceOrderResponse"}},
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/http.PlaceOrderResponse"}},
                    "400": {"description": "Пустая корзина, нехватка остатка или неполный адрес", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Товар из корзины удалён", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "409": {"description": "Заказ с этим ключом ещё оформляется", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/orders/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["orders"], "summary": "Заказ по идентификатору",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "ID заказа", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.OrderResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/orders/{id}/status": {
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Только для администратора",
                "tags": ["orders"], "summary": "Смена статуса заказа",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "ID заказа", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/http.SetOrderStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.OrderResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/orders/{id}/receipt": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["orders"], "summary": "Ссылка на квитанцию заказа",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "ID заказа", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.ReceiptResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "http.ErrorResponse": {"type": "object", "properties": {
            "code": {"type": "integer"}, "message": {"type": "string"},
            "details": {"type": "object", "additionalProperties": true}
        }},
        "http.AddressDTO": {"type": "object", "properties": {
            "street": {"type": "string"}, "city": {"type": "string"}, "state": {"type": "string"},
            "zip": {"type": "string"}, "country": {"type": "string"}
        }},
        "http.PlaceOrderRequest": {"type": "object", "properties": {
            "shipping_address": {"$ref": "#/definitions/http.AddressDTO"}
        }},
        "http.SetOrderStatusRequest": {"type": "object", "required": ["status"], "properties": {
            "status": {"type": "string", "enum": ["pending", "completed", "cancelled"]}
        }},
        "http.AddCartItemRequest": {"type": "object", "required": ["product_id"], "properties": {
            "product_id": {"type": "string"}, "quantity": {"type": "integer"}
        }},
        "http.UpdateCartItemRequest": {"type": "object", "properties": {"quantity": {"type": "integer"}}},
        "http.CreateProductRequest": {"type": "object", "required": ["name"], "properties": {
            "name": {"type": "string"}, "description": {"type": "string"},
            "price": {"type": "string", "example": "10.00"}, "stock": {"type": "integer"}
        }},
        "http.CredentialsRequest": {"type": "object", "required": ["username", "password"], "properties": {
            "username": {"type": "string", "maxLength": 64}, "password": {"type": "string", "minLength": 6, "maxLength": 72}
        }},
        "http.ProductResponse": {"type": "object", "properties": {
            "id": {"type": "string"}, "name": {"type": "string"}, "description": {"type": "string"},
            "price": {"type": "string"}, "stock": {"type": "integer"},
            "created_at": {"type": "string"}, "updated_at": {"type": "string"}
        }},
        "http.CartItemResponse": {"type": "object", "properties": {
            "product_id": {"type": "string"}, "quantity": {"type": "integer"},
            "product": {"$ref": "#/definitions/http.ProductResponse"}
        }},
        "http.CartResponse": {"type": "object", "properties": {
            "id": {"type": "string"},
            "items": {"type": "array", "items": {"$ref": "#/definitions/http.CartItemResponse"}}
        }},
        "http.OrderLineResponse": {"type": "object", "properties": {
            "product_id": {"type": "string"}, "quantity": {"type": "integer"},
            "unit_price": {"type": "string"}, "subtotal": {"type": "string"},
            "product": {"$ref": "#/definitions/http.ProductResponse"}
        }},
        "http.OrderResponse": {"type": "object", "properties": {
            "id": {"type": "string"}, "user_id": {"type": "string"}, "status": {"type": "string"},
            "total_amount": {"type": "string"},
            "shipping_address": {"$ref": "#/definitions/http.AddressDTO"},
            "lines": {"type": "array", "items": {"$ref": "#/definitions/http.OrderLineResponse"}},
            "created_at": {"type": "string"}, "updated_at": {"type": "string"}
        }},
        "http.PlaceOrderResponse": {"type": "object", "properties": {
            "order": {"$ref": "#/definitions/http.OrderResponse"}
        }},
        "http.UserResponse": {"type": "object", "properties": {
            "id": {"type": "string"}, "username": {"type": "string"}, "role": {"type": "string"}
        }},
        "http.TokenResponse": {"type": "object", "properties": {
            "access_token": {"type": "string"}, "token_type": {"type": "string"}, "expires_at": {"type": "string"}
        }},
        "http.ReceiptResponse": {"type": "object", "properties": {"url": {"type": "string"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Storefront API",
	Description:      "Каталог, корзина и оформление заказов",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
