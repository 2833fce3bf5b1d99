package main

// General API documentation for swaggo. Run `swag init -g cmd/llmchat/docs.go -o internal/httpapi/docs`
// to regenerate internal/httpapi/docs.
//
// @title           llmchat API
// @version         1.0
// @description     Text generation API consumed by the llmchat client.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
