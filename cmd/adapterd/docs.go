package main

// General API documentation for swaggo. The served document lives in
// internal/httpapi/swagger.go (build tag swagger).
//
// @title           adapterd API
// @version         1.0
// @description     HTTP API for text generation over a base model with swappable LoRA adapters.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
