package main

// General API documentation for swaggo. The generated document lives in
// internal/apidocs and is served when built with -tags=swagger.
//
// @title           llmsettings API
// @version         1.0
// @description     Language model provider settings and remote model lists.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
