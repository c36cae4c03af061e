// Package rest implements the HTTP API of the version server on fiber.
//
// Routes:
//
//	GET /health                  plain "OK"
//	GET /version                 build version of the server binary
//	GET /api/version             the Version Record as JSON
//	GET /api/formats             format check of the configured languages
//	GET /api/formats/:language   format check of one language
package rest
