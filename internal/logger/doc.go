// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a console encoder writing to stdout,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level configuration and parsing utilities,
//   - a gorm logger adapter so SQL statements end up in the same stream.
//
// Services accept a context and extract the logger from it, enabling
// scoped, structured logging throughout the codebase.
package logger
