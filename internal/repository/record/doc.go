// Package record implements persistence for the Version Record.
//
// Two repositories are provided behind the Repository interface:
// SQLRepository keeps the record as a named row of a settings table via gorm
// (SQLite, PostgreSQL, MySQL or SQL Server) and additionally keeps update
// history; FileRepository keeps it in a JSON file that is replaced atomically.
package record
