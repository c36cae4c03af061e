// Package checker compares the number formats of the application with CLDR data.
//
// For every language the checker activates the language in a translation
// context, asks a CLDR provider for the decimal and group symbols of the
// matching locale, reads DECIMAL_SEPARATOR and THOUSAND_SEPARATOR from the
// format registry and reports whether the decimal separators agree.
package checker
