// Package formats is the application's own number format registry.
//
// Values are looked up for the language active in a translation.Context:
// the specific locale table first (pt_BR), then the language table (pt),
// then the global settings. Tables ship embedded in locales.yaml and more
// can be merged from YAML files.
package formats
