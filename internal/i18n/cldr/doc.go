// Package cldr looks up number symbols from CLDR locale data.
//
// Two providers are available: Playground uses the generated tables of
// go-playground/locales for a fixed set of locales; Text renders a sample
// number through golang.org/x/text/message and reads the symbols back.
package cldr
