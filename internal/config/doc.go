// Package config defines the settings shared by the versioning binaries and
// provides helpers to load, validate and save them in YAML format.
//
// The settings file path defaults to DefaultConfigFilename and can be
// overridden with the SWEETMONEY_CONFIG environment variable.
package config
