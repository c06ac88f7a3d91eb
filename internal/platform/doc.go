// Package platform reports the operating-system family the process runs on.
//
// The family selects the encoder executable name (".exe" suffix on Windows)
// and the layout of the managed cache directory. Key combines GOOS and GOARCH
// for lookups in architecture-aware download tables.
package platform
