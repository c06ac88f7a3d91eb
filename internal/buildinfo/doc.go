// Package buildinfo caches the encoder's build configuration text.
//
// The first Get launches the binary with -buildconf and keeps whatever it
// printed on stderr. Every later Get returns that text, whatever path it is
// given, for the lifetime of the Cache. A Cache belongs to one session; there
// is no package-level instance.
package buildinfo
