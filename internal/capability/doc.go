// Package capability reads the encoder version and compiled-in features from
// its cached build configuration.
//
// Feature detection is a substring test for the configure switch (for example
// "--enable-libx265") and is a heuristic: a build can carry a library under a
// different switch name and would be reported as lacking it.
package capability
