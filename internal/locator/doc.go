// Package locator answers whether a usable encoder binary is reachable.
//
// Two places are probed: the system search path and the managed cache
// directory that the downloader populates. Probes never fail loudly; any I/O
// or process error degrades to "not found" so callers can fall through to the
// next resolution step.
package locator
