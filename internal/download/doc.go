// Package download installs a prebuilt encoder binary into the managed cache.
//
// A Downloader picks a source URL for the running platform from configuration
// (architecture key first, then platform family), streams it to a temporary
// file next to the destination, checks its SHA-256 digest when one is
// configured, unpacks zip archives, and renames the result into place. On POSIX
// the installed file is marked executable.
//
// Concurrent callers in one process share a single transfer per destination;
// separate processes serialize on a lock file beside the destination. Every
// attempt is written to the install manifest. Failures come back as *Error so
// callers can tell which stage broke without parsing messages.
package download
