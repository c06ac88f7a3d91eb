// Package manifest records encoder download attempts in SQLite.
//
// Every attempt the downloader makes, successful or not, becomes one row
// carrying the destination, source URL, digest, size, and failure stage. The
// resolver reads the latest attempt to decide whether a failed download is
// still inside its retry cooldown; the CLI status command lists recent rows.
//
// Schema changes bump schemaVersion in schema.go; users delete the database to
// adopt the new schema.
package manifest
