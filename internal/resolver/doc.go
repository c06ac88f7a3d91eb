// Package resolver answers "which encoder binary should be launched?".
//
// Resolution tries, in order: an explicitly configured executable, the bare
// binary name on the system search path, the managed cache, and finally a
// download into the managed cache. The download branch always returns the
// managed path, even when the download failed; the failure surfaces when the
// caller first launches the binary. Failed downloads are not retried until the
// configured cooldown has passed since the last failed attempt in the manifest.
package resolver
