// Package session owns the encoder state for one render session.
//
// A Session ties together the locator, downloader, resolver, build-info cache,
// capability detector, and fragment addresser built from one configuration.
// The build-info cache lives here rather than in a package variable, so two
// sessions never share cached text and tests start clean. Every log line the
// session emits carries its session ID.
package session
