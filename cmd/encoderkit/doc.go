// Command encoderkit locates, installs, and inspects the ffmpeg binary used
// for rendering.
//
// Subcommands resolve the encoder (downloading it when nothing usable is
// installed), report its version and compiled-in features, show recent
// download attempts, and build media fragment URLs.
package main
