// Package streaming provides timeout-protected chunked copying of artifact
// bytes to HTTP clients. It distinguishes a slow client (write timeout) from
// a departed one (context cancellation) so delivery handlers can log the
// right thing and stop reading from disk promptly.
package streaming
