// Package handlers implements the HTTP surface of the transcode service:
// the compress and batch encode endpoints, artifact listing and download,
// the background-removal proxy, and the health/version endpoints. Handlers
// translate between HTTP and the pipeline/delivery packages and hold no
// encoding logic of their own.
package handlers
