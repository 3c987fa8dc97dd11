// Package delivery serves finished artifacts out of the output directory:
// safe name resolution, single-range Range header handling with 206/416
// semantics, weak validators, and attachment dispositions that survive
// non-ASCII filenames. Bodies are streamed through the streaming package so
// slow and departed clients are handled uniformly.
package delivery
