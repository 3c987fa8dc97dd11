// Package mediatypes provides shared type definitions and extension tables for
// the compression service.
//
// This package exists as a dependency-free foundation that can be imported by
// other packages without creating import cycles. It contains the output format,
// preset, and enhancement enums plus the accepted-input and MIME tables.
package mediatypes
