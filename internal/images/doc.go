// Package images stores uploaded and fetched images for the attachment
// surface. Validation is sniff-based; client-declared types are advisory.
package images
