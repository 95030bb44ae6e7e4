// Package http implements the REST surface: image uploads, the asset
// listing, and the history endpoints.
package http
