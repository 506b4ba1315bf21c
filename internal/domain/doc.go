// Package domain contains the request/response types, input sanitization
// and result aggregation shared by the render and OCR services.
// Keep this package free of transport (HTTP) and engine (pandoc, tesseract) concerns.
package domain
