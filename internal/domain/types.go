package domain

// RenderRequest is the body of POST /render.
type RenderRequest struct {
	Markdown    string  `json:"markdown"`
	ContentHash *string `json:"content_hash,omitempty"`
}

// RenderResponse carries the base64 PDF and the caller's hash, echoed as-is.
// PDFBase64 is empty when there was nothing to render.
type RenderResponse struct {
	PDFBase64 string  `json:"pdfBase64"`
	Hash      *string `json:"hash"`
}

// EmptyRender returns the response used when the markdown has no renderable content.
func EmptyRender(hash *string) RenderResponse {
	return RenderResponse{PDFBase64: "", Hash: hash}
}

// OcrResult is the response of POST /ocr.
type OcrResult struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Pages      int     `json:"pages"`
}
