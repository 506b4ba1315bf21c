package gosseract

import (
	"context"
	"errors"
	"testing"

	"meridian-converters/internal/domain"
)

func TestRecognizer_CanceledContext(t *testing.T) {
	r := New([]string{"eng"}, 300)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Text(ctx, []byte("png")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled error from Text, got %v", err)
	}
	if _, err := r.Confidences(ctx, []byte("png")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled error from Confidences, got %v", err)
	}
}

func TestRecognizer_RejectsEmptyImage(t *testing.T) {
	r := New(nil, 0)
	_, err := r.Text(context.Background(), nil)
	var ee *domain.EngineError
	if !errors.As(err, &ee) {
		t.Fatalf("expected engine error for empty image, got %v", err)
	}
}
