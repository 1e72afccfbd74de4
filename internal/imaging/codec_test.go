package imaging

import (
	"encoding/base64"
	"errors"
	"image/color"
	"testing"

	"github.com/elieceruiz/cleanup/internal/domain"
)

func TestBlobRoundTripPreservesDimensions(t *testing.T) {
	img := flatImage(300, 180, color.RGBA{90, 140, 200, 255})

	blob, err := EncodeBlob(img, 45)
	if err != nil {
		t.Fatalf("EncodeBlob: %v", err)
	}

	decoded, err := DecodeBlob(blob)
	if err != nil {
		t.Fatalf("DecodeBlob: %v", err)
	}

	b := decoded.Bounds()
	if b.Dx() != 300 || b.Dy() != 180 {
		t.Fatalf("expected 300x180 after round trip, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestDecodeBlobRejectsInvalidBase64(t *testing.T) {
	_, err := DecodeBlob("!!! not base64 !!!")
	if !errors.Is(err, domain.ErrCodec) {
		t.Fatalf("expected ErrCodec, got %v", err)
	}
}

func TestDecodeBlobRejectsNonJPEGPayload(t *testing.T) {
	blob := base64.StdEncoding.EncodeToString([]byte("valid base64, not a jpeg"))
	_, err := DecodeBlob(blob)
	if !errors.Is(err, domain.ErrCodec) {
		t.Fatalf("expected ErrCodec, got %v", err)
	}
}

func TestPlaceholderDimensions(t *testing.T) {
	img := Placeholder(300, 200)
	b := img.Bounds()
	if b.Dx() != 300 || b.Dy() != 200 {
		t.Fatalf("expected 300x200 placeholder, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestPlaceholderEncodes(t *testing.T) {
	blob, err := EncodeBlob(Placeholder(300, 200), 45)
	if err != nil {
		t.Fatalf("EncodeBlob: %v", err)
	}
	if blob == "" {
		t.Fatal("expected non-empty placeholder blob")
	}
	if _, err := DecodeBlob(blob); err != nil {
		t.Fatalf("placeholder blob should decode: %v", err)
	}
}
