package screenshot

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/0xDEADCADE/PokemonArcade/internal/arcade/storage"
	apperrors "github.com/0xDEADCADE/PokemonArcade/internal/platform/errors"
)

type memoryStore struct {
	refs map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{refs: make(map[string]string)}
}

func (s *memoryStore) GetScreenshotRef(_ context.Context, hash string) (string, error) {
	url, ok := s.refs[hash]
	if !ok {
		return "", storage.ErrNotFound
	}
	return url, nil
}

func (s *memoryStore) PutScreenshotRef(_ context.Context, ref storage.ScreenshotRef) error {
	if _, ok := s.refs[ref.Hash]; !ok {
		s.refs[ref.Hash] = ref.URL
	}
	return nil
}

type countingUploader struct {
	calls int
	fail  bool
}

func (u *countingUploader) PublishImage(_ context.Context, name string, _ []byte) (string, error) {
	u.calls++
	if u.fail {
		return "", fmt.Errorf("chat platform unavailable")
	}
	return "https://cdn.example/" + name, nil
}

func encodeTestFrame(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test frame: %v", err)
	}
	return buf.Bytes()
}

func TestPublishIsIdempotentPerFrame(t *testing.T) {
	uploader := &countingUploader{}
	publisher, err := NewPublisher(newMemoryStore(), uploader, Options{})
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	frame := encodeTestFrame(t, 4, 4, color.White)

	first, err := publisher.Publish(context.Background(), frame)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	second, err := publisher.Publish(context.Background(), frame)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	if first == "" || first != second {
		t.Fatalf("expected identical non-empty references, got %q and %q", first, second)
	}
	if uploader.calls != 1 {
		t.Fatalf("expected exactly one external publish, got %d", uploader.calls)
	}
}

func TestPublishDistinctFramesUploadSeparately(t *testing.T) {
	uploader := &countingUploader{}
	publisher, err := NewPublisher(newMemoryStore(), uploader, Options{})
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}

	white, err := publisher.Publish(context.Background(), encodeTestFrame(t, 4, 4, color.White))
	if err != nil {
		t.Fatalf("publish white: %v", err)
	}
	black, err := publisher.Publish(context.Background(), encodeTestFrame(t, 4, 4, color.Black))
	if err != nil {
		t.Fatalf("publish black: %v", err)
	}

	if white == black {
		t.Fatalf("expected distinct references, both %q", white)
	}
	if uploader.calls != 2 {
		t.Fatalf("expected two external publishes, got %d", uploader.calls)
	}
}

func TestPublishHitsDurableStoreAfterLRUEviction(t *testing.T) {
	uploader := &countingUploader{}
	store := newMemoryStore()
	publisher, err := NewPublisher(store, uploader, Options{LRUSize: 1})
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	ctx := context.Background()

	white := encodeTestFrame(t, 4, 4, color.White)
	black := encodeTestFrame(t, 4, 4, color.Black)

	for _, frame := range [][]byte{white, black, white} { // black evicts white from the LRU front
		if _, err := publisher.Publish(ctx, frame); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}

	if uploader.calls != 2 {
		t.Fatalf("expected durable store to absorb the re-publish, got %d uploads", uploader.calls)
	}
}

func TestPublishFailureDegradesToEmptyReference(t *testing.T) {
	uploader := &countingUploader{fail: true}
	publisher, err := NewPublisher(newMemoryStore(), uploader, Options{})
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}

	ref, err := publisher.Publish(context.Background(), encodeTestFrame(t, 4, 4, color.White))
	if ref != "" {
		t.Fatalf("expected empty reference on publish failure, got %q", ref)
	}
	if code := apperrors.CodeOf(err); code != apperrors.CodeScreenshotPublishFailed {
		t.Fatalf("expected screenshot publish failure code, got %v (err %v)", code, err)
	}
}

func TestPublishEmptyFrame(t *testing.T) {
	uploader := &countingUploader{}
	publisher, err := NewPublisher(newMemoryStore(), uploader, Options{})
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	ref, err := publisher.Publish(context.Background(), nil)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if ref != "" {
		t.Fatalf("expected empty reference for empty frame, got %q", ref)
	}
	if uploader.calls != 0 {
		t.Fatalf("expected no upload for empty frame, got %d", uploader.calls)
	}
}

func TestScaleTriplesDimensions(t *testing.T) {
	frame := encodeTestFrame(t, 2, 3, color.White)

	scaled, err := Scale(frame, 3)
	if err != nil {
		t.Fatalf("scale: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(scaled))
	if err != nil {
		t.Fatalf("decode scaled frame: %v", err)
	}
	if img.Bounds().Dx() != 6 || img.Bounds().Dy() != 9 {
		t.Fatalf("expected 6x9 frame, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestScaleFactorOneIsPassthrough(t *testing.T) {
	frame := encodeTestFrame(t, 2, 2, color.White)
	scaled, err := Scale(frame, 1)
	if err != nil {
		t.Fatalf("scale: %v", err)
	}
	if !bytes.Equal(frame, scaled) {
		t.Fatal("expected passthrough for factor 1")
	}
}
