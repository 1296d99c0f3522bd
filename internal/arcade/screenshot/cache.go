// Package screenshot publishes rendered frames with content-addressed caching.
//
// Identical frames are common: menus, dialogue boxes, and idle screens render
// byte-for-byte the same. Publishing is deduplicated by SHA-512 content hash
// through two layers: a bounded in-memory LRU for the hot set and a durable
// store that survives restarts.
package screenshot

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/0xDEADCADE/PokemonArcade/internal/arcade/storage"
	apperrors "github.com/0xDEADCADE/PokemonArcade/internal/platform/errors"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultLRUSize bounds the in-memory cache front.
const DefaultLRUSize = 1024

// Uploader publishes frame bytes externally and returns a reference.
type Uploader interface {
	PublishImage(ctx context.Context, name string, png []byte) (string, error)
}

// Publisher deduplicates and publishes rendered frames.
type Publisher struct {
	store    storage.ScreenshotStore
	uploader Uploader
	recent   *lru.Cache[string, string]
	scale    int
	clock    func() time.Time
}

// Options configures a Publisher.
type Options struct {
	// LRUSize bounds the in-memory front; DefaultLRUSize when zero.
	LRUSize int
	// Scale is the integer upscale factor applied before publishing.
	Scale int
}

// NewPublisher creates a publisher over a durable store and an uploader.
func NewPublisher(store storage.ScreenshotStore, uploader Uploader, opts Options) (*Publisher, error) {
	if store == nil {
		return nil, fmt.Errorf("screenshot store is required")
	}
	if uploader == nil {
		return nil, fmt.Errorf("uploader is required")
	}
	size := opts.LRUSize
	if size <= 0 {
		size = DefaultLRUSize
	}
	recent, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &Publisher{
		store:    store,
		uploader: uploader,
		recent:   recent,
		scale:    opts.Scale,
		clock:    time.Now,
	}, nil
}

// Publish returns a published reference for the frame, uploading at most
// once per distinct frame. An upload failure returns an empty reference and
// a CodeScreenshotPublishFailed error; callers degrade to a caption-only
// update.
func (p *Publisher) Publish(ctx context.Context, frame []byte) (string, error) {
	if len(frame) == 0 {
		return "", nil
	}

	scaled, err := Scale(frame, p.scale)
	if err != nil {
		log.Printf("scale screenshot: %v", err)
		scaled = frame
	}

	sum := sha512.Sum512(scaled)
	hash := hex.EncodeToString(sum[:])

	if url, ok := p.recent.Get(hash); ok {
		return url, nil
	}
	url, err := p.store.GetScreenshotRef(ctx, hash)
	if err == nil {
		p.recent.Add(hash, url)
		return url, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		log.Printf("screenshot cache lookup hash=%s: %v", hash[:16], err)
	}

	url, err = p.uploader.PublishImage(ctx, hash[:16]+".png", scaled)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeScreenshotPublishFailed, fmt.Sprintf("publish screenshot %s", hash[:16]), err)
	}

	if err := p.store.PutScreenshotRef(ctx, storage.ScreenshotRef{
		Hash:      hash,
		URL:       url,
		CreatedAt: p.clock().UTC(),
	}); err != nil {
		// The upload succeeded; a failed cache write only costs a future re-upload.
		log.Printf("record screenshot ref hash=%s: %v", hash[:16], err)
	}
	p.recent.Add(hash, url)
	return url, nil
}
