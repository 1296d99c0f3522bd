package rom

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/0xDEADCADE/PokemonArcade/internal/platform/errors"
)

func validROM(t *testing.T) []byte {
	t.Helper()
	logo, err := hex.DecodeString(bootLogoHex)
	if err != nil {
		t.Fatalf("decode logo constant: %v", err)
	}
	content := make([]byte, 0x8000)
	copy(content[logoStart:], logo)
	return content
}

func newTestLibrary(t *testing.T, stock map[string]string) *Library {
	t.Helper()
	dir := t.TempDir()
	library, err := NewLibrary(stock, filepath.Join(dir, "CustomRoms"), filepath.Join(dir, "SinglePlayerSaves"))
	if err != nil {
		t.Fatalf("new library: %v", err)
	}
	return library
}

func TestValidateHeader(t *testing.T) {
	if err := ValidateHeader(validROM(t)); err != nil {
		t.Fatalf("expected valid header, got %v", err)
	}

	tooSmall := make([]byte, 0x100)
	if err := ValidateHeader(tooSmall); !errors.Is(err, apperrors.New(apperrors.CodeROMInvalidHeader, "")) {
		t.Fatalf("expected ROM_INVALID_HEADER for short rom, got %v", err)
	}

	tampered := validROM(t)
	tampered[logoStart] ^= 0xFF
	if err := ValidateHeader(tampered); !errors.Is(err, apperrors.New(apperrors.CodeROMInvalidHeader, "")) {
		t.Fatalf("expected ROM_INVALID_HEADER for tampered logo, got %v", err)
	}
}

func TestResolveStock(t *testing.T) {
	library := newTestLibrary(t, map[string]string{"Red": "/roms/pokemonred.gb"})

	path, err := library.ResolveStock(" red ")
	if err != nil {
		t.Fatalf("resolve stock: %v", err)
	}
	if path != "/roms/pokemonred.gb" {
		t.Fatalf("unexpected path %q", path)
	}

	_, err = library.ResolveStock("green")
	if apperrors.CodeOf(err) != apperrors.CodeROMUnsupportedKind {
		t.Fatalf("expected ROM_UNSUPPORTED_KIND, got %v", err)
	}
}

func TestIngestCustomStoresByContentID(t *testing.T) {
	library := newTestLibrary(t, nil)
	content := validROM(t)

	contentID, path, err := library.IngestCustom(content)
	if err != nil {
		t.Fatalf("ingest custom: %v", err)
	}
	if len(contentID) != 5 {
		t.Fatalf("expected 5-character content id, got %q", contentID)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected stored rom at %s: %v", path, err)
	}

	// Re-uploading the same bytes maps to the same id.
	secondID, secondPath, err := library.IngestCustom(content)
	if err != nil {
		t.Fatalf("re-ingest custom: %v", err)
	}
	if secondID != contentID || secondPath != path {
		t.Fatalf("expected stable id, got %q at %q", secondID, secondPath)
	}
}

func TestIngestCustomRejectsInvalidHeader(t *testing.T) {
	library := newTestLibrary(t, nil)
	_, _, err := library.IngestCustom(make([]byte, 0x8000))
	if apperrors.CodeOf(err) != apperrors.CodeROMInvalidHeader {
		t.Fatalf("expected ROM_INVALID_HEADER, got %v", err)
	}
}

func TestResolveCustom(t *testing.T) {
	library := newTestLibrary(t, nil)
	contentID, _, err := library.IngestCustom(validROM(t))
	if err != nil {
		t.Fatalf("ingest custom: %v", err)
	}

	path, err := library.ResolveCustom(contentID)
	if err != nil {
		t.Fatalf("resolve custom: %v", err)
	}
	if filepath.Base(path) != contentID+".gb" {
		t.Fatalf("unexpected custom path %q", path)
	}

	tests := []string{"", "abc", "zzzzz!", "00000"}
	for _, raw := range tests {
		if _, err := library.ResolveCustom(raw); apperrors.CodeOf(err) != apperrors.CodeROMUnknownID {
			t.Fatalf("expected ROM_UNKNOWN_ID for %q, got %v", raw, err)
		}
	}
}

func TestProvisionSaveLinksROM(t *testing.T) {
	library := newTestLibrary(t, nil)
	romPath := filepath.Join(t.TempDir(), "red.gb")
	if err := os.WriteFile(romPath, validROM(t), 0o644); err != nil {
		t.Fatalf("write rom: %v", err)
	}

	savePath, err := library.ProvisionSave(romPath, "red", "chan-1")
	if err != nil {
		t.Fatalf("provision save: %v", err)
	}
	if filepath.Base(savePath) != "red-chan-1.gb" {
		t.Fatalf("unexpected save path %q", savePath)
	}
	target, err := os.Readlink(savePath)
	if err != nil {
		t.Fatalf("readlink save: %v", err)
	}
	if target != romPath {
		abs, _ := filepath.Abs(romPath)
		if target != abs {
			t.Fatalf("expected link to %q, got %q", romPath, target)
		}
	}

	// Provisioning again replaces the link instead of failing.
	if _, err := library.ProvisionSave(romPath, "red", "chan-1"); err != nil {
		t.Fatalf("re-provision save: %v", err)
	}
}
