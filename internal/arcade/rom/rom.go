// Package rom manages the ROM library: stock titles, ingested custom ROMs,
// and per-channel save provisioning.
package rom

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	apperrors "github.com/0xDEADCADE/PokemonArcade/internal/platform/errors"
	"github.com/0xDEADCADE/PokemonArcade/internal/platform/id"
)

// The boot logo every licensed cartridge carries at 0x0104-0x0133. Uploads
// missing it are not Game Boy ROMs.
const bootLogoHex = "CEED6666CC0D000B03730083000C000D0008111F8889000EDCCC6EE6DDDDD999BBBB67636E0EECCCDDDC999FBBB9333E"

const (
	logoStart = 0x0104
	logoEnd   = 0x0134
)

var bootLogo = mustDecodeLogo()

func mustDecodeLogo() []byte {
	logo, err := hex.DecodeString(bootLogoHex)
	if err != nil {
		panic(fmt.Sprintf("decode boot logo constant: %v", err))
	}
	return logo
}

var customIDPattern = regexp.MustCompile(`^[0-9a-f]{5}$`)

// ValidateHeader checks that content carries the cartridge boot logo.
func ValidateHeader(content []byte) error {
	if len(content) < logoEnd {
		return apperrors.New(apperrors.CodeROMInvalidHeader, "rom is too small to carry a cartridge header")
	}
	if !bytes.Equal(content[logoStart:logoEnd], bootLogo) {
		return apperrors.New(apperrors.CodeROMInvalidHeader, "cartridge boot logo mismatch")
	}
	return nil
}

// Library resolves stock titles, stores custom ROMs, and provisions saves.
type Library struct {
	stock     map[string]string // title name → rom path
	customDir string
	saveDir   string
}

// NewLibrary creates a library over the configured directories, creating
// them when missing.
func NewLibrary(stock map[string]string, customDir, saveDir string) (*Library, error) {
	if strings.TrimSpace(customDir) == "" {
		return nil, fmt.Errorf("custom rom dir is required")
	}
	if strings.TrimSpace(saveDir) == "" {
		return nil, fmt.Errorf("save dir is required")
	}
	for _, dir := range []string{customDir, saveDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create rom dir %s: %w", dir, err)
		}
	}
	normalized := make(map[string]string, len(stock))
	for name, path := range stock {
		normalized[strings.ToLower(strings.TrimSpace(name))] = path
	}
	return &Library{stock: normalized, customDir: customDir, saveDir: saveDir}, nil
}

// StockNames lists the configured stock titles.
func (l *Library) StockNames() []string {
	names := make([]string, 0, len(l.stock))
	for name := range l.stock {
		names = append(names, name)
	}
	return names
}

// ResolveStock returns the ROM path for a stock title name.
func (l *Library) ResolveStock(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	path, ok := l.stock[name]
	if !ok {
		return "", apperrors.WithMetadata(apperrors.CodeROMUnsupportedKind,
			fmt.Sprintf("unknown game %q", name),
			map[string]string{"name": name})
	}
	return path, nil
}

// IngestCustom validates uploaded ROM bytes and stores them under their
// content id. Re-uploading the same file maps to the same id.
func (l *Library) IngestCustom(content []byte) (string, string, error) {
	if err := ValidateHeader(content); err != nil {
		return "", "", err
	}
	contentID := id.ContentCode(content)
	path := l.customPath(contentID)
	if _, err := os.Stat(path); err == nil {
		return contentID, path, nil
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", "", fmt.Errorf("store custom rom %s: %w", contentID, err)
	}
	return contentID, path, nil
}

// ResolveCustom returns the stored ROM path for a content id.
func (l *Library) ResolveCustom(contentID string) (string, error) {
	contentID = strings.ToLower(strings.TrimSpace(contentID))
	if !customIDPattern.MatchString(contentID) {
		return "", apperrors.New(apperrors.CodeROMUnknownID, "not a valid game id")
	}
	path := l.customPath(contentID)
	if _, err := os.Stat(path); err != nil {
		return "", apperrors.New(apperrors.CodeROMUnknownID, "no rom stored under that id")
	}
	return path, nil
}

// ProvisionSave links a ROM into the save dir under a per-channel name, so
// engine saves land next to the link instead of the shared ROM.
func (l *Library) ProvisionSave(romPath, name, channelID string) (string, error) {
	absROM, err := filepath.Abs(romPath)
	if err != nil {
		return "", fmt.Errorf("resolve rom path: %w", err)
	}
	savePath := filepath.Join(l.saveDir, fmt.Sprintf("%s-%s.gb", name, channelID))
	if err := os.Remove(savePath); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("replace save link %s: %w", savePath, err)
	}
	if err := os.Symlink(absROM, savePath); err != nil {
		return "", fmt.Errorf("link save %s: %w", savePath, err)
	}
	return savePath, nil
}

func (l *Library) customPath(contentID string) string {
	return filepath.Join(l.customDir, contentID+".gb")
}
