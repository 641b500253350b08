// Package rom handles CHIP-8 ROM file loading operations.
package rom

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrogolib/log"
)

var (
	// ErrEmpty is returned for ROM files without content.
	ErrEmpty = errors.New("empty ROM file")
	// ErrTooLarge is returned for ROM files that do not fit into the program memory.
	ErrTooLarge = errors.New("ROM file too large")
)

// Loader handles loading ROM files from disk.
type Loader struct {
	logger *log.Logger
}

// New creates a new ROM loader.
func New(logger *log.Logger) *Loader {
	return &Loader{
		logger: logger,
	}
}

// Load reads the ROM file and returns its content. CHIP-8 ROM files are raw
// program images without header that get loaded at the program start address.
func (l *Loader) Load(path string) ([]byte, error) {
	if !IsROMFile(path) {
		l.logger.Warn("Unexpected file extension for a CHIP-8 ROM", log.String("file", path))
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	data, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}

	l.logger.Debug("ROM loaded",
		log.String("file", path),
		log.Int("size", len(data)))
	return data, nil
}

// Read reads a ROM image from the reader and validates its size.
func Read(reader io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(reader, chip8.MaxProgramSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading data: %w", err)
	}

	switch {
	case len(data) == 0:
		return nil, ErrEmpty
	case len(data) > chip8.MaxProgramSize:
		return nil, fmt.Errorf("%w: maximum size is %d bytes", ErrTooLarge, chip8.MaxProgramSize)
	}
	return data, nil
}

// IsROMFile returns whether the file name has a known CHIP-8 ROM extension.
func IsROMFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".ch8", ".c8", ".rom":
		return true
	default:
		return false
	}
}
