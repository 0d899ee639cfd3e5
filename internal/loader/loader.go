// Package loader handles ROM file loading operations.
package loader

import (
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrochip8/internal/memory"
)

// Loader handles loading ROM files from disk.
type Loader struct{}

// New creates a new ROM loader.
func New() *Loader {
	return &Loader{}
}

// Load reads a ROM file and returns a memory image with the program placed
// at the program start address. It returns the program size in bytes.
// Programs that do not fit into memory are rejected before any execution.
func (l *Loader) Load(path string) (*memory.Memory, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	program, err := io.ReadAll(file)
	if err != nil {
		return nil, 0, fmt.Errorf("reading file %s: %w", path, err)
	}

	mem := memory.New()
	if err := mem.Load(program); err != nil {
		return nil, 0, fmt.Errorf("loading program %s: %w", path, err)
	}
	return mem, len(program), nil
}
