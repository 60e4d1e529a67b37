package registry

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// ggufMagic is the 4-byte header every GGUF weights file starts with.
var ggufMagic = []byte("GGUF")

// minWeightsSize guards against truncated downloads; real weight files are
// orders of magnitude larger.
const minWeightsSize = 1024

// ValidateGGUF checks that path looks like a GGUF weights file: at least 1KB
// and starting with the GGUF magic. Callers treat a failure as a warning
// rather than a hard error; the native loader has the final say.
func ValidateGGUF(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Size() < minWeightsSize {
		return fmt.Errorf("file too small to be a GGUF model (%d bytes)", info.Size())
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	magic := make([]byte, len(ggufMagic))
	if _, err := io.ReadFull(f, magic); err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if !bytes.Equal(magic, ggufMagic) {
		return fmt.Errorf("missing GGUF magic (got %q)", magic)
	}
	return nil
}
