package artifact

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	dErrors "certledger/pkg/domain-errors"
)

// FileStore keeps artifacts on the local file system, one file per digest.
type FileStore struct {
	baseDir string
	log     *slog.Logger
}

// NewFileStore creates the base directory if needed.
func NewFileStore(baseDir string, log *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return &FileStore{baseDir: baseDir, log: log}, nil
}

func (s *FileStore) Put(_ context.Context, data []byte) (Ref, error) {
	hash := sha256.Sum256(data)
	ref := Ref(hex.EncodeToString(hash[:]))

	path := filepath.Join(s.baseDir, string(ref))
	if _, err := os.Stat(path); err == nil {
		// Same bytes, same file. Nothing to write.
		return ref, nil
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}

	s.log.Debug("stored artifact",
		slog.String("ref", string(ref)),
		slog.Int("size", len(data)))

	return ref, nil
}

func (s *FileStore) Get(_ context.Context, ref Ref) ([]byte, error) {
	if err := validateRef(ref); err != nil {
		return nil, err
	}

	path := filepath.Join(s.baseDir, string(ref))
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, dErrors.New(dErrors.CodeNotFound, "artifact not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	return data, nil
}

// validateRef rejects anything that is not a hex digest before it reaches
// the file system.
func validateRef(ref Ref) error {
	if len(ref) != sha256.Size*2 {
		return dErrors.New(dErrors.CodeInvalidInput, "malformed artifact ref")
	}
	if _, err := hex.DecodeString(string(ref)); err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "malformed artifact ref")
	}
	return nil
}
