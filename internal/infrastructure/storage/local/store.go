// Package local guarda las fotos de los movimientos en el sistema de archivos (UPLOAD_DIR).
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/skunksss/FP-Registrapp/internal/application/movement"
	"github.com/skunksss/FP-Registrapp/internal/domain"
	"github.com/skunksss/FP-Registrapp/internal/domain/entity"
)

var _ movement.PhotoStore = (*Store)(nil)

// Store implementa movement.PhotoStore sobre un directorio base.
type Store struct {
	baseDir string
}

// New crea el store con raíz en baseDir; el directorio se crea al guardar.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Save escribe r bajo <plural>/<movementID>/<categoria>_<uuid><ext> y devuelve esa clave relativa.
func (s *Store) Save(ctx context.Context, kind entity.MovementKind, movementID int64, category, ext string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := filepath.ToSlash(filepath.Join(
		kind.Plural(),
		fmt.Sprint(movementID),
		fmt.Sprintf("%s_%s%s", category, uuid.NewString(), strings.ToLower(ext)),
	))
	fullPath, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(fullPath)
		return "", fmt.Errorf("write body: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(fullPath)
		return "", fmt.Errorf("close file: %w", err)
	}
	return key, nil
}

// Open abre una foto guardada; domain.ErrFileNotFound si el archivo no está.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrFileNotFound
		}
		return nil, err
	}
	return f, nil
}

// Delete borra el archivo. Un archivo que ya no existe no es error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// resolve rechaza claves absolutas o que salen del directorio base.
func (s *Store) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("clave de almacenamiento inválida: %q", key)
	}
	return filepath.Join(s.baseDir, clean), nil
}
