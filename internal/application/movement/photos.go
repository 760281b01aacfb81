package movement

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"

	"github.com/skunksss/FP-Registrapp/internal/application/dto"
	"github.com/skunksss/FP-Registrapp/internal/domain"
	"github.com/skunksss/FP-Registrapp/internal/domain/entity"
)

// sniffLen bytes leídos para detectar el tipo real del archivo.
const sniffLen = 3072

var allowedExt = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// PhotoFile foto abierta para descarga o vista en línea. El llamador cierra Content.
type PhotoFile struct {
	Photo       *entity.Photo
	Content     io.ReadCloser
	ContentType string
	Filename    string
}

// UploadPhoto adjunta una foto al movimiento. Valida categoría, extensión, tamaño declarado
// y contenido (PNG o JPEG); el tamaño también se controla al copiar.
func (uc *UseCase) UploadPhoto(ctx context.Context, kind entity.MovementKind, userID int64, role string, movementID int64, category, filename string, size int64, r io.Reader) (*dto.PhotoResponse, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if !entity.ValidPhotoCategory(category) {
		return nil, domain.NewValidationError("tipo", "debe ser uno de: carnet patente carga")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExt[ext]; !ok {
		return nil, fmt.Errorf("%w: extensión %q (se aceptan png, jpg, jpeg)", domain.ErrUnsupportedMedia, ext)
	}
	if size > uc.maxPhotoBytes {
		return nil, domain.ErrFileTooLarge
	}
	m, err := uc.authorized(ctx, kind, userID, role, movementID)
	if err != nil {
		return nil, err
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("leer foto: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return nil, domain.NewValidationError("foto", "archivo vacío")
	}
	if mt := mimetype.Detect(head); !mt.Is("image/png") && !mt.Is("image/jpeg") {
		return nil, fmt.Errorf("%w: contenido %s", domain.ErrUnsupportedMedia, mt.String())
	}

	body := &limitedReader{r: io.MultiReader(bytes.NewReader(head), r), remaining: uc.maxPhotoBytes}
	key, err := uc.store.Save(ctx, kind, m.ID, category, ext, body)
	if err != nil {
		if errors.Is(err, domain.ErrFileTooLarge) {
			return nil, domain.ErrFileTooLarge
		}
		return nil, fmt.Errorf("guardar foto: %w", err)
	}
	photo := &entity.Photo{
		MovementID: m.ID,
		Kind:       kind,
		Category:   category,
		StorageKey: key,
		UploadedAt: uc.now(),
	}
	if err := uc.photos.Create(ctx, photo); err != nil {
		if delErr := uc.store.Delete(ctx, key); delErr != nil {
			log.Warn().Err(delErr).Str("archivo", key).Msg("no se pudo borrar la foto huérfana")
		}
		return nil, err
	}
	resp := toPhotoResponse(photo)
	return &resp, nil
}

// DeletePhoto elimina la fila y el archivo de una foto. Solo el dueño del movimiento o un admin.
func (uc *UseCase) DeletePhoto(ctx context.Context, kind entity.MovementKind, userID int64, role string, photoID int64) error {
	photo, err := uc.authorizedPhoto(ctx, kind, userID, role, photoID)
	if err != nil {
		return err
	}
	if err := uc.photos.Delete(ctx, kind, photo.ID); err != nil {
		return err
	}
	if err := uc.store.Delete(ctx, photo.StorageKey); err != nil {
		log.Warn().Err(err).Str("archivo", photo.StorageKey).Msg("no se pudo borrar el archivo de la foto")
	}
	return nil
}

// OpenPhoto abre el archivo de una foto. Solo el dueño del movimiento o un admin.
func (uc *UseCase) OpenPhoto(ctx context.Context, kind entity.MovementKind, userID int64, role string, photoID int64) (*PhotoFile, error) {
	photo, err := uc.authorizedPhoto(ctx, kind, userID, role, photoID)
	if err != nil {
		return nil, err
	}
	rc, err := uc.store.Open(ctx, photo.StorageKey)
	if err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(photo.StorageKey))
	contentType, ok := allowedExt[ext]
	if !ok {
		contentType = "application/octet-stream"
	}
	return &PhotoFile{
		Photo:       photo,
		Content:     rc,
		ContentType: contentType,
		Filename:    fmt.Sprintf("%s_%d_%s%s", kind, photo.MovementID, photo.Category, ext),
	}, nil
}

func (uc *UseCase) authorizedPhoto(ctx context.Context, kind entity.MovementKind, userID int64, role string, photoID int64) (*entity.Photo, error) {
	if !kind.Valid() {
		return nil, domain.ErrNotFound
	}
	photo, err := uc.photos.GetByID(ctx, kind, photoID)
	if err != nil {
		return nil, err
	}
	if photo == nil {
		return nil, domain.ErrNotFound
	}
	if _, err := uc.authorized(ctx, kind, userID, role, photo.MovementID); err != nil {
		return nil, err
	}
	return photo, nil
}

// limitedReader falla con domain.ErrFileTooLarge si se leen más de remaining bytes.
type limitedReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, domain.ErrFileTooLarge
	}
	return n, err
}
