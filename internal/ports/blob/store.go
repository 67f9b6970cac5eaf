package blob

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("blob not found")

// Store abstrae el almacenamiento de binarios (fotos de animales).
// Los metadatos viven en el Entity Store; acá solo van bytes.
type Store interface {
	// Put guarda el objeto bajo key y devuelve la URL pública resultante.
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)

	// Delete borra el objeto. Si no existe, devuelve ErrNotFound
	// (el caller decide si eso es fatal; para limpieza de imágenes no lo es).
	Delete(ctx context.Context, key string) error
}
