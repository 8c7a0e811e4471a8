package utils

import (
	"errors"        // Error values
	"fmt"           // Error wrapping
	"io"            // Reader for sniffing
	"path/filepath" // Extension handling
	"strings"       // Case folding

	"github.com/gabriel-vasile/mimetype" // Content sniffing
	"github.com/google/uuid"             // Collision-free names
)

// ErrNotAnImage is returned when an upload does not sniff as an accepted image type
var ErrNotAnImage = errors.New("uploaded file is not a supported image")

// imageExtensions maps accepted MIME types to the extension we store them under
var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// StoredImageName sniffs r and returns a fresh filename for it. The client's
// filename is never used on disk.
func StoredImageName(r io.Reader) (string, error) {
	mime, err := mimetype.DetectReader(r)
	if err != nil {
		return "", fmt.Errorf("detect content type: %w", err)
	}
	for accepted, ext := range imageExtensions {
		if mime.Is(accepted) {
			return uuid.NewString() + ext, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotAnImage, mime.String())
}

// UploadPath joins a stored name onto the upload directory, refusing anything that
// would escape it.
func UploadPath(dir, name string) (string, error) {
	clean := filepath.Base(name)
	if clean != name || clean == "." || clean == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid stored filename %q", name)
	}
	return filepath.Join(dir, clean), nil
}
