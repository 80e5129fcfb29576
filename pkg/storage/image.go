package storage

import (
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrImageTooLarge is returned when a decoded image exceeds the configured limit.
	ErrImageTooLarge = errors.New("image too large")
	// ErrInvalidImage is returned for payloads that are not base64 images.
	ErrInvalidImage = errors.New("invalid image data")

	dataURLPattern = regexp.MustCompile(`^data:image/(\w+);base64,(.+)$`)
	base64Pattern  = regexp.MustCompile(`^[A-Za-z0-9+/]+=*$`)
)

var imageExtensions = map[string]string{
	"png":     ".png",
	"jpeg":    ".jpg",
	"jpg":     ".jpg",
	"gif":     ".gif",
	"webp":    ".webp",
	"svg":     ".svg",
	"svg+xml": ".svg",
}

// ImageStore keeps uploaded images in a subdirectory of a LocalStorage.
type ImageStore struct {
	storage *LocalStorage
	subDir  string
	maxSize int
}

// NewImageStore constructs an ImageStore writing to subDir.
func NewImageStore(storage *LocalStorage, subDir string, maxSize int) *ImageStore {
	return &ImageStore{storage: storage, subDir: subDir, maxSize: maxSize}
}

// IsBase64Image reports whether value looks like an inline image rather than a stored name.
func IsBase64Image(value string) bool {
	if value == "" {
		return false
	}
	if strings.HasPrefix(value, "data:image/") {
		return true
	}
	head := value
	if len(head) > 100 {
		head = head[:100]
	}
	return base64Pattern.MatchString(head)
}

// SaveBase64 decodes an inline image and stores it under a random name, which is returned.
func (s *ImageStore) SaveBase64(data string) (string, error) {
	payload, ext := data, ".png"
	if m := dataURLPattern.FindStringSubmatch(data); m != nil {
		known, ok := imageExtensions[strings.ToLower(m[1])]
		if !ok {
			return "", fmt.Errorf("%w: unsupported format %q", ErrInvalidImage, m[1])
		}
		payload, ext = m[2], known
	} else if i := strings.Index(data, "base64,"); i >= 0 {
		payload = data[i+len("base64,"):]
	}

	if s.maxSize > 0 && base64.StdEncoding.DecodedLen(len(payload)) > s.maxSize+2 {
		return "", ErrImageTooLarge
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if s.maxSize > 0 && len(raw) > s.maxSize {
		return "", ErrImageTooLarge
	}

	name := uuid.NewString() + ext
	if err := s.storage.Save(path.Join(s.subDir, name), raw); err != nil {
		return "", err
	}
	return name, nil
}

// Delete removes a stored image by the name SaveBase64 returned.
func (s *ImageStore) Delete(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil
	}
	return s.storage.Delete(path.Join(s.subDir, name))
}

// Exists reports whether the named image is stored.
func (s *ImageStore) Exists(name string) bool {
	return s.storage.Exists(path.Join(s.subDir, name))
}
