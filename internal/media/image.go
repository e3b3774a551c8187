package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const MaxImageSize = 10 * 1024 * 1024 // 10 MB

var (
	ErrInvalidDataURI = errors.New("invalid base64 image")
	ErrNotImage       = errors.New("file is not an image")
	ErrEmptyFile      = errors.New("file is empty")
	ErrFileTooLarge   = errors.New("file exceeds maximum allowed size")
	ErrUnsafeExt      = errors.New("unsafe file extension")
)

var (
	mimeSubtype = regexp.MustCompile(`^[a-z0-9][a-z0-9.+-]*$`)
	fileExt     = regexp.MustCompile(`^[a-z0-9]+$`)
)

// Image is decoded image content plus its file extension (without dot).
type Image struct {
	Data []byte
	Ext  string
}

// DecodeDataURI parses "data:image/<subtype>;base64,<payload>". The declared
// type only gates the input; the payload is sniffed like a multipart upload
// and the file extension comes from the detected type.
func DecodeDataURI(s string) (*Image, error) {
	head, payload, ok := strings.Cut(strings.TrimSpace(s), ";base64,")
	if !ok || payload == "" {
		return nil, ErrInvalidDataURI
	}
	mime := strings.ToLower(strings.TrimPrefix(head, "data:"))
	kind, subtype, ok := strings.Cut(mime, "/")
	if !ok || kind != "image" || !mimeSubtype.MatchString(subtype) {
		return nil, fmt.Errorf("%w: unsupported type %q", ErrInvalidDataURI, mime)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(payload)
	}
	if err != nil || len(data) == 0 {
		return nil, ErrInvalidDataURI
	}
	return SniffImage(data)
}

// ReadImage reads an uploaded multipart file and checks it is an image by
// sniffing its content.
func ReadImage(fh *multipart.FileHeader) (*Image, error) {
	if fh.Size == 0 {
		return nil, ErrEmptyFile
	}
	if fh.Size > MaxImageSize {
		return nil, ErrFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return SniffImage(data)
}

// SniffImage detects the MIME type of data and rejects anything that is
// not an image.
func SniffImage(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if len(data) > MaxImageSize {
		return nil, ErrFileTooLarge
	}
	mt := mimetype.Detect(data)
	ext := strings.TrimPrefix(mt.Extension(), ".")
	if !strings.HasPrefix(mt.String(), "image/") || !fileExt.MatchString(ext) {
		return nil, ErrNotImage
	}
	return &Image{Data: data, Ext: ext}, nil
}

// UploadPath builds a unique path for an uploaded file in dir.
func UploadPath(dir, originalName, ext string) string {
	return fmt.Sprintf("%s/%s_%s.%s", dir, uuid.New().String(), sanitizeName(originalName), ext)
}

// ThumbnailPath names a thumbnail after its visualize.
func ThumbnailPath(visualizeID int64, ext string) (string, error) {
	if !fileExt.MatchString(ext) {
		return "", fmt.Errorf("%w: %q", ErrUnsafeExt, ext)
	}
	return fmt.Sprintf("%s/%d.%s", DirThumbnails, visualizeID, ext), nil
}

// ProfilePath names a decoded profile image after its owner.
func ProfilePath(userID int64, ext string) (string, error) {
	if !fileExt.MatchString(ext) {
		return "", fmt.Errorf("%w: %q", ErrUnsafeExt, ext)
	}
	return fmt.Sprintf("%s/%d_%s.%s", DirProfile, userID, uuid.New().String(), ext), nil
}

func sanitizeName(name string) string {
	name = filepath.Base(name)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return '_'
	}, name)
	if len(name) > 40 {
		name = name[:40]
	}
	if name == "" || name == "_" || name == "." {
		return "file"
	}
	return name
}
