// Package media stores uploaded files on disk and hands out references to them.
package media

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
)

var (
	ErrDisallowedType = errors.New("file type not allowed")
	ErrInvalidName    = errors.New("invalid file name")
)

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".mp4":  true,
	".mov":  true,
	".avi":  true,
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// Allowed reports whether filename has an accepted extension.
func Allowed(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// SanitizeFilename drops any directory part and every character outside
// [A-Za-z0-9._-]. Whitespace becomes an underscore.
func SanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, `\`, "/")
	if i := strings.LastIndex(filename, "/"); i >= 0 {
		filename = filename[i+1:]
	}
	filename = strings.Join(strings.Fields(filename), "_")
	filename = unsafeChars.ReplaceAllString(filename, "")
	return strings.TrimLeft(filename, "._")
}

// DiskStore writes media files into a single directory.
type DiskStore struct {
	dir string
}

// NewDiskStore creates dir if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, pkgerrors.Wrap(err, "create upload dir")
	}
	return &DiskStore{dir: dir}, nil
}

// Dir is the directory files are served from.
func (d *DiskStore) Dir() string { return d.dir }

// Save writes r under a unique name derived from filename and returns the
// reference to store alongside posts, stories and profiles.
func (d *DiskStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	if !Allowed(filename) {
		return "", ErrDisallowedType
	}
	name := SanitizeFilename(filename)
	if name == "" || !Allowed(name) {
		return "", ErrInvalidName
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ref := uuid.NewString() + "_" + name
	f, err := os.OpenFile(d.Path(ref), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", pkgerrors.Wrap(err, "create media file")
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", pkgerrors.Wrap(err, "write media file")
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", pkgerrors.Wrap(err, "close media file")
	}
	return ref, nil
}

// Remove deletes a stored file. Unknown references are ignored.
func (d *DiskStore) Remove(_ context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	err := os.Remove(d.Path(ref))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return pkgerrors.Wrap(err, "remove media file")
	}
	return nil
}

// Path resolves a reference to its file. Directory parts in ref are ignored.
func (d *DiskStore) Path(ref string) string {
	return filepath.Join(d.dir, filepath.Base(ref))
}
