// Package object stores the uploaded PDFs and rendered previews under a
// per-user namespace. Keys look like <sha256(user)>/<random id>_<name>.
package object

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"resurate/internal/shared/util"
)

// ErrNotFound is returned when a storage key does not exist.
var ErrNotFound = errors.New("object not found")

// Object describes a stored file.
type Object struct {
	ID       string
	Name     string
	Path     string
	Size     int64
	MimeType string
	ModTime  time.Time
}

// ObjectStore saves, opens, lists and removes a user's files.
type ObjectStore interface {
	Save(ctx context.Context, userID string, fileName string, r io.Reader) (Object, error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
	List(ctx context.Context, userID string) ([]Object, error)
}

// UserDir is the directory (or key prefix) holding a user's objects.
func UserDir(userID string) string {
	return util.HashUserKey(userID)
}

// NewKey allocates a fresh storage key for fileName in the user's namespace.
func NewKey(userID, fileName string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("user id is required")
	}
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", fmt.Errorf("sanitize file name: %w", err)
	}
	return path.Join(UserDir(userID), util.RandomID()+"_"+name), nil
}

// FromKey builds an Object from a storage key.
func FromKey(storageKey string, size int64, mimeType string, modTime time.Time) Object {
	id, name := util.SplitStoredName(path.Base(storageKey))
	if mimeType == "" {
		mimeType = MimeType(name, nil)
	}
	return Object{
		ID:       id,
		Name:     name,
		Path:     storageKey,
		Size:     size,
		MimeType: mimeType,
		ModTime:  modTime,
	}
}

// Sniff reads up to 512 bytes from r for content detection and returns them
// with a reader that replays them before the rest of r.
func Sniff(r io.Reader) ([]byte, io.Reader, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, nil, fmt.Errorf("read head: %w", err)
	}
	head = head[:n]
	return head, io.MultiReader(bytes.NewReader(head), r), nil
}

// MimeType picks a content type from the file name, falling back to
// sniffing head. Résumés and previews are always reported as PDF and PNG.
func MimeType(name string, head []byte) string {
	ext := strings.ToLower(path.Ext(name))
	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	if len(head) == 0 {
		return "application/octet-stream"
	}
	return http.DetectContentType(head)
}
