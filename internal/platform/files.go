package platform

import (
	"context"
	"errors"
	"fmt"
	"io"

	"resurate/internal/shared/storage/object"
	"resurate/internal/shared/util"
)

// ObjectFiles adapts an object store to Files, enforcing that callers only
// touch keys in their own namespace.
type ObjectFiles struct {
	Store object.ObjectStore
}

func (f *ObjectFiles) Upload(ctx context.Context, userID, name string, r io.Reader) (FSItem, error) {
	if userID == "" {
		return FSItem{}, ErrForbidden
	}
	obj, err := f.Store.Save(ctx, userID, name, r)
	if err != nil {
		return FSItem{}, fmt.Errorf("upload %s: %w", name, err)
	}
	return itemFromObject(obj), nil
}

func (f *ObjectFiles) Read(ctx context.Context, userID, path string) (io.ReadCloser, error) {
	if !util.OwnsKey(userID, path) {
		return nil, ErrForbidden
	}
	rc, err := f.Store.Open(ctx, path)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rc, nil
}

func (f *ObjectFiles) Delete(ctx context.Context, userID, path string) error {
	if !util.OwnsKey(userID, path) {
		return ErrForbidden
	}
	if err := f.Store.Delete(ctx, path); err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

func (f *ObjectFiles) ReadDir(ctx context.Context, userID string) ([]FSItem, error) {
	if userID == "" {
		return nil, ErrForbidden
	}
	objs, err := f.Store.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	items := make([]FSItem, 0, len(objs))
	for _, obj := range objs {
		items = append(items, itemFromObject(obj))
	}
	return items, nil
}

func itemFromObject(obj object.Object) FSItem {
	return FSItem{
		ID:         obj.ID,
		Name:       obj.Name,
		Path:       obj.Path,
		Size:       obj.Size,
		MimeType:   obj.MimeType,
		ModifiedAt: obj.ModTime,
	}
}

var _ Files = (*ObjectFiles)(nil)
