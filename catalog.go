package folio

import (
	"context"
	"fmt"
	"slices"
)

// GalleryCatalog keeps the global image list and the per-user galleries in
// sync. Both indices are mutated inside a single DataStore update.
type GalleryCatalog struct {
	store   *DataStore
	isAdmin func(username string) bool
}

// NewGalleryCatalog creates a catalog. isAdmin decides who may delete images
// uploaded by someone else; nil means nobody.
func NewGalleryCatalog(store *DataStore, isAdmin func(username string) bool) *GalleryCatalog {
	if isAdmin == nil {
		isAdmin = func(string) bool { return false }
	}
	return &GalleryCatalog{store: store, isAdmin: isAdmin}
}

// AddImage appends rec to the global list and to its uploader's gallery.
func (c *GalleryCatalog) AddImage(ctx context.Context, rec ImageRecord) error {
	if rec.Filename == "" || rec.UploadedBy == "" {
		return fmt.Errorf("add image: %w: filename and uploader are required", ErrInvalidInput)
	}

	return c.store.Update(ctx, func(doc *Document) error {
		if doc.FindImage(rec.Filename) >= 0 {
			return fmt.Errorf("add image %s: %w: duplicate filename", rec.Filename, ErrInvalidInput)
		}
		doc.Images = append(doc.Images, rec)
		doc.Galleries[rec.UploadedBy] = append(doc.Galleries[rec.UploadedBy], rec)
		return nil
	})
}

// RemoveImage deletes filename from the catalog on behalf of requestingUser,
// who must be the uploader or the admin. Every gallery is scanned so a record
// that somehow landed in more than one gallery is removed everywhere.
func (c *GalleryCatalog) RemoveImage(ctx context.Context, filename, requestingUser string) (ImageRecord, error) {
	var removed ImageRecord

	err := c.store.Update(ctx, func(doc *Document) error {
		i := doc.FindImage(filename)
		if i < 0 {
			return fmt.Errorf("remove image %s: %w", filename, ErrNotFound)
		}

		rec := doc.Images[i]
		if rec.UploadedBy != requestingUser && !c.isAdmin(requestingUser) {
			return fmt.Errorf("remove image %s: %w", filename, ErrForbidden)
		}

		doc.Images = slices.Delete(doc.Images, i, i+1)
		for user, gallery := range doc.Galleries {
			doc.Galleries[user] = slices.DeleteFunc(gallery, func(r ImageRecord) bool {
				return r.Filename == filename
			})
		}

		removed = rec
		return nil
	})
	if err != nil {
		return ImageRecord{}, err
	}

	return removed, nil
}

// Get returns the record stored under filename.
func (c *GalleryCatalog) Get(ctx context.Context, filename string) (ImageRecord, error) {
	var rec ImageRecord

	err := c.store.View(ctx, func(doc *Document) error {
		i := doc.FindImage(filename)
		if i < 0 {
			return fmt.Errorf("get image %s: %w", filename, ErrNotFound)
		}
		rec = doc.Images[i]
		return nil
	})
	if err != nil {
		return ImageRecord{}, err
	}

	return rec, nil
}

// ListAll returns every record in upload order.
func (c *GalleryCatalog) ListAll(ctx context.Context) ([]ImageRecord, error) {
	var out []ImageRecord

	err := c.store.View(ctx, func(doc *Document) error {
		out = slices.Clone(doc.Images)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}

	if out == nil {
		out = []ImageRecord{}
	}
	return out, nil
}

// ListForUser returns username's gallery in upload order. Unknown users get
// an empty list.
func (c *GalleryCatalog) ListForUser(ctx context.Context, username string) ([]ImageRecord, error) {
	out := []ImageRecord{}

	err := c.store.View(ctx, func(doc *Document) error {
		out = append(out, doc.Galleries[username]...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list gallery %s: %w", username, err)
	}

	return out, nil
}
