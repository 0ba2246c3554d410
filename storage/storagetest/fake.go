// Package storagetest provides a recording storage.ObjectStorage for tests.
package storagetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/princinho/shopitbackend/models"
	"github.com/princinho/shopitbackend/storage"
)

type Upload struct {
	Data        []byte
	ContentType string
	Folder      string
}

type Fake struct {
	mu      sync.Mutex
	Uploads []Upload
	Deletes []string

	UploadErr error
	DeleteErr error
}

var _ storage.ObjectStorage = (*Fake)(nil)

func (f *Fake) Upload(_ context.Context, data []byte, contentType, folder string) (*models.Avatar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UploadErr != nil {
		return nil, f.UploadErr
	}
	f.Uploads = append(f.Uploads, Upload{Data: data, ContentType: contentType, Folder: folder})
	id := fmt.Sprintf("%s/avatar-%d", folder, len(f.Uploads))
	return &models.Avatar{PublicID: id, URL: "https://cdn.test/" + id}, nil
}

func (f *Fake) Delete(_ context.Context, publicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Deletes = append(f.Deletes, publicID)
	return f.DeleteErr
}
