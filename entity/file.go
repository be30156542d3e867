package entity

import (
	"path"
	"strings"
	"time"
)

// File is one logical attachment belonging to an object such as a ticket.
// It is materialized from blob metadata on every lookup; the blob itself is
// the record, there is no separate persisted row.
type File struct {
	// ID is the full storage key, unique within a container. It is always
	// "{objectType}/{objectId}/{name}" and therefore ends with Name.
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Extension    string    `json:"extension"`
	ContentType  string    `json:"content_type"`
	Length       int64     `json:"length"`
	LastModified time.Time `json:"last_modified"`
	// URL is a time-limited presigned read URL for the blob.
	URL string `json:"url"`
}

// BlobInfo is the metadata a blob listing or stat yields, independent of the
// concrete store client.
type BlobInfo struct {
	Key          string
	ContentType  string
	Size         int64
	LastModified time.Time
	UserMetadata map[string]string
}

// FileFromBlob builds the File entity for one blob.
func FileFromBlob(info BlobInfo, url string) File {
	name := info.Key
	if idx := strings.LastIndex(info.Key, "/"); idx >= 0 {
		name = info.Key[idx+1:]
	}
	return File{
		ID:           info.Key,
		Name:         name,
		Extension:    strings.ToLower(path.Ext(name)),
		ContentType:  info.ContentType,
		Length:       info.Size,
		LastModified: info.LastModified,
		URL:          url,
	}
}

// IsImage reports whether the file should be treated as an image, which
// controls the thumbnail cascade on deletion. The content type is
// authoritative; the extension is a fallback for stores that report a generic
// type.
func (f File) IsImage() bool {
	if strings.HasPrefix(strings.ToLower(f.ContentType), "image/") {
		return true
	}
	return isImageExtension(f.Extension)
}
