package repository

import (
	"fmt"
	"strings"
)

// Key layout inside the attachment bucket:
//
//	{objectType}/{objectId}/{fileName}                     source file
//	{objectType}/{objectId}/{w}x{h}x{align}/{fileName}     derived thumbnail
//
// All functions are pure and total; they never validate their inputs, so an
// empty file name still yields a well-formed (if semantically useless) key.

// BlobPath returns the listing prefix for one object's files.
func BlobPath(objectType, objectID string) string {
	return fmt.Sprintf("%s/%s/", objectType, objectID)
}

// FileKey returns the storage key for a source file.
func FileKey(objectType, objectID, fileName string) string {
	return BlobPath(objectType, objectID) + fileName
}

// ThumbnailKey returns the deterministic cache key for a derived thumbnail.
// Identical parameters always address the same cache entry.
func ThumbnailKey(objectType, objectID string, width, height, align int, fileName string) string {
	return fmt.Sprintf("%s/%s/%dx%dx%d/%s", objectType, objectID, width, height, align, fileName)
}

// NameFromKey returns the leaf file name of a storage key.
func NameFromKey(key string) string {
	if idx := strings.LastIndex(key, "/"); idx >= 0 {
		return key[idx+1:]
	}
	return key
}
