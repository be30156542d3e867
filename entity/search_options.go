package entity

import (
	"path"
	"strings"
)

// Sentinel extension groups accepted in FileSearchOptions.ExtensionsFilter.
const (
	ExtensionGroupImage = "image"
	ExtensionGroupVideo = "video"
)

var imageExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp", ".tif", ".tiff", ".heic", ".heif",
}

var videoExtensions = []string{
	".mp4", ".avi", ".mkv", ".mov", ".wmv", ".webm", ".m4v",
}

// ImageExtensions returns the canonical image extension set.
func ImageExtensions() []string {
	out := make([]string, len(imageExtensions))
	copy(out, imageExtensions)
	return out
}

// VideoExtensions returns the canonical video extension set.
func VideoExtensions() []string {
	out := make([]string, len(videoExtensions))
	copy(out, videoExtensions)
	return out
}

func isImageExtension(ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range imageExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// FileSearchOptions is a read-only query descriptor for ListFiles. It is
// constructed per call and never stored.
type FileSearchOptions struct {
	// AllFiles bypasses the extension filter entirely.
	AllFiles bool
	// ExtensionsFilter holds extensions (".png") or the sentinel groups
	// "image"/"video" which expand to the canonical extension sets.
	ExtensionsFilter []string
	// NegateExtensionsFilter inverts the extension match.
	NegateExtensionsFilter bool
	// MetadataFilter holds exact-match key/value constraints against blob
	// user metadata. Keys are matched case-insensitively.
	MetadataFilter map[string]string
}

// Matches reports whether a file with the given name and user metadata
// satisfies the options.
func (o FileSearchOptions) Matches(name string, metadata map[string]string) bool {
	if !o.AllFiles && len(o.ExtensionsFilter) > 0 {
		ext := strings.ToLower(path.Ext(name))
		_, inSet := o.expandedExtensions()[ext]
		if inSet == o.NegateExtensionsFilter {
			return false
		}
	}
	for key, want := range o.MetadataFilter {
		if metadataValue(metadata, key) != want {
			return false
		}
	}
	return true
}

func (o FileSearchOptions) expandedExtensions() map[string]struct{} {
	set := make(map[string]struct{}, len(o.ExtensionsFilter))
	for _, ext := range o.ExtensionsFilter {
		switch strings.ToLower(ext) {
		case ExtensionGroupImage:
			for _, e := range imageExtensions {
				set[e] = struct{}{}
			}
		case ExtensionGroupVideo:
			for _, e := range videoExtensions {
				set[e] = struct{}{}
			}
		default:
			set[strings.ToLower(ext)] = struct{}{}
		}
	}
	return set
}

func metadataValue(metadata map[string]string, key string) string {
	for k, v := range metadata {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}
