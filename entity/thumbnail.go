package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// ThumbnailSize is one (width, height, align) derivation target.
type ThumbnailSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	Align  int `json:"align"`
}

func (s ThumbnailSize) String() string {
	return fmt.Sprintf("%dx%dx%d", s.Width, s.Height, s.Align)
}

// ParseThumbnailSizes parses a comma-separated list of WxHxA triples, e.g.
// "64x64x1,256x256x0". Malformed entries are reported, not skipped.
func ParseThumbnailSizes(raw string) ([]ThumbnailSize, error) {
	var sizes []ThumbnailSize
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		dims := strings.Split(part, "x")
		if len(dims) != 3 {
			return nil, fmt.Errorf("invalid thumbnail size %q: expected WxHxA", part)
		}
		var vals [3]int
		for i, d := range dims {
			v, err := strconv.Atoi(d)
			if err != nil {
				return nil, fmt.Errorf("invalid thumbnail size %q: %w", part, err)
			}
			vals[i] = v
		}
		sizes = append(sizes, ThumbnailSize{Width: vals[0], Height: vals[1], Align: vals[2]})
	}
	return sizes, nil
}
