package utils

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// thumbnailTokenVersion prefixes every issued token. The token format is a
// compatibility surface: tokens must stay decodable across releases sharing
// the same version, so the payload shape must never change under "v1".
const thumbnailTokenVersion = "v1"

// ThumbnailToken addresses one derived thumbnail for the serving endpoint.
type ThumbnailToken struct {
	ObjectType string `json:"t"`
	ObjectID   string `json:"i"`
	FileName   string `json:"f"`
	Width      int    `json:"w"`
	Height     int    `json:"h"`
	Align      int    `json:"a"`
}

// EncodeThumbnailToken produces a stable, URL-safe token for the parameters.
func EncodeThumbnailToken(token ThumbnailToken) (string, error) {
	payload, err := json.Marshal(token)
	if err != nil {
		return "", fmt.Errorf("failed to encode thumbnail token: %w", err)
	}
	return thumbnailTokenVersion + "." + base64.RawURLEncoding.EncodeToString(payload), nil
}

// DecodeThumbnailToken parses a token produced by EncodeThumbnailToken.
// Tokens of an unknown encoding version are rejected.
func DecodeThumbnailToken(raw string) (*ThumbnailToken, error) {
	version, encoded, found := strings.Cut(raw, ".")
	if !found {
		return nil, fmt.Errorf("malformed thumbnail token")
	}
	if version != thumbnailTokenVersion {
		return nil, fmt.Errorf("unsupported thumbnail token version %q", version)
	}

	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("malformed thumbnail token: %w", err)
	}

	var token ThumbnailToken
	if err := json.Unmarshal(payload, &token); err != nil {
		return nil, fmt.Errorf("malformed thumbnail token: %w", err)
	}
	return &token, nil
}
