package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseThumbnailSizes(t *testing.T) {
	sizes, err := ParseThumbnailSizes("64x64x1,256x256x0")
	require.NoError(t, err)
	require.Equal(t, []ThumbnailSize{
		{Width: 64, Height: 64, Align: 1},
		{Width: 256, Height: 256, Align: 0},
	}, sizes)
}

func TestParseThumbnailSizes_Malformed(t *testing.T) {
	_, err := ParseThumbnailSizes("64x64")
	require.Error(t, err)

	_, err = ParseThumbnailSizes("64x64xabc")
	require.Error(t, err)
}

func TestParseThumbnailSizes_Empty(t *testing.T) {
	sizes, err := ParseThumbnailSizes("")
	require.NoError(t, err)
	require.Empty(t, sizes)
}

func TestThumbnailSize_String(t *testing.T) {
	require.Equal(t, "64x64x1", ThumbnailSize{Width: 64, Height: 64, Align: 1}.String())
}
