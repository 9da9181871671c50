package service

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestMediaServiceSaveAndList(t *testing.T) {
	dir := t.TempDir()
	svc := NewMediaService(dir, "/uploads/")
	svc.now = func() time.Time { return time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC) }

	file, err := svc.Save(bytes.NewReader(pngBytes(t, 4, 3)))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(file.Name, "20260402-"))
	assert.True(t, strings.HasSuffix(file.Name, ".png"))
	assert.Equal(t, "/uploads/"+file.Name, file.URL)
	assert.Equal(t, 4, file.Width)
	assert.Equal(t, 3, file.Height)

	files, err := svc.List()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, file, files[0])
}

func TestMediaServiceRejectsNonImage(t *testing.T) {
	svc := NewMediaService(t.TempDir(), "/uploads")

	_, err := svc.Save(strings.NewReader("<?php echo 1; ?>"))
	assert.True(t, errors.Is(err, ErrUnsupportedImage))

	files, err := svc.List()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestMediaServiceListMissingDir(t *testing.T) {
	svc := NewMediaService(t.TempDir()+"/missing", "/uploads")
	files, err := svc.List()
	require.NoError(t, err)
	assert.Empty(t, files)
}
