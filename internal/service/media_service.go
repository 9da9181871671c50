package service

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

var (
	// ErrUnsupportedImage means the upload is not a decodable image.
	ErrUnsupportedImage = errors.New("unsupported image")
)

// MediaFile is one stored upload.
type MediaFile struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// MediaService stores images referenced by image fields.
type MediaService struct {
	dir     string
	urlPath string
	now     func() time.Time
}

// NewMediaService constructs MediaService.
func NewMediaService(dir, urlPath string) *MediaService {
	return &MediaService{dir: dir, urlPath: strings.TrimRight(urlPath, "/"), now: time.Now}
}

// Save validates the image header and writes the file under a generated name.
func (s *MediaService) Save(src io.ReadSeeker) (MediaFile, error) {
	cfg, format, err := image.DecodeConfig(src)
	if err != nil {
		return MediaFile{}, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return MediaFile{}, fmt.Errorf("rewind upload: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return MediaFile{}, fmt.Errorf("create upload dir: %w", err)
	}

	name := fmt.Sprintf("%s-%s.%s", s.now().Format("20060102"), uuid.New().String(), extensionFor(format))
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return MediaFile{}, fmt.Errorf("create upload: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return MediaFile{}, fmt.Errorf("write upload: %w", err)
	}

	return MediaFile{Name: name, URL: s.url(name), Width: cfg.Width, Height: cfg.Height}, nil
}

// List returns stored uploads sorted by name, skipping hidden files.
func (s *MediaService) List() ([]MediaFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []MediaFile{}, nil
		}
		return nil, fmt.Errorf("list uploads: %w", err)
	}

	files := make([]MediaFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		file := MediaFile{Name: entry.Name(), URL: s.url(entry.Name())}
		if f, err := os.Open(filepath.Join(s.dir, entry.Name())); err == nil {
			if cfg, _, err := image.DecodeConfig(f); err == nil {
				file.Width, file.Height = cfg.Width, cfg.Height
			}
			f.Close()
		}
		files = append(files, file)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func (s *MediaService) url(name string) string {
	return path.Join(s.urlPath, name)
}

func extensionFor(format string) string {
	if format == "jpeg" {
		return "jpg"
	}
	return format
}
