package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/sahilchouksey/mentor-hub-api/config"
	"github.com/sahilchouksey/mentor-hub-api/services/digitalocean"
)

// MaxAudioUploadSize bounds a single audio upload.
const MaxAudioUploadSize = 50 << 20

// MediaStore persists uploaded files and returns their public URL.
type MediaStore interface {
	Put(ctx context.Context, key string, data io.Reader, contentType string) (string, error)
}

// LocalMediaStore writes uploads below dir; they are served under urlPrefix.
type LocalMediaStore struct {
	dir       string
	urlPrefix string
}

// NewLocalMediaStore creates a store rooted at dir.
func NewLocalMediaStore(dir, urlPrefix string) *LocalMediaStore {
	return &LocalMediaStore{dir: dir, urlPrefix: urlPrefix}
}

// Dir is the directory uploads are written to.
func (s *LocalMediaStore) Dir() string { return s.dir }

func (s *LocalMediaStore) Put(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dst := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	if _, err := io.Copy(f, data); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close upload: %w", err)
	}
	return path.Join(s.urlPrefix, key), nil
}

// NewMediaStore uses Spaces when DO_SPACES_* is configured and the local upload dir otherwise.
func NewMediaStore(env *config.EnviornmentVariable) MediaStore {
	if cfg, ok := digitalocean.ConfigFromEnv(env); ok {
		client, err := digitalocean.NewSpacesClient(cfg)
		if err == nil {
			log.Info("audio uploads go to Spaces", "bucket", cfg.Bucket)
			return client
		}
		log.Warn("spaces client unavailable, storing uploads locally", "err", err)
	}
	return NewLocalMediaStore(env.UPLOAD_DIR, "/uploads")
}

// UploadService stores audio files for the audio library.
type UploadService struct {
	store MediaStore
}

// NewUploadService creates a new upload service
func NewUploadService(store MediaStore) *UploadService {
	return &UploadService{store: store}
}

// UploadResult describes a stored upload.
type UploadResult struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// UploadAudio checks type and size and stores the file under audio/.
func (s *UploadService) UploadAudio(ctx context.Context, filename string, size int64, data io.Reader) (*UploadResult, error) {
	contentType := digitalocean.GetContentType(filename)
	if contentType == "" {
		return nil, NewValidationError("file", "unsupported audio format (mp3, wav, m4a, aac, ogg, webm)")
	}
	if size <= 0 {
		return nil, NewValidationError("file", "file is empty")
	}
	if size > MaxAudioUploadSize {
		return nil, NewValidationError("file", "file exceeds the 50MB limit")
	}

	key := digitalocean.GenerateKey("audio", filename)
	url, err := s.store.Put(ctx, key, data, contentType)
	if err != nil {
		return nil, err
	}
	return &UploadResult{URL: url, Key: key, ContentType: contentType, Size: size}, nil
}
