package photo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"taskBoard/internal/logger"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const DefaultMaxSize = 5 << 20

var (
	ErrNotImage    = errors.New("uploaded file is not an image")
	ErrTooLarge    = errors.New("uploaded file is too large")
	ErrInvalidName = errors.New("invalid photo name")
)

// Store keeps task photos as flat files named by uuid inside one directory.
type Store struct {
	fs      afero.Fs
	dir     string
	maxSize int64
}

func NewStore(fs afero.Fs, dir string, maxSize int64) (*Store, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("создание каталога фото: %w", err)
	}
	return &Store{fs: fs, dir: dir, maxSize: maxSize}, nil
}

// Save sniffs the content type, rejects anything but images and writes the
// file under a fresh name which is returned.
func (s *Store) Save(ctx context.Context, filename string, content io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(content, s.maxSize+1))
	if err != nil {
		return "", fmt.Errorf("чтение фото: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return "", ErrTooLarge
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		logger.Info("Photo: Отклонён файл", zap.String("filename", filename), zap.String("content_type", contentType))
		return "", ErrNotImage
	}

	name := uuid.NewString() + extension(filename, contentType)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := afero.WriteReader(s.fs, filepath.Join(s.dir, name), bytes.NewReader(data)); err != nil {
		logger.Error("Photo: Не удалось сохранить файл", err, zap.String("name", name))
		return "", fmt.Errorf("запись фото: %w", err)
	}

	logger.Debug("Photo: Файл сохранён", zap.String("name", name), zap.Int("bytes", len(data)))
	return name, nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	if !validName(name) {
		return ErrInvalidName
	}
	if err := s.fs.Remove(filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("удаление фото: %w", err)
	}
	return nil
}

// Handler serves stored photos read-only. Mount it with the URL prefix stripped.
func (s *Store) Handler() http.Handler {
	files := http.FileServer(afero.NewHttpFs(s.fs).Dir(s.dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !validName(path.Base(r.URL.Path)) {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}

func validName(name string) bool {
	if name == "" || name == "." || name == "/" || strings.ContainsAny(name, `/\`) {
		return false
	}
	id := strings.TrimSuffix(name, path.Ext(name))
	_, err := uuid.Parse(id)
	return err == nil
}

func extension(filename, contentType string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != "" && mime.TypeByExtension(ext) == contentType {
		return ext
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ext
}
