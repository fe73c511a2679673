package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnet/mentorbridge/internal/pkg/apperrors"
	"github.com/alnet/mentorbridge/internal/pkg/logger"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // The root directory where files will be stored
	baseURL  string // Public URL under which basePath is served
}

// NewLocalStorage creates a new LocalStorage instance rooted at basePath.
// Stored files are addressed as baseURL + "/" + relative path.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// DetectImageType sniffs the content of an upload and returns its extension.
// Files over MaxImageSize or of another type are rejected.
func DetectImageType(fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader.Size > MaxImageSize {
		return "", apperrors.ErrFileTooLarge
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return "", fmt.Errorf("failed to detect file type: %w", err)
	}
	for allowed, ext := range AllowedImageTypes {
		if mtype.Is(allowed) {
			return ext, nil
		}
	}
	return "", apperrors.ErrUnsupportedFileType.WithDetails(map[string]interface{}{"detected": mtype.String()})
}

// SaveImage validates and stores an uploaded image
func (ls *LocalStorage) SaveImage(fileHeader *multipart.FileHeader, subPath string) (string, error) {
	if fileHeader == nil {
		return "", apperrors.NewBadRequestError("no file uploaded")
	}

	ext, err := DetectImageType(fileHeader)
	if err != nil {
		return "", err
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	dir := filepath.Join(ls.basePath, filepath.FromSlash(subPath))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error().Err(err).Str("path", dir).Msg("Failed to create subdirectory")
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	// Stored names are generated, never taken from the client
	name := uuid.New().String() + ext
	dstPath := filepath.Join(dir, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, io.LimitReader(file, MaxImageSize+1)); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	rel := name
	if subPath != "" {
		rel = strings.Trim(filepath.ToSlash(subPath), "/") + "/" + name
	}
	url := ls.baseURL + "/" + rel

	logger.Info().Str("filename", fileHeader.Filename).Str("url", url).Msg("File saved successfully")
	return url, nil
}

// resolve maps a public URL back to a path inside basePath
func (ls *LocalStorage) resolve(fileURL string) (string, error) {
	rel := strings.TrimPrefix(fileURL, ls.baseURL)
	rel = strings.TrimLeft(rel, "/")
	if rel == "" {
		return "", fmt.Errorf("invalid file path: %s", fileURL)
	}

	full := filepath.Join(ls.basePath, filepath.FromSlash(rel))
	base, err := filepath.Abs(ls.basePath)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(full)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(abs, base+string(filepath.Separator)) {
		return "", fmt.Errorf("file path escapes storage root: %s", fileURL)
	}
	return abs, nil
}

// DeleteFile removes a stored file. Returns nil when the file does not exist.
func (ls *LocalStorage) DeleteFile(fileURL string) error {
	if fileURL == "" {
		return nil
	}

	physicalPath, err := ls.resolve(fileURL)
	if err != nil {
		return err
	}

	if err := os.Remove(physicalPath); err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}
