package filestorage

import (
	"mime/multipart"
)

// MaxImageSize is the upload limit for profile photos
const MaxImageSize = 5 << 20

// AllowedImageTypes lists the accepted photo MIME types and their stored extension
var AllowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// SaveImage validates an uploaded image and stores it under subPath, returning its public URL
	SaveImage(fileHeader *multipart.FileHeader, subPath string) (string, error)

	// DeleteFile removes a file previously returned by SaveImage. Missing files are not an error.
	DeleteFile(fileURL string) error
}
