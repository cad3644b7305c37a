// Package documents handles the files users hand to the portal and the
// question sheets it hands back.
package documents

import (
	"fmt"
	"net/http"

	"github.com/yigit/majlis/internal/pkg/apperrors"
)

// Upload limits
const (
	MaxPDFBytes    int64 = 10 << 20
	MaxAvatarBytes int64 = 2 << 20
)

// Content types accepted by the upload checks
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
)

var imageExtensions = map[string]string{
	ContentTypeJPEG: ".jpg",
	ContentTypePNG:  ".png",
}

// SniffContentType detects the content type from the leading bytes
func SniffContentType(head []byte) string {
	return http.DetectContentType(head)
}

// ValidatePDF checks a PDF upload against the size limit and its magic bytes
func ValidatePDF(head []byte, size, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = MaxPDFBytes
	}
	if SniffContentType(head) != ContentTypePDF {
		return apperrors.NewCustomError(apperrors.ErrUnsupportedFileType, "only PDF files are supported").
			WithCode("invalidPdfType")
	}
	if size > maxBytes {
		return apperrors.NewCustomError(apperrors.ErrFileTooLarge,
			fmt.Sprintf("file exceeds the %d MB limit", maxBytes>>20)).WithCode("mcqErrorPdfSize")
	}
	return nil
}

// ValidateImage checks an avatar upload and returns the file extension to store it under
func ValidateImage(head []byte, size, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		maxBytes = MaxAvatarBytes
	}
	ext, ok := imageExtensions[SniffContentType(head)]
	if !ok {
		return "", apperrors.NewCustomError(apperrors.ErrUnsupportedFileType, "only JPEG or PNG images are supported").
			WithCode("invalidImageType")
	}
	if size > maxBytes {
		return "", apperrors.NewCustomError(apperrors.ErrFileTooLarge,
			fmt.Sprintf("file exceeds the %d MB limit", maxBytes>>20)).WithCode("fileTooLargeGeneric")
	}
	return ext, nil
}
