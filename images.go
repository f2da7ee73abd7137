package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fastask/fastask/internal/proto"
)

// maxImageBytes is the request-level cap most vision endpoints enforce.
const maxImageBytes = 5 * 1024 * 1024

var supportedImageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// readImage loads an attachment from disk and validates its type and size.
func readImage(path string) (proto.ImageContent, error) {
	ext := strings.ToLower(filepath.Ext(path))
	mime, ok := supportedImageTypes[ext]
	if !ok {
		return proto.ImageContent{}, newUserErrorf(
			"unsupported image type %q (supported: png, jpg, jpeg, gif, webp)",
			ext,
		)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return proto.ImageContent{}, fmt.Errorf("could not read image: %w", err)
	}
	if len(data) > maxImageBytes {
		return proto.ImageContent{}, newUserErrorf(
			"image %s is too large (%d bytes, max %d)",
			filepath.Base(path), len(data), maxImageBytes,
		)
	}
	return proto.ImageContent{
		Data:     data,
		MimeType: mime,
		Filename: filepath.Base(path),
	}, nil
}
