// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package image

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"image/png"

	"github.com/curioswitch/cookshelf/common/file"
)

// FileWriter stores bytes at a path and returns their public URL.
type FileWriter interface {
	WriteFile(ctx context.Context, path string, contentType string, data []byte) (string, error)
}

// Writer stores recipe images as JPEG.
type Writer struct {
	io FileWriter
}

func NewWriter(io FileWriter) *Writer {
	return &Writer{
		io: io,
	}
}

// WriteDataURL decodes an image data URL and writes it to pathNoExt + ".jpg",
// re-encoding PNG images.
func (w *Writer) WriteDataURL(ctx context.Context, pathNoExt string, dataURL string) (string, error) {
	img, err := file.DecodeDataURL(dataURL)
	if err != nil {
		return "", fmt.Errorf("image: %w", err)
	}

	var data []byte
	switch img.ContentType {
	case "image/png":
		decoded, err := png.Decode(bytes.NewReader(img.Data))
		if err != nil {
			return "", fmt.Errorf("image: decoding png image: %w", err)
		}
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, decoded, nil); err != nil {
			return "", fmt.Errorf("image: encoding png to jpeg: %w", err)
		}
		data = buf.Bytes()
	case "image/jpeg", "image/jpg":
		data = img.Data
	default:
		return "", fmt.Errorf("image: unsupported mime type %s", img.ContentType)
	}

	url, err := w.io.WriteFile(ctx, pathNoExt+".jpg", "image/jpeg", data)
	if err != nil {
		return "", fmt.Errorf("image: writing image to file io: %w", err)
	}
	return url, nil
}
