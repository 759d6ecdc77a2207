// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package file

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
)

type IO struct {
	storage *storage.Client
	bucket  string
}

func NewIO(storage *storage.Client, bucket string) *IO {
	return &IO{
		storage: storage,
		bucket:  bucket,
	}
}

// WriteFile writes data to path in the bucket and returns its public URL.
func (io *IO) WriteFile(ctx context.Context, path string, contentType string, data []byte) (string, error) {
	wc := io.storage.Bucket(io.bucket).Object(path).NewWriter(ctx)
	wc.ContentType = contentType
	if _, err := wc.Write(data); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("file: writing file: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("file: closing writer: %w", err)
	}
	url := fmt.Sprintf("https://storage.googleapis.com/%s/%s", io.bucket, path)
	return url, nil
}

// DataURLImage is a decoded image data URL.
type DataURLImage struct {
	ContentType string
	Ext         string
	Data        []byte
}

// DecodeDataURL parses a data URL of the form data:image/<ext>;base64,<data>.
func DecodeDataURL(dataURL string) (*DataURLImage, error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return nil, fmt.Errorf("file: invalid data URL %q", truncate(dataURL))
	}
	ct, contents, ok := strings.Cut(rest, ";")
	if !ok {
		return nil, fmt.Errorf("file: invalid data URL %q", truncate(dataURL))
	}

	ext, ok := strings.CutPrefix(ct, "image/")
	if !ok {
		return nil, fmt.Errorf("file: only image data URLs supported, got %q", ct)
	}

	b64, ok := strings.CutPrefix(contents, "base64,")
	if !ok {
		return nil, fmt.Errorf("file: only base64 data URL supported, got %q", truncate(dataURL))
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("file: decoding base64 data URL: %w", err)
	}
	return &DataURLImage{
		ContentType: ct,
		Ext:         ext,
		Data:        data,
	}, nil
}

func truncate(s string) string {
	if len(s) > 40 {
		return s[:40] + "..."
	}
	return s
}
