// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package file

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDataURL(t *testing.T) {
	t.Run("png", func(t *testing.T) {
		img, err := DecodeDataURL("data:image/png;base64,aGVsbG8=")
		require.NoError(t, err)
		assert.Equal(t, "image/png", img.ContentType)
		assert.Equal(t, "png", img.Ext)
		assert.Equal(t, []byte("hello"), img.Data)
	})

	tests := []struct {
		name string
		in   string
	}{
		{name: "not a data url", in: "https://example.com/a.png"},
		{name: "no params", in: "data:image/png"},
		{name: "not an image", in: "data:text/plain;base64,aGVsbG8="},
		{name: "not base64", in: "data:image/png;charset=utf-8,hello"},
		{name: "bad base64", in: "data:image/png;base64,!!!"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeDataURL(tc.in)
			assert.Error(t, err)
		})
	}
}
