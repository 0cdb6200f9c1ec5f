// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package loader

import (
	"bytes"
	"context"
	"io"
	"path"

	"github.com/gviegas/modelview/internal/imgdec"
	"github.com/gviegas/modelview/rgbe"
	"github.com/gviegas/modelview/texture"
)

// DecodeEnvironment decodes an environment image.
// Radiance HDR images are identified by their
// signature and PNG, JPEG, WebP and BMP images by
// their content. TGA images, which have no signature,
// are identified by the extension of name.
func DecodeEnvironment(ctx context.Context, name string, r io.Reader) (*texture.Texture, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	base := path.Base(name)
	if rgbe.IsRGBE(b) {
		m, err := rgbe.Decode(bytes.NewReader(b))
		if err != nil {
			return nil, err
		}
		return texture.FromRGBE(base, m), nil
	}
	img, _, err := imgdec.Decode(b, name)
	if err != nil {
		return nil, err
	}
	return texture.FromImage(base, img)
}
