// Package docx extracts embedded raster images from DOCX archives.
//
// A DOCX file is a ZIP container; embedded images live under word/media/.
// Extraction is a pure function of the archive bytes and keeps no state.
package docx

import (
	"archive/zip"
	"bytes"
	"image"
	"image/jpeg"
	"path"
	"sort"
	"strings"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"

	"github.com/preevind/timeverify/constants"
	"github.com/preevind/timeverify/internal/common"
)

const (
	// maxDimension matches the downscale bound applied before images are
	// shipped to the vision service.
	maxDimension = 1500
	jpegQuality  = 90
)

// Image is one embedded screenshot, re-encoded as JPEG and ready to attach
// to a vision request.
type Image struct {
	Data      []byte
	MediaType string
}

var decodableExts = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
}

// ExtractImages returns the raster images embedded in a DOCX archive, in
// media-member name order. A well-formed archive with no images yields an
// empty slice and nil error; an unreadable archive fails with
// common.ErrCorruptDocument. Media members in formats the decoder does not
// understand (EMF, WMF, SVG) are skipped, matching the tolerant per-image
// behavior of the extraction pipeline as a whole.
func ExtractImages(data []byte) ([]Image, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, common.NewAppError("CORRUPT_DOCUMENT", "cannot open archive", common.ErrCorruptDocument)
	}

	var members []*zip.File
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, "word/media/") {
			continue
		}
		if _, ok := decodableExts[constants.NormalizeExt(path.Ext(f.Name))]; !ok {
			continue
		}
		members = append(members, f)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Name < members[j].Name })

	images := make([]Image, 0, len(members))
	for _, m := range members {
		img, err := decodeMember(m)
		if err != nil {
			continue
		}
		out, err := encodeJPEG(downscale(img))
		if err != nil {
			continue
		}
		images = append(images, Image{Data: out, MediaType: "image/jpeg"})
	}
	return images, nil
}

func decodeMember(f *zip.File) (image.Image, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	img, _, err := image.Decode(rc)
	return img, err
}

// downscale shrinks images larger than maxDimension on either axis,
// preserving aspect ratio. Smaller images pass through untouched.
func downscale(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDimension && h <= maxDimension {
		return img
	}
	scale := float64(maxDimension) / float64(w)
	if h > w {
		scale = float64(maxDimension) / float64(h)
	}
	nw := int(float64(w) * scale)
	nh := int(float64(h) * scale)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
