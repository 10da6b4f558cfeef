// Copyright 2018 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package rewrite converts images holding ELSCINT1 PMSCT_RLE1 compressed pixel data into DICOM
// files with native pixel data that any conforming reader can display.
package rewrite

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/elscint-rewrite/dicom"
	"github.com/GoogleCloudPlatform/elscint-rewrite/pmsct"
)

// CompressionPMSCTRLE1 is the only compression type the converter decodes
const CompressionPMSCTRLE1 = "PMSCT_RLE1"

var (
	// CompressionTypeTag holds the name of the compression applied to CompressedDataTag
	CompressionTypeTag = dicom.PrivateTag{Group: 0x07A1, Element: 0x11, Creator: "ELSCINT1"}
	// CompressedDataTag holds the compressed pixel data
	CompressedDataTag = dicom.PrivateTag{Group: 0x07A1, Element: 0x0A, Creator: "ELSCINT1"}
)

// Errors returned by Convert, to be tested with errors.Is
var (
	ErrOpen                   = errors.New("opening input")
	ErrNotCompressed          = errors.New("no compression type")
	ErrUnsupportedCompression = errors.New("unsupported compression type")
	ErrNoCompressedData       = errors.New("no compressed pixel data")
	ErrNoGeometry             = errors.New("image geometry unknown")
	ErrPixelCountMismatch     = errors.New("decoded sample count does not match image geometry")
	ErrSave                   = errors.New("saving output")
)

// Geometry is the size of a single frame image
type Geometry struct {
	Rows    int
	Columns int
}

// Pixels returns the number of samples of a single frame with this geometry
func (g Geometry) Pixels() int {
	return g.Rows * g.Columns
}

func (g Geometry) String() string {
	return fmt.Sprintf("%dx%d", g.Columns, g.Rows)
}

// Image is decoded native pixel data. Samples are signed 16-bit values stored in row-major order.
type Image struct {
	Geometry
	Samples []uint16
}

// Opener opens the documents to convert
type Opener interface {
	Open(ctx context.Context, path string) (Document, error)
}

// Document is an opened image file. Implementations are not safe for concurrent use.
type Document interface {
	// PrivateValue returns the value bytes of a private element and whether the element exists
	PrivateValue(tag dicom.PrivateTag) ([]byte, bool, error)

	// Geometry returns the Rows and Columns recorded in the document, if any
	Geometry() (Geometry, bool)

	// ReplacePixelData stores img as native pixel data, replacing every attribute that describes
	// the pixel data
	ReplacePixelData(img Image) error

	// RemovePrivate deletes a private element. Missing elements are not an error.
	RemovePrivate(tag dicom.PrivateTag) error

	// SetInstanceUID gives the document a new SOP instance UID
	SetInstanceUID(uid string) error

	// Save writes the document to path
	Save(path string) error
}

// Result describes a converted file
type Result struct {
	Input  string
	Output string

	Geometry Geometry

	// CompressedBytes is the length of the compressed pixel data
	CompressedBytes int
	// Samples is the number of decoded samples written as pixel data
	Samples int
	// DroppedTrailingSample is set when the decoder produced an odd number of samples and the last
	// one was discarded
	DroppedTrailingSample bool
}

// Converter rewrites PMSCT_RLE1 compressed documents
type Converter struct {
	Options Options
	Logger  *zap.SugaredLogger
	Opener  Opener
}

// NewConverter returns a Converter reading and writing DICOM files from the file system
func NewConverter(opts Options, logger *zap.SugaredLogger) *Converter {
	return &Converter{Options: opts, Logger: logger, Opener: DICOMOpener{}}
}

func (c *Converter) logger() *zap.SugaredLogger {
	if c.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return c.Logger
}

// Convert decodes the compressed pixel data of the document at in and saves the document with
// native pixel data at out. Errors wrap one of the package's sentinel errors.
func (c *Converter) Convert(ctx context.Context, in, out string) (Result, error) {
	res := Result{Input: in, Output: out}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	if err := c.Options.Validate(); err != nil {
		return res, err
	}
	log := c.logger().With("input", in)

	doc, err := c.Opener.Open(ctx, in)
	if err != nil {
		return res, fmt.Errorf("%w %s: %w", ErrOpen, in, err)
	}

	if err := checkCompressionType(doc); err != nil {
		return res, fmt.Errorf("%s: %w", in, err)
	}

	compressed, ok, err := doc.PrivateValue(CompressedDataTag)
	if err != nil {
		return res, fmt.Errorf("%s: reading %v: %w", in, CompressedDataTag, err)
	}
	if !ok || len(compressed) == 0 {
		return res, fmt.Errorf("%w in %s", ErrNoCompressedData, in)
	}
	res.CompressedBytes = len(compressed)

	samples, dropped, err := pmsct.Decode(compressed)
	if err != nil {
		return res, fmt.Errorf("%s: decoding pixel data: %w", in, err)
	}
	res.Samples, res.DroppedTrailingSample = len(samples), dropped
	log.Debugw("decoded pixel data", "compressed", len(compressed), "samples", len(samples), "dropped", dropped)

	geometry, err := c.geometry(doc)
	if err != nil {
		return res, fmt.Errorf("%s: %w", in, err)
	}
	res.Geometry = geometry
	if geometry.Pixels() != len(samples) {
		return res, fmt.Errorf("%w in %s: got %d samples, want %d for %v",
			ErrPixelCountMismatch, in, len(samples), geometry.Pixels(), geometry)
	}

	if err := doc.ReplacePixelData(Image{geometry, samples}); err != nil {
		return res, fmt.Errorf("%s: replacing pixel data: %w", in, err)
	}
	if !c.Options.KeepCompressed {
		if err := doc.RemovePrivate(CompressedDataTag); err != nil {
			return res, fmt.Errorf("%s: removing %v: %w", in, CompressedDataTag, err)
		}
	}
	if c.Options.NewInstanceUID {
		uid := NewUID()
		if err := doc.SetInstanceUID(uid); err != nil {
			return res, fmt.Errorf("%s: setting instance uid: %w", in, err)
		}
		log.Debugw("assigned instance uid", "uid", uid)
	}

	if err := doc.Save(out); err != nil {
		return res, fmt.Errorf("%w %s: %w", ErrSave, out, err)
	}
	log.Infow("converted", "output", out, "geometry", geometry.String(), "samples", len(samples))
	return res, nil
}

func checkCompressionType(doc Document) error {
	value, ok, err := doc.PrivateValue(CompressionTypeTag)
	if err != nil {
		return fmt.Errorf("reading %v: %w", CompressionTypeTag, err)
	}
	if !ok || len(value) == 0 {
		return ErrNotCompressed
	}
	if len(value) < len(CompressionPMSCTRLE1) || string(value[:len(CompressionPMSCTRLE1)]) != CompressionPMSCTRLE1 {
		return fmt.Errorf("%w %q", ErrUnsupportedCompression, value)
	}
	return nil
}

func (c *Converter) geometry(doc Document) (Geometry, error) {
	if c.Options.Rows > 0 && c.Options.Columns > 0 {
		return Geometry{c.Options.Rows, c.Options.Columns}, nil
	}
	g, ok := doc.Geometry()
	if !ok {
		return Geometry{}, ErrNoGeometry
	}
	// a single override applies on top of the document geometry
	if c.Options.Rows > 0 {
		g.Rows = c.Options.Rows
	}
	if c.Options.Columns > 0 {
		g.Columns = c.Options.Columns
	}
	if g.Rows <= 0 || g.Columns <= 0 {
		return Geometry{}, fmt.Errorf("%w: invalid geometry %v", ErrNoGeometry, g)
	}
	return g, nil
}
