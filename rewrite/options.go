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

package rewrite

import (
	"fmt"
	"math"
)

// Options configures a Converter
type Options struct {
	// Rows and Columns override the geometry recorded in the input. Zero keeps the recorded value.
	Rows    int
	Columns int

	// KeepCompressed keeps the private compressed pixel data element in the output
	KeepCompressed bool

	// NewInstanceUID gives every output a new SOP instance UID
	NewInstanceUID bool

	// Parallelism bounds the number of files ConvertAll converts at once. Values below 1 mean 1.
	Parallelism int
}

// Validate reports invalid options
func (o Options) Validate() error {
	if o.Rows < 0 || o.Columns < 0 {
		return fmt.Errorf("negative geometry override %dx%d", o.Columns, o.Rows)
	}
	if o.Rows > math.MaxUint16 || o.Columns > math.MaxUint16 {
		return fmt.Errorf("geometry override %dx%d exceeds %d", o.Columns, o.Rows, math.MaxUint16)
	}
	if o.Parallelism < 0 {
		return fmt.Errorf("negative parallelism %d", o.Parallelism)
	}
	return nil
}

func (o Options) parallelism() int {
	if o.Parallelism < 1 {
		return 1
	}
	return o.Parallelism
}
