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

// Package pmsct decodes the ELSCINT1 "PMSCT_RLE1" pixel data compression found in private data
// elements of some CT images.
//
// A compressed stream is the run-length encoding of a stream of sample differences. Decoding runs
// two passes:
//
//  1. Run expansion: the byte 0xA5 starts a run "0xA5 n v" that expands to n+1 copies of v. Any
//     other byte is copied.
//  2. Delta decoding: the byte 0x5A starts an anchor "0x5A lo hi" holding the absolute
//     little-endian sample hi<<8|lo. Any other byte is a signed 8-bit difference to the previous
//     sample, which starts at 0. Samples wrap around modulo 65536.
//
// A decoded image always holds an even number of samples; an odd trailing sample is dropped.
package pmsct
