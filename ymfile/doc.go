// This file is part of YMStream.
//
// YMStream is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// YMStream is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with YMStream.  If not, see <https://www.gnu.org/licenses/>.

// Package ymfile decodes YM5 and YM6 register dump files, as produced by
// Leonard's ST-Sound tools.
//
// The file starts with a big-endian header followed by three NUL
// terminated strings (song name, author and comment). The register data
// follows the strings as sixteen columns, one for each register slot, of
// Header.Frames bytes each. The columns are transposed on reading so that
// each Frame contains the register values for one playback tick. The data
// is followed by the four byte marker "End!".
//
// Only interleaved files without digi-drums are supported. Anything else is
// rejected with an error wrapping UnsupportedFormat before any register data
// is read. YM files are often distributed LHA compressed. Compressed files
// are detected and rejected in the same way; they must be decompressed
// first.
package ymfile
