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

// Package modalflag is a wrapper for the flag package in the Go standard
// library. It provides a convenient method of handling program modes (and
// sub-modes) and allows different flags for each mode.
//
// Arguments are given to the Modes type with NewArgs() and then parsed with
// Parse(). Flags are added before each call to Parse():
//
//	md := modalflag.Modes{Output: os.Stdout}
//	md.NewArgs(os.Args[1:])
//	md.AddSubModes("PLAY", "LIVE", "RENDER")
//	_, _ = md.Parse()
//
// After the call to Parse(), Mode() returns the selected mode. The first
// sub-mode is the default and is selected if the first argument after the
// flags is not one of the sub-modes. Comparisons are case insensitive.
//
// Each mode then calls NewMode(), adds the flags it accepts and calls Parse()
// again. Non-flag arguments are then available with RemainingArgs() and
// GetArg():
//
//	md.NewMode()
//	firmware := md.AddChoice("firmware", "slow", []string{"slow", "fast", "byte"}, "device firmware")
//	switch p, err := md.Parse(); p {
//	case modalflag.ParseHelp:
//		return nil
//	case modalflag.ParseError:
//		return err
//	}
//	device := md.GetArg(0)
//
// Help is requested with the -help or -h flag and is printed to the Output
// writer. Help for a mode lists the mode's flags and any sub-modes.
package modalflag
