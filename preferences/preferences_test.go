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

package preferences

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jetsetilly/ymstream/flow"
	"github.com/jetsetilly/ymstream/prefs"
	"github.com/jetsetilly/ymstream/test"
)

func TestDefaults(t *testing.T) {
	pth := filepath.Join(t.TempDir(), "preferences")

	p, err := newPreferences(pth)
	test.DemandSuccess(t, err)

	dialect, err := p.Dialect()
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, dialect, flow.Slow)
	test.ExpectEquality(t, p.BaudRate(dialect), flow.Slow.Baud)
	test.ExpectEquality(t, p.Driver.String(), "term")
	test.ExpectEquality(t, p.SampleRate.Value(), 44100)

	opts := p.SessionOptions(dialect)
	test.ExpectEquality(t, opts.HighWater, 3000)
	test.ExpectEquality(t, opts.ReadTimeout, flow.DefaultReadTimeout)
	test.ExpectEquality(t, opts.Poll, flow.DefaultPoll)
	test.ExpectEquality(t, opts.StartDelay, time.Duration(0))

	// the file is created on first use
	data, err := os.ReadFile(pth)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, strings.HasPrefix(string(data), prefs.WarningBoilerPlate))
	test.ExpectSuccess(t, strings.Contains(string(data), "stream.highWater :: 3000\n"))
}

func TestSaveAndLoad(t *testing.T) {
	pth := filepath.Join(t.TempDir(), "preferences")

	p, err := newPreferences(pth)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, p.Firmware.Set("fast"))
	test.ExpectSuccess(t, p.Baud.Set(115200))
	test.ExpectSuccess(t, p.Save())

	p, err = newPreferences(pth)
	test.DemandSuccess(t, err)
	dialect, err := p.Dialect()
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, dialect, flow.Fast)
	test.ExpectEquality(t, p.BaudRate(dialect), 115200)
}

func TestValidation(t *testing.T) {
	p, err := newPreferences(filepath.Join(t.TempDir(), "preferences"))
	test.DemandSuccess(t, err)

	test.ExpectFailure(t, p.Firmware.Set("turbo"))
	test.ExpectEquality(t, p.Firmware.String(), flow.Slow.Name)
	test.ExpectSuccess(t, p.Firmware.Set("BYTE"))

	test.ExpectFailure(t, p.Driver.Set("usb"))
	test.ExpectSuccess(t, p.Driver.Set("serial"))

	test.ExpectFailure(t, p.HighWater.Set(0))
	test.ExpectFailure(t, p.Poll.Set(-1))
	test.ExpectFailure(t, p.LiveInterval.Set(0x10000))
	test.ExpectSuccess(t, p.LiveInterval.Set(40000))
	test.ExpectSuccess(t, p.StartDelay.Set(0))
	test.ExpectFailure(t, p.StartDelay.Set(-5))
}

func TestCommandLine(t *testing.T) {
	pth := filepath.Join(t.TempDir(), "preferences")

	prefs.PushCommandLineStack("stream.firmware::byte; stream.highWater::5000")
	p, err := newPreferences(pth)
	prefs.PopCommandLineStack()
	test.DemandSuccess(t, err)

	dialect, err := p.Dialect()
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, dialect, flow.Byte)
	test.ExpectEquality(t, p.SessionOptions(dialect).HighWater, 5000)

	// command line values are not saved unless Save() is called
	p, err = newPreferences(pth)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, p.HighWater.Value(), 3000)
}

func TestBadCommandLine(t *testing.T) {
	prefs.PushCommandLineStack("serial.driver::usb")
	_, err := newPreferences(filepath.Join(t.TempDir(), "preferences"))
	prefs.PopCommandLineStack()
	test.ExpectFailure(t, err)
}
