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

// Package preferences collates the preference values used when streaming to
// a device or rendering a file. The values are stored in the preferences file
// in the resources directory and can be overridden for a single run with the
// -prefs command line flag.
package preferences

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jetsetilly/ymstream/flow"
	"github.com/jetsetilly/ymstream/prefs"
	"github.com/jetsetilly/ymstream/resources"
	"github.com/jetsetilly/ymstream/session"
)

// the name of the preferences file in the resources directory
const prefsFile = "preferences"

// list of serial drivers. the first entry is the default
var Drivers = []string{"term", "serial"}

// Preferences defines and collates all the preference values used by the
// program.
type Preferences struct {
	dsk *prefs.Disk

	// name of the device firmware. one of the names returned by
	// flow.DialectNames()
	Firmware prefs.String

	// the producer waits when the queue holds more than this many bytes
	HighWater prefs.Int

	// flow controller timeouts in milliseconds
	ReadTimeout prefs.Int
	Poll        prefs.Int

	// wait before talking to the device, in milliseconds. some devices reset
	// when the serial port is opened
	StartDelay prefs.Int

	// the number of timer ticks between packets from a live trace. a value of
	// zero means that the timestamps in the trace are used as they are
	LiveInterval prefs.Int

	// serial driver. one of the values in Drivers
	Driver prefs.String

	// baud rate of serial device. zero means the firmware's default
	Baud prefs.Int

	// sample rate of rendered and played audio
	SampleRate prefs.Int
}

func (p *Preferences) String() string {
	return p.dsk.String()
}

// NewPreferences is the preferred method of initialisation for the Preferences
// type. The preferences file is created if it doesn't exist.
func NewPreferences() (*Preferences, error) {
	pth, err := resources.JoinPath(prefsFile)
	if err != nil {
		return nil, fmt.Errorf("preferences: %w", err)
	}
	return newPreferences(pth)
}

func newPreferences(pth string) (*Preferences, error) {
	p := &Preferences{}
	p.SetDefaults()

	positive := func(v prefs.Value) error {
		if v.(int) <= 0 {
			return fmt.Errorf("value must be positive")
		}
		return nil
	}

	notNegative := func(v prefs.Value) error {
		if v.(int) < 0 {
			return fmt.Errorf("value must not be negative")
		}
		return nil
	}

	p.Firmware.SetHookPre(func(v prefs.Value) error {
		_, err := flow.DialectByName(v.(string))
		return err
	})
	p.Driver.SetHookPre(func(v prefs.Value) error {
		if !slices.Contains(Drivers, strings.ToLower(v.(string))) {
			return fmt.Errorf("unknown serial driver (%s)", v)
		}
		return nil
	})
	p.HighWater.SetHookPre(positive)
	p.ReadTimeout.SetHookPre(positive)
	p.Poll.SetHookPre(positive)
	p.StartDelay.SetHookPre(notNegative)
	p.LiveInterval.SetHookPre(func(v prefs.Value) error {
		if v.(int) < 0 || v.(int) > 0xffff {
			return fmt.Errorf("value must be between 0 and 65535")
		}
		return nil
	})
	p.Baud.SetHookPre(notNegative)
	p.SampleRate.SetHookPre(positive)

	var err error

	p.dsk, err = prefs.NewDisk(pth)
	if err != nil {
		return nil, fmt.Errorf("preferences: %w", err)
	}

	for _, e := range []struct {
		key string
		p   prefs.Pref
	}{
		{"stream.firmware", &p.Firmware},
		{"stream.highWater", &p.HighWater},
		{"stream.readTimeout", &p.ReadTimeout},
		{"stream.poll", &p.Poll},
		{"stream.startDelay", &p.StartDelay},
		{"stream.liveInterval", &p.LiveInterval},
		{"serial.driver", &p.Driver},
		{"serial.baud", &p.Baud},
		{"render.sampleRate", &p.SampleRate},
	} {
		err = p.dsk.Add(e.key, e.p)
		if err != nil {
			return nil, fmt.Errorf("preferences: %w", err)
		}
	}

	err = p.dsk.Load(true)
	if err != nil {
		return nil, fmt.Errorf("preferences: %w", err)
	}

	return p, nil
}

// SetDefaults reverts all preferences to their default values.
func (p *Preferences) SetDefaults() {
	p.Firmware.Set(flow.Slow.Name)
	p.HighWater.Set(3000)
	p.ReadTimeout.Set(int(flow.DefaultReadTimeout / time.Millisecond))
	p.Poll.Set(int(flow.DefaultPoll / time.Millisecond))
	p.StartDelay.Set(0)
	p.LiveInterval.Set(0)
	p.Driver.Set(Drivers[0])
	p.Baud.Set(0)
	p.SampleRate.Set(44100)
}

// Load preferences from disk. Values on the command line prefs stack take
// priority.
func (p *Preferences) Load() error {
	return p.dsk.Load(false)
}

// Save current preferences to disk.
func (p *Preferences) Save() error {
	return p.dsk.Save()
}

// Dialect returns the flow dialect for the Firmware preference.
func (p *Preferences) Dialect() (flow.Dialect, error) {
	return flow.DialectByName(p.Firmware.String())
}

// BaudRate returns the baud rate to use for the dialect. The Baud preference
// is used if it is not zero.
func (p *Preferences) BaudRate(dialect flow.Dialect) int {
	if b := p.Baud.Value(); b > 0 {
		return b
	}
	return dialect.Baud
}

// SessionOptions returns the session options for the dialect.
func (p *Preferences) SessionOptions(dialect flow.Dialect) session.Options {
	opts := session.DefaultOptions(dialect)
	opts.HighWater = p.HighWater.Value()
	opts.ReadTimeout = time.Duration(p.ReadTimeout.Value()) * time.Millisecond
	opts.Poll = time.Duration(p.Poll.Value()) * time.Millisecond
	opts.StartDelay = time.Duration(p.StartDelay.Value()) * time.Millisecond
	return opts
}
