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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/jetsetilly/ymstream/flow"
	"github.com/jetsetilly/ymstream/livetrace"
	"github.com/jetsetilly/ymstream/logger"
	"github.com/jetsetilly/ymstream/modalflag"
	"github.com/jetsetilly/ymstream/preferences"
	"github.com/jetsetilly/ymstream/prefs"
	"github.com/jetsetilly/ymstream/resources"
	"github.com/jetsetilly/ymstream/session"
	"github.com/jetsetilly/ymstream/speaker"
	"github.com/jetsetilly/ymstream/statsview"
	"github.com/jetsetilly/ymstream/transport"
	"github.com/jetsetilly/ymstream/transport/serialport"
	"github.com/jetsetilly/ymstream/transport/termport"
	"github.com/jetsetilly/ymstream/version"
	"github.com/jetsetilly/ymstream/virtualdevice"
	"github.com/jetsetilly/ymstream/wavwriter"
	"github.com/jetsetilly/ymstream/wire"
	"github.com/jetsetilly/ymstream/ymfile"
	"golang.org/x/term"
)

// exit values
const (
	exitArguments = 10
	exitRuntime   = 20
)

// argError is returned for problems with the command line. argument errors
// exit with a different value to other errors.
type argError struct {
	error
}

func argErrorf(format string, args ...any) error {
	return argError{fmt.Errorf(format, args...)}
}

func (e argError) Unwrap() error {
	return e.error
}

func main() {
	md := &modalflag.Modes{Output: os.Stdout}
	os.Exit(launch(md, os.Stdin, os.Args[1:]))
}

// launch runs the mode selected by the arguments and returns the exit value.
func launch(md *modalflag.Modes, stdin io.Reader, args []string) int {
	md.NewArgs(args)
	md.AddSubModes("PLAY", "LIVE", "RENDER", "INFO", "DELTAS")
	md.AdditionalHelp(fmt.Sprintf("%s streams AY/YM register data to a playback device", version.Banner()))

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		return 0

	case modalflag.ParseError:
		fmt.Fprintf(md.Output, "* error: %v\n", err)
		return exitArguments
	}

	switch md.Mode() {
	case "PLAY":
		err = play(md)

	case "LIVE":
		err = live(md, stdin)

	case "RENDER":
		err = render(md, stdin)

	case "INFO":
		err = info(md)

	case "DELTAS":
		err = deltas(md, stdin)
	}

	if err != nil {
		fmt.Fprintf(md.Output, "* error in %s mode: %s\n", md, err)
		if errors.As(err, &argError{}) {
			return exitArguments
		}
		return exitRuntime
	}

	return 0
}

// parse the flags for the current mode. returns false if the mode should
// end without error, for example if help was requested.
func parse(md *modalflag.Modes) (bool, error) {
	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		return false, nil
	case modalflag.ParseError:
		return false, argError{err}
	}
	return true, nil
}

// flags shared by the PLAY, LIVE and RENDER modes.
type commonFlags struct {
	firmware  *string
	driver    *string
	baud      *int
	prefs     *string
	log       *bool
	statsview *bool
}

func addCommonFlags(md *modalflag.Modes, device bool) *commonFlags {
	f := &commonFlags{}
	f.firmware = md.AddChoice("firmware", "", flow.DialectNames(), "device firmware")
	if device {
		f.driver = md.AddChoice("driver", "", preferences.Drivers, "serial driver")
		f.baud = md.AddInt("baud", 0, "serial baud rate (0 for the firmware default)")
	}
	f.prefs = md.AddString("prefs", "", "preferences for this run only: \"key::value; ...\"")
	f.log = md.AddBool("log", false, "echo debugging log to stdout")
	f.statsview = md.AddBool("statsview", false, "run stats server")
	return f
}

// apply the common flags after a successful parse. preferences are loaded
// with the command line prefs and flags taking priority over the values on
// disk. the returned function should be called when the mode ends.
func (f *commonFlags) apply(md *modalflag.Modes) (*preferences.Preferences, flow.Dialect, func(), error) {
	if *f.log {
		logger.SetEcho(md.Output)
	} else {
		logger.SetEcho(nil)
	}

	prefs.PushCommandLineStack(*f.prefs)

	end := func() {
		if unused := prefs.PopCommandLineStack(); unused != "" {
			logger.Logf(logger.Allow, "ymstream", "unused prefs: %s", unused)
		}
	}

	pref, err := preferences.NewPreferences()
	if err != nil {
		end()
		return nil, flow.Dialect{}, nil, err
	}

	// flags that have been set override preferences
	md.Visit(func(flg string) {
		switch flg {
		case "firmware":
			err = errors.Join(err, pref.Firmware.Set(*f.firmware))
		case "driver":
			err = errors.Join(err, pref.Driver.Set(*f.driver))
		case "baud":
			err = errors.Join(err, pref.Baud.Set(*f.baud))
		}
	})
	if err != nil {
		end()
		return nil, flow.Dialect{}, nil, argError{err}
	}

	dialect, err := pref.Dialect()
	if err != nil {
		end()
		return nil, flow.Dialect{}, nil, err
	}

	if *f.statsview {
		stop := statsview.Launch(md.Output)
		e := end
		end = func() {
			stop()
			e()
		}
	}

	return pref, dialect, end, nil
}

// openDevice opens the serial device with the preferred driver.
func openDevice(pref *preferences.Preferences, dialect flow.Dialect, device string) (transport.Transport, error) {
	baud := pref.BaudRate(dialect)

	switch strings.ToLower(pref.Driver.String()) {
	case "serial":
		p, err := serialport.Open(device, baud)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		p, err := termport.Open(device, baud)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

// interrupt handles ctrl-c while a session is running. the first interrupt
// asks the session to stop gracefully and the second aborts it. the returned
// function must be called when the session has ended.
func interrupt(ctx context.Context, s *session.Session) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)

	intChan := make(chan os.Signal, 1)
	signal.Notify(intChan, os.Interrupt)

	done := make(chan bool)
	go func() {
		select {
		case <-intChan:
		case <-done:
			return
		}

		fmt.Println("\r! stopping. ctrl-c again to abort")
		s.Stop()

		select {
		case <-intChan:
			cancel()
		case <-done:
		}
	}()

	return ctx, func() {
		signal.Stop(intChan)
		close(done)
		cancel()
	}
}

// status returns a progress callback that prints a status line. returns nil
// if output is not a terminal.
func status(output io.Writer) func(flow.Progress) {
	f, ok := output.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil
	}

	var last time.Time
	return func(p flow.Progress) {
		if time.Since(last) < 100*time.Millisecond {
			return
		}
		last = time.Now()
		fmt.Fprintf(output, "\x1b[2K\rcredit %4d  queued %5d  sent %d", p.Available, p.Queued, p.Sent)
	}
}

// stream the source to the port until the source is exhausted or the session
// is stopped with ctrl-c.
func stream(md *modalflag.Modes, port transport.Transport, opts session.Options, src session.Source) error {
	s := session.NewSession(port, opts)

	progress := status(md.Output)
	s.Controller().OnProgress = progress

	ctx, end := interrupt(context.Background(), s)
	defer end()

	err := s.Run(ctx, src)

	if progress != nil {
		fmt.Fprint(md.Output, "\x1b[2K\r")
	}

	if err != nil {
		return err
	}

	fc := s.Controller()
	logger.Logf(logger.Allow, "ymstream", "%d packets, %d bytes, %d credit reports, %d waits", s.Packets(), fc.Sent, fc.Credits, fc.Waits)

	return nil
}

// streamTo opens the device, or the virtual device if device is empty, and
// streams the source to it. the virtual device plays through the sound card.
func streamTo(md *modalflag.Modes, pref *preferences.Preferences, dialect flow.Dialect, device string, src session.Source) error {
	opts := pref.SessionOptions(dialect)

	if device != "" {
		port, err := openDevice(pref, dialect, device)
		if err != nil {
			return err
		}
		defer port.Close()

		return stream(md, port, opts, src)
	}

	spk, err := speaker.New(pref.SampleRate.Value())
	if err != nil {
		return err
	}
	defer spk.Close()

	dev := virtualdevice.NewDevice(dialect, spk, true)
	defer dev.Close()

	err = stream(md, dev, opts, src)
	if err != nil {
		return err
	}

	// wait for the virtual device to play everything it has been sent
	err = dev.Drain(context.Background())
	if err != nil {
		return err
	}

	st := dev.Stats()
	if st.Underruns > 0 {
		logger.Logf(logger.Allow, "ymstream", "virtual device: %d underruns", st.Underruns)
	}

	return nil
}

// songSource opens the YM file and returns a packet source for it.
func songSource(filename string, loops int) (*wire.FrameSource, error) {
	song, err := ymfile.Open(filename)
	if err != nil {
		return nil, err
	}

	clock := wire.NewFixedInterval(wire.IntervalForRate(song.Header.FrameRate))
	src := wire.NewFrameSource(song.Frames, clock)
	if loops > 0 {
		src.SetLoops(int(song.Header.LoopFrame), loops)
	}

	logger.Logf(logger.Allow, "ymstream", "%s: %s", filepath.Base(filename), song.Header)

	return src, nil
}

// traceClock returns the clock to use for a live trace.
func traceClock(pref *preferences.Preferences) wire.Clock {
	if i := pref.LiveInterval.Value(); i > 0 {
		return wire.NewFixedInterval(uint16(i))
	}
	return wire.Captured{}
}

func play(md *modalflag.Modes) error {
	md.NewMode()

	flgs := addCommonFlags(md, true)
	virtual := md.AddBool("virtual", false, "play on the sound card instead of a serial device")
	loops := md.AddInt("loops", 0, "number of times to repeat from the loop frame")

	if ok, err := parse(md); !ok {
		return err
	}

	var device, filename string

	if *virtual {
		switch len(md.RemainingArgs()) {
		case 0:
			return argErrorf("YM file required for %s mode", md)
		case 1:
			filename = md.GetArg(0)
		default:
			return argErrorf("too many arguments for %s mode", md)
		}
	} else {
		switch len(md.RemainingArgs()) {
		case 0:
			return argErrorf("serial device and YM file required for %s mode", md)
		case 1:
			return argErrorf("YM file required for %s mode", md)
		case 2:
			device = md.GetArg(0)
			filename = md.GetArg(1)
		default:
			return argErrorf("too many arguments for %s mode", md)
		}
	}

	pref, dialect, end, err := flgs.apply(md)
	if err != nil {
		return err
	}
	defer end()

	src, err := songSource(filename, *loops)
	if err != nil {
		return err
	}

	return streamTo(md, pref, dialect, device, src)
}

func live(md *modalflag.Modes, stdin io.Reader) error {
	md.NewMode()
	md.AdditionalHelp("trace lines are read from stdin")

	flgs := addCommonFlags(md, true)
	virtual := md.AddBool("virtual", false, "play on the sound card instead of a serial device")

	if ok, err := parse(md); !ok {
		return err
	}

	var device string

	switch len(md.RemainingArgs()) {
	case 0:
		if !*virtual {
			return argErrorf("serial device required for %s mode", md)
		}
	case 1:
		if *virtual {
			return argErrorf("too many arguments for %s mode", md)
		}
		device = md.GetArg(0)
	default:
		return argErrorf("too many arguments for %s mode", md)
	}

	pref, dialect, end, err := flgs.apply(md)
	if err != nil {
		return err
	}
	defer end()

	src := wire.NewTraceSource(stdin, traceClock(pref))

	err = streamTo(md, pref, dialect, device, src)
	if src.Skipped > 0 {
		fmt.Fprintf(md.Output, "! %d malformed trace lines skipped\n", src.Skipped)
	}

	return err
}

func render(md *modalflag.Modes, stdin io.Reader) error {
	md.NewMode()
	md.AdditionalHelp("use - in place of the YM file to read trace lines from stdin")

	flgs := addCommonFlags(md, false)
	loops := md.AddInt("loops", 0, "number of times to repeat from the loop frame")

	if ok, err := parse(md); !ok {
		return err
	}

	var input, output string

	switch len(md.RemainingArgs()) {
	case 0:
		return argErrorf("YM file required for %s mode", md)
	case 1:
		input = md.GetArg(0)
	case 2:
		input = md.GetArg(0)
		output = md.GetArg(1)
	default:
		return argErrorf("too many arguments for %s mode", md)
	}

	pref, dialect, end, err := flgs.apply(md)
	if err != nil {
		return err
	}
	defer end()

	var src session.Source
	if input == "-" {
		src = wire.NewTraceSource(stdin, traceClock(pref))
	} else {
		fs, err := songSource(input, *loops)
		if err != nil {
			return err
		}
		src = fs
	}

	if output == "" {
		name := input
		if name == "-" {
			name = "live"
		}
		output = resources.UniqueFilename("render", name, ".wav")
	}

	ww, err := wavwriter.New(output, pref.SampleRate.Value())
	if err != nil {
		return err
	}

	dev := virtualdevice.NewDevice(dialect, ww, false)
	defer dev.Close()

	err = stream(md, dev, pref.SessionOptions(dialect), src)
	if err != nil {
		return err
	}

	err = ww.EndMixing()
	if err != nil {
		return err
	}

	fmt.Fprintf(md.Output, "rendered %d samples to %s\n", ww.Samples(), output)

	return nil
}

func info(md *modalflag.Modes) error {
	md.NewMode()

	if ok, err := parse(md); !ok {
		return err
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return argErrorf("YM file required for %s mode", md)
	case 1:
	default:
		return argErrorf("too many arguments for %s mode", md)
	}

	song, err := ymfile.Open(md.GetArg(0))
	if err != nil {
		return err
	}

	for _, f := range song.Header.Fields() {
		fmt.Fprintf(md.Output, "%-12s %s\n", f[0]+":", f[1])
	}

	m, s := song.Duration()
	fmt.Fprintf(md.Output, "%-12s %d:%02d\n", "duration:", m, s)

	if song.TrailerMissing {
		fmt.Fprintf(md.Output, "! %v\n", ymfile.TruncatedTrailer)
	}

	return nil
}

func deltas(md *modalflag.Modes, stdin io.Reader) error {
	md.NewMode()
	md.AdditionalHelp("trace lines are read from stdin if no file is given")

	if ok, err := parse(md); !ok {
		return err
	}

	r := stdin

	switch len(md.RemainingArgs()) {
	case 0:
	case 1:
		f, err := os.Open(md.GetArg(0))
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	default:
		return argErrorf("too many arguments for %s mode", md)
	}

	d, err := livetrace.CountDeltas(r)
	if err != nil {
		return err
	}

	for _, k := range d.Keys() {
		fmt.Fprintf(md.Output, "%5d: %d\n", k, d.Counts[k])
	}

	if m, ok := d.Min(); ok {
		fmt.Fprintf(md.Output, "minimum delta: %d\n", m)
	}
	if d.Malformed > 0 {
		fmt.Fprintf(md.Output, "malformed lines: %d\n", d.Malformed)
	}

	return nil
}
