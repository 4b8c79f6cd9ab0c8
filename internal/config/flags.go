package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/kwren/chip8/emu"
)

// Options holds the program options parsed from the command line
type Options struct {
	ROM      string // path of the ROM file to run
	LoadPath string // snapshot to restore instead of cold-booting a ROM
	SavePath string // snapshot path used by the save and load keys

	ClockHz int
	Scale   int

	Debug bool
	Quiet bool
}

// ParseFlags parses command line flags and returns the program options
func ParseFlags() (Options, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts Options
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.LoadPath == "") {
		return opts, &UsageError{flags: flags}
	}

	if len(args) > 0 {
		opts.ROM = args[0]
	}

	if err := validateOptions(&opts); err != nil {
		return opts, err
	}

	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: chip8 [options] <ROM file>\n\n")
	e.flags.PrintDefaults()
	fmt.Println()
}

// validateOptions normalizes and validates option values
func validateOptions(opts *Options) error {
	if opts.ROM != "" && opts.LoadPath != "" {
		return &UsageError{
			msg: "pass either a ROM file or -load, not both; a snapshot carries its own ROM",
		}
	}
	if opts.ClockHz <= 0 {
		return fmt.Errorf("invalid cycles value %d, must be positive", opts.ClockHz)
	}
	if opts.Scale <= 0 {
		return fmt.Errorf("invalid scale value %d, must be positive", opts.Scale)
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *Options) {
	flags.StringVar(&opts.LoadPath, "load", "", "snapshot file to restore on startup")
	flags.StringVar(&opts.SavePath, "save", "", "snapshot file for the save/load keys, defaults to the ROM path with a .state extension")
	flags.IntVar(&opts.ClockHz, "cycles", emu.DefaultClockHz, "CPU instructions executed per second")
	flags.IntVar(&opts.Scale, "scale", 10, "window scale factor per pixel")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}
