package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"

	"github.com/kwren/chip8/cli"
	"github.com/kwren/chip8/emu"
	"github.com/kwren/chip8/internal/config"
	"github.com/kwren/chip8/romloader"
	"github.com/kwren/chip8/storage"
)

func main() {
	ctx := app.Context()

	opts, err := config.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *config.UsageError
		if errors.As(err, &usageErr) {
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)

	machine, title, err := createMachine(opts, logger)
	if err != nil {
		logger.Fatal(err.Error())
	}

	savePath := opts.SavePath
	if savePath == "" {
		source := opts.ROM
		if source == "" {
			source = opts.LoadPath
		}
		savePath = storage.DefaultSnapshotPath(source)
	}

	runner, err := cli.NewRunner(ctx, machine, storage.NewStore(), savePath, opts.ClockHz, logger)
	if err != nil {
		logger.Fatal(err.Error())
	}
	defer runner.Close()

	ebiten.SetWindowSize(emu.DisplayWidth*opts.Scale, emu.DisplayHeight*opts.Scale)
	ebiten.SetWindowTitle("chip8 - " + title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(emu.TickRate)

	if err := ebiten.RunGame(runner); err != nil {
		logger.Fatal(err.Error())
	}
}

// createMachine boots a machine either from a ROM file or from a snapshot
func createMachine(opts config.Options, logger *log.Logger) (*emu.Machine, string, error) {
	cfg := emu.Config{ClockHz: opts.ClockHz}

	if opts.LoadPath != "" {
		data, err := storage.NewStore().ReadSnapshot(opts.LoadPath)
		if err != nil {
			return nil, "", err
		}
		machine, err := emu.Restore(data, cfg)
		if err != nil {
			return nil, "", fmt.Errorf("failed to restore snapshot: %w", err)
		}
		logger.Debug("snapshot restored", log.String("path", opts.LoadPath))
		return machine, filepath.Base(opts.LoadPath), nil
	}

	romData, romName, err := romloader.LoadROM(opts.ROM)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load ROM: %w", err)
	}
	logger.Debug("ROM loaded",
		log.String("name", romName),
		log.Int("size", len(romData)))

	machine, err := emu.NewMachine(romData, cfg)
	if err != nil {
		return nil, "", err
	}
	return machine, romName, nil
}
