package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dargueta/tydos/disks"
	"github.com/dargueta/tydos/errors"
	"github.com/dargueta/tydos/file_systems/tyfs"
	"github.com/dargueta/tydos/kernel"
	"github.com/dargueta/tydos/memory"
	"github.com/urfave/cli/v2"
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "minimum level of diagnostics to print: debug, info, warn, or error",
			Value:   "warn",
			EnvVars: []string{"TYDOS_LOG_LEVEL"},
		},
	}
}

// configureLogging installs the default logger, which writes to stderr so it
// never mixes with the console.
func configureLogging(ctx *cli.Context) error {
	var level slog.Level
	err := level.UnmarshalText([]byte(ctx.String("log-level")))
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid log level: %s", err), 1)
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	return nil
}

func kernelFlags() []cli.Flag {
	defaults := kernel.DefaultConfig()
	return []cli.Flag{
		&cli.UintFlag{
			Name:    "boot-start",
			Usage:   "physical address the boot sectors are loaded to",
			Value:   uint(defaults.BootStart),
			EnvVars: []string{"TYDOS_BOOT_START"},
		},
		&cli.UintFlag{
			Name:    "program-base",
			Usage:   "address of the entry stub programs are loaded against",
			Value:   uint(defaults.ProgramBase),
			EnvVars: []string{"TYDOS_PROGRAM_BASE"},
		},
		&cli.UintFlag{
			Name:    "scratch-sectors",
			Usage:   "size of the directory buffer, in sectors",
			Value:   defaults.ScratchSectors,
			EnvVars: []string{"TYDOS_SCRATCH_SECTORS"},
		},
		&cli.UintFlag{
			Name:    "memory-size",
			Usage:   "amount of physical memory, in bytes",
			Value:   defaults.MemorySize,
			EnvVars: []string{"TYDOS_MEMORY_SIZE"},
		},
		&cli.StringFlag{
			Name:    "signature",
			Usage:   "volume signature to accept; empty accepts any",
			Value:   string(defaults.Signature[:]),
			EnvVars: []string{"TYDOS_SIGNATURE"},
		},
		&cli.StringFlag{
			Name:    "drive",
			Usage:   fmt.Sprintf("geometry of the boot drive, one of %v", disks.Slugs()),
			Value:   defaults.Drive,
			EnvVars: []string{"TYDOS_DRIVE"},
		},
	}
}

func parseSignature(text string) ([tyfs.SignatureLength]byte, error) {
	var signature [tyfs.SignatureLength]byte
	if text != "" && len(text) != tyfs.SignatureLength {
		return signature, errors.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"signature must be %d bytes or empty, got %q", tyfs.SignatureLength, text),
		)
	}
	copy(signature[:], text)
	return signature, nil
}

func configFromFlags(ctx *cli.Context) (kernel.Config, error) {
	signature, err := parseSignature(ctx.String("signature"))
	if err != nil {
		return kernel.Config{}, err
	}

	cfg := kernel.Config{
		BootStart:      memory.Address(ctx.Uint("boot-start")),
		ProgramBase:    memory.Address(ctx.Uint("program-base")),
		ScratchSectors: ctx.Uint("scratch-sectors"),
		MemorySize:     ctx.Uint("memory-size"),
		Signature:      signature,
		Drive:          ctx.String("drive"),
	}
	return cfg, cfg.Validate()
}

func mkimageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.PathFlag{
			Name:     "output",
			Aliases:  []string{"o"},
			Usage:    "where to write the image",
			Required: true,
		},
		&cli.UintFlag{
			Name:  "entries",
			Usage: "number of directory slots",
			Value: 16,
		},
		&cli.UintFlag{
			Name:  "max-file-size",
			Usage: "size of each program slot, in sectors",
			Value: 1,
		},
		&cli.UintFlag{
			Name:  "boot-sectors",
			Usage: "number of sectors reserved for the boot code and kernel",
			Value: 1,
		},
		&cli.UintFlag{
			Name:  "total-sectors",
			Usage: "size of the image in sectors; 0 for the smallest that fits",
		},
		&cli.PathFlag{
			Name:  "boot",
			Usage: "file holding the boot code, stored right after the header",
		},
		&cli.StringFlag{
			Name:  "signature",
			Usage: "volume signature to write",
			Value: string(tyfs.DefaultSignature[:]),
		},
		&cli.BoolFlag{
			Name:  "compress",
			Usage: "write a compressed image",
		},
	}
}
