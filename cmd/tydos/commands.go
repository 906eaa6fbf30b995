package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dargueta/tydos/bios"
	"github.com/dargueta/tydos/disks"
	c "github.com/dargueta/tydos/file_systems/common"
	"github.com/dargueta/tydos/file_systems/common/blockcache"
	"github.com/dargueta/tydos/file_systems/tyfs"
	"github.com/dargueta/tydos/kernel"
	"github.com/dargueta/tydos/memory"
	"github.com/dargueta/tydos/utilities/imagefile"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/urfave/cli/v2"
	"github.com/xaionaro-go/bytesextra"
)

// hostFiles is rooted at "/", so every path handed to it must be absolute.
var hostFiles = osfs.New("/")

func readHostFile(path string) ([]byte, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return util.ReadFile(hostFiles, absPath)
}

func loadImage(path string) ([]byte, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return imagefile.Load(hostFiles, absPath)
}

func saveImage(path string, image []byte, compress bool) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	return imagefile.Save(hostFiles, absPath, image, compress)
}

// session is a kernel booted from an image file given on the command line.
type session struct {
	kernel  *kernel.Kernel
	machine *hostMachine
	console *bios.Console
}

func openSession(ctx *cli.Context) (*session, error) {
	if ctx.NArg() != 1 {
		return nil, cli.Exit("expected exactly one image file", 1)
	}

	cfg, err := configFromFlags(ctx)
	if err != nil {
		return nil, err
	}

	image, err := loadImage(ctx.Args().First())
	if err != nil {
		return nil, err
	}

	geometry, err := disks.GetPredefinedDiskGeometry(cfg.Drive)
	if err != nil {
		return nil, err
	}

	logger := slog.Default()
	mem := memory.New(cfg.MemorySize)
	cache := blockcache.WrapStream(
		bytesextra.NewReadWriteSeeker(image),
		c.BytesPerSector,
		uint(len(image))/c.BytesPerSector,
	)
	disk, err := bios.NewDisk(cache, geometry, mem, logger)
	if err != nil {
		return nil, err
	}

	console := bios.NewConsole(os.Stdin, os.Stdout)
	machine := &hostMachine{mem: mem, output: os.Stdout}

	k, err := kernel.New(cfg, mem, disk, console, machine, logger)
	if err != nil {
		kernel.Panic(console, machine, "boot", err)
		return nil, err
	}
	machine.programSize = uint(k.Header().MaxFileSize) * c.BytesPerSector

	return &session{kernel: k, machine: machine, console: console}, nil
}

func bootImage(ctx *cli.Context) error {
	s, err := openSession(ctx)
	if err != nil {
		return err
	}

	err = s.machine.run(s.kernel.Run)
	if err != nil {
		return err
	}
	return s.console.Err()
}

func listImage(ctx *cli.Context) error {
	s, err := openSession(ctx)
	if err != nil {
		return err
	}

	listing, err := s.kernel.Walker().List()
	if err != nil {
		return err
	}
	entries, err := listing.All()
	if err != nil {
		return err
	}

	for _, entry := range entries {
		fmt.Printf("%3d  %s\n", entry.Index, entry.Name)
	}
	return nil
}

func showImageInfo(ctx *cli.Context) error {
	s, err := openSession(ctx)
	if err != nil {
		return err
	}

	s.kernel.Shell().Execute("info")
	layout := s.kernel.Layout()
	fmt.Printf("Kernel image:   %s\n", layout.Kernel)
	fmt.Printf("Scratch:        %s\n", layout.Scratch)

	listing, err := s.kernel.Walker().List()
	if err != nil {
		return err
	}
	entries, err := listing.All()
	if err != nil {
		return err
	}

	for _, entry := range entries {
		placement, err := s.kernel.Loader().Locate(entry.Name)
		if err != nil {
			fmt.Printf("%3d  %-32s  %s\n", entry.Index, entry.Name, err)
			continue
		}
		fmt.Printf(
			"%3d  %-32s  sectors %d-%d -> %s\n",
			entry.Index,
			entry.Name,
			placement.Sector,
			placement.Sector+placement.Count-1,
			placement.Destination,
		)
	}
	return s.console.Err()
}

func makeImage(ctx *cli.Context) error {
	signature, err := parseSignature(ctx.String("signature"))
	if err != nil {
		return err
	}

	opts := tyfs.FormatOptions{
		Signature:    signature,
		BootSectors:  ctx.Uint("boot-sectors"),
		FileEntries:  ctx.Uint("entries"),
		MaxFileSize:  ctx.Uint("max-file-size"),
		TotalSectors: ctx.Uint("total-sectors"),
	}

	if ctx.IsSet("boot") {
		opts.BootCode, err = readHostFile(ctx.Path("boot"))
		if err != nil {
			return err
		}
	}

	programs := make([]tyfs.Program, 0, ctx.NArg())
	for _, path := range ctx.Args().Slice() {
		data, err := readHostFile(path)
		if err != nil {
			return err
		}
		programs = append(programs, tyfs.Program{Name: filepath.Base(path), Data: data})
	}

	image, err := tyfs.Format(opts, programs)
	if err != nil {
		return err
	}

	output := ctx.Path("output")
	err = saveImage(output, image, ctx.Bool("compress"))
	if err != nil {
		return err
	}

	slog.Info(
		"created image",
		slog.String("path", output),
		slog.Int("programs", len(programs)),
		slog.Int("sectors", len(image)/c.BytesPerSector),
	)
	return nil
}

func expandImage(ctx *cli.Context) error {
	if ctx.NArg() != 2 {
		return cli.Exit("expected an input file and an output file", 1)
	}

	image, err := loadImage(ctx.Args().Get(0))
	if err != nil {
		return err
	}
	err = saveImage(ctx.Args().Get(1), image, false)
	if err != nil {
		return err
	}

	fmt.Printf("Expanded image to %d bytes.\n", len(image))
	return nil
}
