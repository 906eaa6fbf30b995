package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.App{
		Name:   "tydos",
		Usage:  "Build, inspect, and boot TyDOS disk images",
		Flags:  globalFlags(),
		Before: configureLogging,
		Commands: []*cli.Command{
			{
				Name:      "boot",
				Usage:     "Boot an image and run the shell on this terminal",
				Action:    bootImage,
				ArgsUsage: "IMAGE",
				Flags:     kernelFlags(),
			},
			{
				Name:      "list",
				Usage:     "List the programs in an image",
				Action:    listImage,
				ArgsUsage: "IMAGE",
				Flags:     kernelFlags(),
			},
			{
				Name:      "info",
				Usage:     "Show the layout of an image and where each program loads",
				Action:    showImageInfo,
				ArgsUsage: "IMAGE",
				Flags:     kernelFlags(),
			},
			{
				Name:      "mkimage",
				Usage:     "Create an image from a set of programs",
				Action:    makeImage,
				ArgsUsage: "[PROGRAM_FILE ...]",
				Flags:     mkimageFlags(),
			},
			{
				Name:      "expand",
				Usage:     "Decompress a compressed image",
				Action:    expandImage,
				ArgsUsage: "INPUT_FILE OUTPUT_FILE",
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}
