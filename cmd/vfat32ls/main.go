// Command vfat32ls walks a FAT32 volume image without mounting it,
// printing each entry's path and size, plus its start cluster when
// --show-cluster is given. It is a
// diagnostic companion to vfat32mount, built on the same afero.Fs
// adapter the core exposes for non-FUSE consumers.
package main

import (
	"fmt"
	"os"

	"github.com/dsoprea/go-logging"
	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/go-vfat/vfat32/fatfs"
	"github.com/go-vfat/vfat32/vfatfs"
)

func defineRootCommand() *cobra.Command {
	var showXattr bool

	cmd := &cobra.Command{
		Use:          "vfat32ls <device>",
		Short:        "List the contents of a FAT32 volume image",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], showXattr)
		},
	}

	cmd.Flags().BoolVar(&showXattr, "show-cluster", false, "print each entry's start cluster")
	return cmd
}

func run(devicePath string, showXattr bool) error {
	file, err := os.Open(devicePath)
	if err != nil {
		return fmt.Errorf("opening device: %w", err)
	}
	defer file.Close()

	fs, err := vfatfs.New(file)
	if err != nil {
		return fmt.Errorf("opening volume: %w", err)
	}

	return afero.Walk(fs, "/", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		kind := "-"
		if info.IsDir() {
			kind = "d"
		}

		if showXattr {
			stat := info.Sys().(fatfs.Stat)
			fmt.Printf("%s %10s  cluster=%-10d %s\n", kind, humanize.Bytes(uint64(info.Size())), stat.Cluster(), path)
			return nil
		}

		fmt.Printf("%s %10s  %s\n", kind, humanize.Bytes(uint64(info.Size())), path)
		return nil
	})
}

func main() {
	defer func() {
		if state := recover(); state != nil {
			err, ok := state.(error)
			if !ok {
				err = fmt.Errorf("%v", state)
			}
			log.PrintError(log.Wrap(err))
			os.Exit(1)
		}
	}()

	if err := defineRootCommand().Execute(); err != nil {
		log.PrintError(log.Wrap(err))
		os.Exit(1)
	}
}
