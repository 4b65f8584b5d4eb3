// Command vfat32mount mounts a FAT32 volume image read-only over FUSE.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
	"github.com/dsoprea/go-logging"
	"github.com/spf13/cobra"

	"github.com/go-vfat/vfat32/debugfs"
	"github.com/go-vfat/vfat32/fatfs"
	"github.com/go-vfat/vfat32/fuseadapter"
	"github.com/go-vfat/vfat32/volume"
)

type flags struct {
	mountpoint string
	readOnly   bool
	allowOther bool
}

func defineMountCommand() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:          "vfat32mount <device>",
		Short:        "Mount a FAT32 volume image read-only over FUSE",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMount(args[0], f)
		},
	}

	cmd.Flags().StringVarP(&f.mountpoint, "mountpoint", "m", "", "directory to mount the volume at (required)")
	cmd.Flags().BoolVar(&f.readOnly, "readonly", true, "mount read-only (the only supported mode)")
	cmd.Flags().BoolVar(&f.allowOther, "allow-other", false, "allow other users to access the mount")
	_ = cmd.MarkFlagRequired("mountpoint")

	return cmd
}

func runMount(devicePath string, f *flags) error {
	file, err := os.Open(devicePath)
	if err != nil {
		return fmt.Errorf("opening device: %w", err)
	}
	defer file.Close()

	vol, err := volume.Open(file)
	if err != nil {
		return fmt.Errorf("opening volume: %w", err)
	}

	ops := fatfs.NewOperations(vol)
	ops.Debug = debugfs.New(vol, ops.MountTime)

	options := []fuse.MountOption{
		fuse.FSName("vfat32"),
		fuse.Subtype("vfat32"),
		fuse.ReadOnly(),
	}
	if f.allowOther {
		options = append(options, fuse.AllowOther())
	}

	conn, err := fuse.Mount(f.mountpoint, options...)
	if err != nil {
		return fmt.Errorf("mounting at %s: %w", f.mountpoint, err)
	}
	defer conn.Close()

	root := fuseadapter.New(ops)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- fusefs.Serve(conn, root)
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return err
	case <-sigc:
		return fuse.Unmount(f.mountpoint)
	}
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

	root := &cobra.Command{
		Use:   "vfat32mount",
		Short: "vfat32mount - mount a FAT32 volume image read-only over FUSE",
	}
	root.AddCommand(defineMountCommand())

	if err := root.Execute(); err != nil {
		log.PrintError(log.Wrap(err))
		os.Exit(1)
	}
}
