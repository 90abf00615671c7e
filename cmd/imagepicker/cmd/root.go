// Package cmd implements the imagepicker CLI commands.
//
// The root command carries the project directory and verbosity flags; the
// simulate subcommand drives the picker against a scripted device and the
// version subcommand reports the bridge protocol.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/go-drift/imagepicker/internal/config"
	"github.com/go-drift/imagepicker/pkg/errors"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

const envPrefix = "IMAGEPICKER"

type rootFlags struct {
	dir     string
	verbose bool
}

// NewRootCmd creates the top-level command with every subcommand registered.
// Each call gets its own viper instance, so tests can build fresh trees.
func NewRootCmd() *cobra.Command {
	var flags rootFlags
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "imagepicker",
		Short: "Camera and photo library picker for drift apps",
		Long: `imagepicker asks for camera and photo library access, lets the user
choose a source and returns the picked image.

The CLI plays the whole flow against a scripted device, reading button
and prompt text from imagepicker.yaml in the project directory.`,
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			errors.SetHandler(&errors.LogHandler{Verbose: flags.verbose, Out: cmd.ErrOrStderr()})
			return readConfigFile(v, flags.dir)
		},
	}

	root.PersistentFlags().StringVar(&flags.dir, "dir", ".", "project directory holding imagepicker.yaml")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "report errors with details")

	root.AddCommand(newSimulateCmd(v, &flags))
	root.AddCommand(newVersionCmd(v))
	return root
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

// readConfigFile lets imagepicker.yaml supply simulate settings. A missing
// file is not an error.
func readConfigFile(v *viper.Viper, dir string) error {
	root, err := config.FindProjectRoot(dir)
	if err != nil {
		return err
	}
	path := filepath.Join(root, config.FileName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", config.FileName, err)
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}
