package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/go-drift/imagepicker/internal/simulator"
	"github.com/go-drift/imagepicker/pkg/platform"
)

const keyBridgeVersion = "bridge_version"

func newVersionCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the CLI and bridge protocol versions",
		Long: `Print the CLI version and the bridge protocol it speaks. With
--bridge-version, also check whether a native bridge reporting that
version is new enough.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "imagepicker %s (built %s)\n", Version, BuildTime)
			fmt.Fprintf(out, "protocol: %s\n", platform.ProtocolVersion)
			fmt.Fprintf(out, "minimum bridge: %s\n", platform.MinBridgeVersion)

			bridgeVersion := v.GetString(keyBridgeVersion)
			if bridgeVersion == "" {
				return nil
			}
			platform.SetNativeBridge(simulator.New(simulator.Script{Version: bridgeVersion}, nil))
			defer platform.SetNativeBridge(nil)
			if err := platform.RequireBridgeVersion(platform.MinBridgeVersion); err != nil {
				return err
			}
			fmt.Fprintf(out, "bridge %s: supported\n", bridgeVersion)
			return nil
		},
	}
	cmd.Flags().String("bridge-version", "", "check a bridge reporting this version")
	_ = v.BindPFlag(keyBridgeVersion, cmd.Flags().Lookup("bridge-version"))
	return cmd
}
