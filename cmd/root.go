/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "serterm",
	Short: "Serial terminal for emulated and real vintage machines",
	Long: `serterm connects your terminal to a serial line, typically one end of a
tty0tty null-modem pair whose other end is attached to an emulator.

Keystrokes go out on the line byte by byte and everything the remote sends is
shown as it arrives. In bot mode, lines starting with "@bot" are answered
automatically so a program on the remote side can be exercised unattended.

Settings come from flags, SERTERM_* environment variables and the config file
($HOME/.serterm.yaml by default), in that order of precedence.

Example usage:
  serterm connect
  serterm connect /dev/tnt0 --bot
  serterm send "Hello World"
  serterm watch ~/Retro68-build/ser_b.out`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(viper.GetViper(), cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.serterm.yaml)")
	rootCmd.PersistentFlags().StringP("device", "d", defaultDevice, "Serial device")
	rootCmd.PersistentFlags().IntP("baud", "b", defaultBaud, "Baud rate")
	rootCmd.PersistentFlags().String("charset", "raw", "Remote character set: raw, latin1, macroman")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-file", "", "Write logs to this file (default: none during a session, stderr otherwise)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	v := viper.GetViper()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
		v.SetConfigType("yaml")
		v.SetConfigName(".serterm")
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
			os.Exit(1)
		}
	}
}
