/*
Copyright © 2019 the InMAP authors.
This file is part of InMAP.

InMAP is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

InMAP is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with InMAP.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package cmd holds the decomp command-line interface.
package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment variables that set options.
const EnvPrefix = "DECOMP"

// NewRootCommand returns the decomp command tree. Command output goes to
// stdout and log messages to stderr.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	log := logrus.New()
	log.Out = stderr
	var level string

	rc := &cobra.Command{
		Use:   "decomp",
		Short: "Split meshes into sub-domains and build their ghost zones.",
		Long: `decomp partitions structured grids into rectangular sub-grids and an
unstructured remainder, marks nested-patch ghost cells, and builds the
cells exchanged across shared boundaries of unstructured domains.

Options can be set with flags, with environment variables named
` + EnvPrefix + `_<FLAG> (dashes replaced by underscores), or in a TOML
configuration file given by --config.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setAllConfig(viper.New(), cmd.Flags()); err != nil {
				return err
			}
			lvl, err := logrus.ParseLevel(level)
			if err != nil {
				return err
			}
			log.SetLevel(lvl)
			return nil
		},
	}
	rc.PersistentFlags().StringP("config", "c", "", "Configuration file to read from.")
	rc.PersistentFlags().StringVar(&level, "log-level", "info", "Log level (debug, info, warn, error).")

	rc.AddCommand(newChunkCommand(stdout, log))
	rc.AddCommand(newNestCommand(stdout, log))
	rc.AddCommand(newBoundaryCommand(stdout, log))

	rc.SetOutput(stderr)
	return rc
}

// setAllConfig applies, in decreasing priority, command line flags,
// environment variables and the configuration file to every flag in
// flags.
func setAllConfig(v *viper.Viper, flags *pflag.FlagSet) error {
	if err := v.BindPFlags(flags); err != nil {
		return err
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if c := v.GetString("config"); c != "" {
		v.SetConfigFile(c)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading configuration file '%s': %v", c, err)
		}
		valid := make(map[string]bool)
		flags.VisitAll(func(f *pflag.Flag) { valid[f.Name] = true })
		for _, key := range v.AllKeys() {
			if !valid[key] {
				return fmt.Errorf("invalid option in configuration file: %v", key)
			}
		}
	}

	var flagErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if flagErr != nil || f.Changed {
			return
		}
		flagErr = f.Value.Set(v.GetString(f.Name))
	})
	return flagErr
}
