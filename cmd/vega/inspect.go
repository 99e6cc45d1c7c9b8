package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/1broseidon/vega/internal/config"
	"github.com/1broseidon/vega/internal/ipc"
	"github.com/1broseidon/vega/internal/state"
	"github.com/1broseidon/vega/internal/tui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	formatAuto = "auto"
	formatJSON = "json"
	formatYAML = "yaml"
)

// resolveFormat picks YAML for terminals and JSON for pipes unless the user
// chose explicitly.
func resolveFormat(flag string, w io.Writer) (string, error) {
	switch flag {
	case "", formatAuto:
		if isTerminal(w) {
			return formatYAML, nil
		}
		return formatJSON, nil
	case formatJSON, formatYAML:
		return flag, nil
	default:
		return "", usageError{fmt.Errorf("invalid --format %q (want auto, json or yaml)", flag)}
	}
}

func writeStructured(w io.Writer, format string, v any) error {
	if format == formatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

func newStateCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Print the persisted layout and window order",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			f, err := resolveFormat(format, out)
			if err != nil {
				return err
			}
			if err := a.setup(cmd); err != nil {
				return err
			}
			path, err := a.statePath()
			if err != nil {
				return err
			}

			doc, err := state.NewStore(path, a.logger).Load().Document()
			if err != nil {
				return err
			}
			return writeStructured(out, f, doc)
		},
	}
	cmd.Flags().StringVar(&format, "format", formatAuto, "output format: auto, json or yaml")
	return cmd
}

type displayEntry struct {
	ID     int    `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	X      int    `json:"x" yaml:"x"`
	Y      int    `json:"y" yaml:"y"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
	Main   bool   `json:"main" yaml:"main"`
}

func newDisplaysCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "displays",
		Short: "List the attached displays and their bounds",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			f, err := resolveFormat(format, out)
			if err != nil {
				return err
			}
			if err := a.setup(cmd); err != nil {
				return err
			}

			provider, err := a.openProvider(a.providerOptions())
			if err != nil {
				return err
			}
			defer provider.Close()

			displays, err := provider.Displays()
			if err != nil {
				return err
			}
			entries := make([]displayEntry, 0, len(displays))
			for _, d := range displays {
				entries = append(entries, displayEntry{
					ID:     d.ID,
					Name:   d.Name,
					X:      d.Bounds.X,
					Y:      d.Bounds.Y,
					Width:  d.Bounds.Width,
					Height: d.Bounds.Height,
					Main:   d.Main,
				})
			}
			return writeStructured(out, f, entries)
		},
	}
	cmd.Flags().StringVar(&format, "format", formatAuto, "output format: auto, json or yaml")
	return cmd
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "print",
		Short: "Print the effective configuration as YAML",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			data, err := config.Marshal(a.cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "edit",
		Short: "Edit the configuration interactively",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			path, err := a.resolvedConfigPath()
			if err != nil {
				return err
			}
			saved, err := tui.Edit(a.cfg, path, os.Stdin, os.Stdout)
			if err != nil {
				return err
			}
			if saved {
				a.logger.Info("configuration saved", "file", path)
			}
			return nil
		},
	})
	return cmd
}

func newStatusCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Query the running daemon",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			f, err := resolveFormat(format, out)
			if err != nil {
				return err
			}
			path, err := a.socketPath()
			if err != nil {
				return err
			}
			status, err := ipc.NewClient(path).GetStatus()
			if err != nil {
				return err
			}
			return writeStructured(out, f, status)
		},
	}
	cmd.Flags().StringVar(&format, "format", formatAuto, "output format: auto, json or yaml")
	return cmd
}
