// cmd/ffslot/main.go
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/tamzrod/ffslot/internal/config"
	"github.com/tamzrod/ffslot/internal/fault"
)

type rootFlags struct {
	configPath string
	volumePath string
	logPath    string
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.SetPrefix("ffslot: ")

	var rf rootFlags

	root := &cobra.Command{
		Use:           "ffslot",
		Short:         "Floppy image slot navigator",
		Long:          "Browse, select and persist the current disk image on a removable volume",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if rf.logPath == "" {
				return nil
			}
			f, err := os.OpenFile(rf.logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("log file: %w", err)
			}
			log.SetOutput(f)
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&rf.configPath, "config", "c", "", "appliance config (YAML)")
	root.PersistentFlags().StringVar(&rf.volumePath, "volume", "", "volume path (overrides volume.path)")
	root.PersistentFlags().StringVar(&rf.logPath, "log", "", "append log output to this file")

	root.AddCommand(
		newRunCmd(&rf),
		newScanCmd(&rf),
		newShowCmd(&rf),
		newSelectCmd(&rf),
	)

	if err := root.Execute(); err != nil {
		code := errorCode(err)
		log.Printf("%s: %v", fault.Label(code), err)
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads, validates and normalizes the appliance config.
// Without a config file the defaults apply.
func loadConfig(rf *rootFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if rf.configPath != "" {
		if cfg, err = config.Load(rf.configPath); err != nil {
			return nil, fmt.Errorf("config load failed: %w", err)
		}
	} else {
		d := config.Defaults()
		cfg = &d
	}
	if rf.volumePath != "" {
		cfg.Volume.Path = rf.volumePath
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)
	return cfg, nil
}

// quietLog drops log output while a full-screen panel owns the terminal.
func quietLog(rf *rootFlags) {
	if rf.logPath == "" {
		log.SetOutput(io.Discard)
	}
}

// errorCode extracts a best-effort uint16 code from an error without assuming concrete types.
// If the error does not expose a code, returns 1 (generic error).
func errorCode(err error) uint16 {
	if err == nil {
		return 0
	}

	type coder interface{ Code() uint16 }

	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}
	return uint16(fault.CodeGeneric)
}
