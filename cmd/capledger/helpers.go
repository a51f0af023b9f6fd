// Shared helpers for capledger subcommands: ledger opening and output
// formatting.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mesh-intelligence/capledger/pkg/capledger"
	"github.com/mesh-intelligence/capledger/pkg/types"
)

// openLedger assembles the ledger from the resolved configuration. The
// caller must Close it.
func openLedger() (*capledger.Ledger, error) {
	configDir, err := resolveConfigDir()
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return nil, err
	}
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, err
	}

	return capledger.Open(types.Config{
		Backend: cfg.GetString(cfgKeyBackend),
		DataDir: dataDir,
	}, nil)
}

// printResult renders v as indented JSON when --json is set, otherwise
// via the text fallback.
func printResult(v any, text func()) error {
	if flagJSON {
		raw, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(raw))
		return nil
	}
	text()
	return nil
}

// parseMetadata splits repeated key=value flag values into a map.
func parseMetadata(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	meta := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid metadata %q, want key=value", pair)
		}
		meta[key] = value
	}
	return meta, nil
}

// warnOnWarnings prints non-blocking rule warnings to stderr.
func warnOnWarnings(result types.ValidationResult) {
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s: %s\n", w.Rule, w.Message)
	}
}
