package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"jslice/internal/config"
	jerrors "jslice/internal/errors"
	"jslice/internal/paths"
)

var (
	configFormat string
	configForce  bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage jslice configuration",
	Long:  "View and manage jslice configuration stored in .jslice/config.json",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Display the configuration after defaults, .jslice/config.json and
JSLICE_* environment overrides are applied.

Examples:
  jslice config show               # key = value listing
  jslice config show --format json # raw JSON output`,
	Run: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration",
	Run:   runConfigInit,
}

func init() {
	configShowCmd.Flags().StringVar(&configFormat, "format", "human", "Output format (json, human)")
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) {
	format := OutputFormat(configFormat)
	wd := mustGetWorkingDir()
	cfg, err := loadConfig(wd)
	if err != nil {
		exitWithError(err, format)
	}
	if format == FormatJSON {
		printResponse(cfg, format)
		return
	}

	flat, err := flattenConfig(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting config: %v\n", err)
		os.Exit(1)
	}
	source := paths.ConfigPath(wd)
	if _, err := os.Stat(source); err != nil {
		source = "defaults"
	}
	fmt.Println("jslice configuration (" + source + ")")
	fmt.Println(strings.Repeat("─", 50))
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%-28s %s\n", k, flat[k])
	}
}

// flattenConfig spells cfg as dotted keys, the names JSLICE_* overrides
// use.
func flattenConfig(cfg *config.Config) (map[string]string, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var tree map[string]interface{}
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	out := make(map[string]string)
	var walk func(prefix string, v interface{})
	walk = func(prefix string, v interface{}) {
		switch val := v.(type) {
		case map[string]interface{}:
			for k, child := range val {
				key := k
				if prefix != "" {
					key = prefix + "." + k
				}
				walk(key, child)
			}
		case []interface{}:
			parts := make([]string, len(val))
			for i, p := range val {
				parts[i] = fmt.Sprint(p)
			}
			out[prefix] = "[" + strings.Join(parts, ", ") + "]"
		default:
			out[prefix] = fmt.Sprint(val)
		}
	}
	walk("", tree)
	return out, nil
}

func runConfigInit(cmd *cobra.Command, args []string) {
	wd := mustGetWorkingDir()
	path := paths.ConfigPath(wd)
	if _, err := os.Stat(path); err == nil && !configForce {
		exitWithError(jerrors.Newf(jerrors.ConfigInvalid, "%s already exists, use --force to overwrite", path), FormatHuman)
	}
	if err := config.DefaultConfig().Save(wd); err != nil {
		exitWithError(jerrors.New(jerrors.ConfigInvalid, "failed to write config", err), FormatHuman)
	}
	fmt.Printf("Wrote %s\n", path)
}
