package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

type envSection struct {
	title string
	flags []string
}

var envSections = []envSection{
	{"HTTP Server Configuration", []string{"server-host", "server-port"}},
	{"Logging Configuration", []string{"log-level", "log-format"}},
	{"Search Configuration", []string{"search-api-key", "search-base-url", "search-timeout-secs"}},
	{"Stream Resolution Configuration", []string{"resolver-strategies", "resolver-timeout-secs", "resolver-rate-per-minute"}},
	{"Playlist Configuration", []string{"playlist-ttl-mins", "playlist-max"}},
	{"Client Configuration", []string{"api-url"}},
}

func generateEnvExample(cmd *cobra.Command) error {
	fmt.Println("Generating .env.example file from current configuration...")

	content := generateEnvExampleContent(cmd)

	if err := os.WriteFile(".env.example", []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write .env.example: %w", err)
	}

	fmt.Println("Successfully generated .env.example file")
	return nil
}

func generateEnvExampleContent(cmd *cobra.Command) string {
	var content strings.Builder

	content.WriteString("# =============================================================================\n")
	content.WriteString("# SoundBex Configuration\n")
	content.WriteString("# =============================================================================\n")
	content.WriteString("#\n")
	content.WriteString("# Copy this file to .env and update with your values\n")
	content.WriteString("# All environment variables have CLI flag equivalents (use --help to see them)\n")
	content.WriteString("#\n")
	fmt.Fprintf(&content, "# Format: %s_<SECTION>_<SETTING>=value\n", envPrefix)
	content.WriteString("# CLI equivalent: --<section>-<setting>\n")
	content.WriteString("#\n\n")

	for _, section := range envSections {
		generateSection(&content, cmd, section)
	}

	return content.String()
}

func generateSection(content *strings.Builder, cmd *cobra.Command, section envSection) {
	content.WriteString("# -----------------------------------------------------------------------------\n")
	fmt.Fprintf(content, "# %s\n", section.title)
	content.WriteString("# -----------------------------------------------------------------------------\n")

	for _, name := range section.flags {
		f := cmd.Root().PersistentFlags().Lookup(name)
		if f == nil {
			continue
		}
		fmt.Fprintf(content, "# %s (CLI: --%s)\n", f.Usage, name)
		fmt.Fprintf(content, "%s=%s\n", flagToEnvVar(name), envDefault(f.DefValue))
	}
	content.WriteString("\n")
}

// envDefault renders pflag's "[a,b]" slice defaults as a plain comma separated list.
func envDefault(value string) string {
	return strings.TrimSuffix(strings.TrimPrefix(value, "["), "]")
}

func flagToEnvVar(flagName string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}
