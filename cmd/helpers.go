package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/dbmint/dbmint/internal/config"
)

// describeResolution prints an environment's effective settings and the
// layers they were assembled from.
func describeResolution(w io.Writer, resolved *config.ResolvedEnvironment) {
	fmt.Fprintf(w, "Environment: %s\n", resolved.Name)
	fmt.Fprintf(w, "Host:        %s\n", resolved.Host)
	fmt.Fprintf(w, "Admin user:  %s\n", resolved.AdminUser)
	if resolved.ContainerName != "" {
		fmt.Fprintf(w, "Container:   %s\n", resolved.ContainerName)
	}
	if resolved.NeedsPassword {
		fmt.Fprintf(w, "Admin pass:  (not configured; interactive runs will prompt)\n")
	} else {
		fmt.Fprintf(w, "Admin pass:  (configured)\n")
	}

	var sources []string
	if resolved.FromConfig {
		sources = append(sources, "dbmint.toml")
	}
	if resolved.FromDotenv {
		sources = append(sources, fmt.Sprintf(".env.%s", resolved.Name))
	}
	sources = append(sources, "process environment", "defaults")
	fmt.Fprintf(w, "Sources:     %s\n", strings.Join(sources, ", "))
}

// printConfigHint prints a pointer to init when no dbmint.toml was found.
func printConfigHint(w io.Writer, cfg *config.Config) {
	if cfg.ConfigFilePath != "" {
		return
	}
	fmt.Fprintln(w, `No dbmint.toml found; using environment variables and defaults.
Run 'dbmint init' to create one.`)
}
