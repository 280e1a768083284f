package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "praefixum",
		Short: "Generate deterministic unique-ID constants for C# parameters",
		Long: `Praefixum scans C# sources for parameters annotated with [UniqueId],
derives a stable identifier for each one from its location, and writes one
generated partial type per owning declaration with the identifiers as
string constants.

Output is written to Generated/ by default and can be checked in.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default praefixum.yaml and .praefixumignore",
		RunE:  RunInit,
	}
	initCmd.Flags().Bool("force", false, "Overwrite an existing praefixum.yaml")

	generateCmd := &cobra.Command{
		Use:   "generate [path]",
		Short: "Generate or regenerate the unique-ID units",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunGenerate,
	}
	addSettingsFlags(generateCmd)
	generateCmd.Flags().String("feed", "", "Read parameter occurrences from a JSON lines file instead of scanning")
	generateCmd.Flags().Bool("json", false, "Print machine-readable run summary")

	checkCmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Fail when generated units are missing, stale or orphaned",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunCheck,
	}
	addSettingsFlags(checkCmd)
	checkCmd.Flags().Bool("json", false, "Print machine-readable check output")

	statusCmd := &cobra.Command{
		Use:   "status [path]",
		Short: "Show source files changed since the last generate",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunStatus,
	}
	addSettingsFlags(statusCmd)
	statusCmd.Flags().Bool("json", false, "Print machine-readable status output")

	listCmd := &cobra.Command{
		Use:   "list [path]",
		Short: "Print every annotated parameter and its identifier as JSON lines",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunList,
	}
	addSettingsFlags(listCmd)

	idCmd := &cobra.Command{
		Use:   "id",
		Short: "Compute the identifier for one parameter location",
		Args:  cobra.NoArgs,
		RunE:  RunID,
	}
	idCmd.Flags().String("path", "", "Source path as it appears in the fingerprint (root-relative, slash-separated)")
	idCmd.Flags().String("member", "", "Member name")
	idCmd.Flags().String("param", "", "Parameter name")
	idCmd.Flags().Int("line", 0, "Zero-based line of the parameter")
	idCmd.Flags().Int("column", 0, "Zero-based column of the parameter")
	idCmd.Flags().String("format", "", "Identifier format: hex16|hex32|uuid|hex8|htmlid (default from praefixum.yaml)")
	_ = idCmd.MarkFlagRequired("member")
	_ = idCmd.MarkFlagRequired("param")

	watchCmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Regenerate whenever C# sources change",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunWatch,
	}
	addSettingsFlags(watchCmd)
	watchCmd.Flags().Duration("debounce", 0, "Quiet period before regenerating (default 300ms)")

	attributeCmd := &cobra.Command{
		Use:   "attribute",
		Short: "Print the UniqueIdAttribute source to add to a project",
		Args:  cobra.NoArgs,
		RunE:  RunAttribute,
	}
	attributeCmd.Flags().String("namespace", "", "Namespace of the attribute (default from praefixum.yaml)")
	attributeCmd.Flags().StringP("out", "o", "", "Write to a file instead of stdout")

	installHookCmd := &cobra.Command{
		Use:   "install-hook",
		Short: "Install git pre-commit hook that runs praefixum check",
		RunE:  RunInstallHook,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "praefixum %s\n", version)
		},
	}

	rootCmd.AddCommand(
		initCmd,
		generateCmd,
		checkCmd,
		statusCmd,
		listCmd,
		idCmd,
		watchCmd,
		attributeCmd,
		installHookCmd,
		versionCmd,
	)

	return rootCmd
}

// addSettingsFlags registers the flags that override praefixum.yaml.
func addSettingsFlags(cmd *cobra.Command) {
	cmd.Flags().String("output", "", "Output directory for generated units (default from praefixum.yaml)")
	cmd.Flags().String("namespace", "", "Namespace of the UniqueId attribute")
	cmd.Flags().String("duplicates", "", "Duplicate policy: error|last-wins")
	cmd.Flags().Int("workers", 0, "Parallel fingerprinting workers (0: one per CPU)")
}
