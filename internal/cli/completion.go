package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/motifscope/pkg/pipeline"
	"github.com/matzehuels/motifscope/pkg/provider"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for motifscope.

Besides commands and flags, the scripts complete --format and --palette
values, the "clustering" ordering, and --dataset names from the bundle
directory given with --data.

Bash:
  $ source <(motifscope completion bash)

Zsh:
  $ motifscope completion zsh > "${fpath[1]}/_motifscope"

Fish:
  $ motifscope completion fish > ~/.config/fish/completions/motifscope.fish

PowerShell:
  PS> motifscope completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(w, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}
			return fmt.Errorf("unsupported shell %q", args[0])
		},
	}
}

// registerCompletions attaches value completions to the flags of root and
// its subcommands.
func (c *CLI) registerCompletions(root *cobra.Command) {
	_ = root.RegisterFlagCompletionFunc("dataset", c.completeDatasets)

	for _, cmd := range root.Commands() {
		fl := cmd.Flags()
		if cmd.Name() == "render" {
			_ = cmd.RegisterFlagCompletionFunc("format", completeList(sortedKeys(pipeline.ValidFormats)))
		}
		for _, name := range []string{"palette", "panel-palette"} {
			if fl.Lookup(name) != nil {
				_ = cmd.RegisterFlagCompletionFunc(name, fixedValues(sortedKeys(pipeline.ValidPalettes), cobra.ShellCompDirectiveNoFileComp))
			}
		}
		for _, name := range []string{"order", "gdv-order"} {
			if fl.Lookup(name) != nil {
				_ = cmd.RegisterFlagCompletionFunc(name, fixedValues([]string{provider.ClusterOrdering + ",", provider.NoOrdering + ","},
					cobra.ShellCompDirectiveNoFileComp|cobra.ShellCompDirectiveNoSpace))
			}
		}
	}
}

// completeDatasets lists the bundle files in the --data directory.
func (c *CLI) completeDatasets(cmd *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	dir := c.flags.data
	if dir == "" {
		dir = c.cfg.Provider.Path
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" && strings.HasPrefix(e.Name(), toComplete) {
			names = append(names, e.Name())
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

func fixedValues(values []string, d cobra.ShellCompDirective) cobra.CompletionFunc {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, d
	}
}

// completeList completes comma-separated values, offering only those not
// yet in the list.
func completeList(values []string) cobra.CompletionFunc {
	return func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		prefix, last := "", toComplete
		if i := strings.LastIndex(toComplete, ","); i >= 0 {
			prefix, last = toComplete[:i+1], toComplete[i+1:]
		}
		used := strings.Split(prefix, ",")
		var matches []string
		for _, v := range values {
			if strings.HasPrefix(v, last) && !slices.Contains(used, v) {
				matches = append(matches, prefix+v)
			}
		}
		return matches, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
	}
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
