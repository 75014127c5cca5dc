package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tav/pkg/integrations/registries"
	"github.com/matzehuels/tav/pkg/resolve"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for tav. Besides subcommands, the
scripts complete --registry and --versions values and test folders.

To load completions:

Bash:
  $ source <(tav completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ tav completion bash > /etc/bash_completion.d/tav
  # macOS:
  $ tav completion bash > $(brew --prefix)/etc/bash_completion.d/tav

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ tav completion zsh > "${fpath[1]}/_tav"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ tav completion fish | source

  # To load completions for each session, execute once:
  $ tav completion fish > ~/.config/fish/completions/tav.fish

PowerShell:
  PS> tav completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> tav completion powershell > tav.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}

// registerCompletions completes registry names, version modes and folder
// arguments for the commands that resolve packages.
func registerCompletions(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("registry", fixedCompletion(registries.Names()...))
	_ = cmd.RegisterFlagCompletionFunc("versions", fixedCompletion(
		string(resolve.ModeAll), string(resolve.ModePatch), string(resolve.ModeMinor), string(resolve.ModeMajor)))
	cmd.ValidArgsFunction = func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return nil, cobra.ShellCompDirectiveFilterDirs
	}
}

func fixedCompletion(values ...string) cobra.CompletionFunc {
	return func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var out []string
		for _, v := range values {
			if strings.HasPrefix(v, toComplete) {
				out = append(out, v)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}
