package cmd

import (
	"fmt"

	"github.com/DevSymphony/symkt/internal/linter"
	"github.com/DevSymphony/symkt/internal/ui"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

var (
	explainTool string
	explainOpen bool
)

var explainCmd = &cobra.Command{
	Use:   "explain <rule>",
	Short: "Show the documentation link of a rule",
	Long: `Print where a detekt or ktlint rule is documented. Rule ids are accepted
as reported, e.g. "MagicNumber" or "standard:no-semi".`,
	Example: `  symkt explain MagicNumber --tool detekt
  symkt explain standard:no-semi --open`,
	Args: cobra.ExactArgs(1),
	RunE: runExplain,
}

func init() {
	rootCmd.AddCommand(explainCmd)

	explainCmd.Flags().StringVarP(&explainTool, "tool", "t", "", "tool that reported the rule")
	explainCmd.Flags().BoolVarP(&explainOpen, "open", "o", false, "open the documentation in a browser")
}

func runExplain(cmd *cobra.Command, args []string) error {
	links, err := ruleLinks(linter.Global(), args[0], explainTool)
	if err != nil {
		return err
	}
	if len(links) == 0 {
		return fmt.Errorf("no documentation found for rule %s", args[0])
	}

	for _, link := range links {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", link.tool, link.url)
	}

	if explainOpen {
		// Only the first link is opened when several tools know the rule.
		if err := browser.OpenURL(links[0].url); err != nil {
			ui.PrintWarn(fmt.Sprintf("Failed to open browser: %v", err))
			fmt.Println(ui.Indent(links[0].url))
		}
	}
	return nil
}

type ruleLink struct {
	tool string
	url  string
}

// ruleLinks asks tool, or every registered tool, for the rule's documentation.
func ruleLinks(reg *linter.Registry, rule, tool string) ([]ruleLink, error) {
	tools := reg.GetAllToolNames()
	if tool != "" {
		tools = []string{tool}
	}

	var links []ruleLink
	for _, name := range tools {
		l, err := reg.GetLinter(name)
		if err != nil {
			return nil, err
		}
		doc, ok := l.(linter.Documenter)
		if !ok {
			continue
		}
		if url := doc.RuleURL(rule); url != "" {
			links = append(links, ruleLink{tool: name, url: url})
		}
	}
	return links, nil
}
