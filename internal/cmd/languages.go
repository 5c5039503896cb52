package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/nymphium/graft/internal/languages"
)

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported languages and their labels",
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range languages.Names() {
				cmd.Printf("%-16s %s\n", name, strings.Join(languages.Labels(name), ", "))
			}
		},
	}
}
