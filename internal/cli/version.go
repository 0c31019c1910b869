package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/macropower/synckit/internal/version"
)

func GetVersionString() string {
	return fmt.Sprintf("%s+%s", version.Version, version.Revision)
}

// NewVersionCmd returns the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version of the syncbench CLI",
		Run: func(cc *cobra.Command, _ []string) {
			cc.Println(GetVersionString())
		},
	}
}
