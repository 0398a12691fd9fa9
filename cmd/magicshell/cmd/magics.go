package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/magicshell/internal/app"
	"github.com/dshills/magicshell/internal/dispatcher/handlers/meta"
)

func newMagicsCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "magics [magic]",
		Short: "List the magics or show the help of one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(f.options(cmd))
			if err != nil {
				return err
			}
			defer a.Shutdown()

			d := a.Dispatcher()
			text := meta.Listing(d)
			if len(args) == 1 {
				kind, name := meta.SplitRef(args[0])
				text = d.Help(kind, name, 0)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
}
