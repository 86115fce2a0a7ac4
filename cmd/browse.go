package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/adalundhe/drawer/core/drawer"
	"github.com/adalundhe/drawer/core/tree"
)

var browseCmd = &cobra.Command{
	Use:   "browse <path>",
	Short: "Browse a directory with live updates until interrupted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		controller, err := drawer.New(drawer.Options{Config: cfg, Logger: newLogger()})
		if err != nil {
			return err
		}

		id := controller.AddListener(drawer.ListenerFuncs{
			OnTreeChanged: func() {
				printRows(cmd, controller)
			},
			OnSubtreeChanged: func(item *tree.Item) {
				cmd.Printf("-- changed: %s\n", item.Path())
				printRows(cmd, controller)
			},
		})
		defer controller.RemoveListener(id)

		controller.SetRootPath(args[0])
		if rootErr := controller.RootErr(); rootErr != nil {
			return rootErr
		}

		controller.Open()
		defer controller.Close()

		if !controller.LiveUpdates() {
			cmd.PrintErrln("warning: live updates unavailable, tree may go stale")
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
