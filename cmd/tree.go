package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adalundhe/drawer/core/drawer"
	"github.com/adalundhe/drawer/core/tree"
)

var treeDepth int

var treeCmd = &cobra.Command{
	Use:   "tree <path>",
	Short: "Print the directory tree once",
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

		controller.SetRootPath(args[0])
		if rootErr := controller.RootErr(); rootErr != nil {
			return rootErr
		}

		expandAll(controller, treeDepth)
		printRows(cmd, controller)
		return nil
	},
}

func init() {
	treeCmd.Flags().IntVar(&treeDepth, "depth", 0, "maximum depth to descend (0 = unlimited)")
	rootCmd.AddCommand(treeCmd)
}

// expandAll expands every directory row up to maxDepth. Expanding inserts
// children directly after the row, so a single forward pass performs a
// depth-first expansion.
func expandAll(controller *drawer.Controller, maxDepth int) {
	for row := 0; row < controller.RowCount(); row++ {
		item := controller.ItemAtRow(row)
		if item == nil {
			break
		}
		if maxDepth > 0 && item.Depth() >= maxDepth-1 {
			continue
		}
		controller.ExpandRow(row)
	}
}

// printRows renders the flattened tree to stdout.
func printRows(cmd *cobra.Command, controller *drawer.Controller) {
	count := controller.RowCount()
	for row := 0; row < count; row++ {
		item := controller.ItemAtRow(row)
		if item == nil {
			break
		}
		cmd.Println(renderRow(item))
	}
}

// renderRow formats one item for terminal output.
func renderRow(item *tree.Item) string {
	indent := strings.Repeat("  ", item.Depth())

	suffix := ""
	switch {
	case !item.IsReadable():
		suffix = " [inaccessible]"
	case item.IsSymlink():
		suffix = "@"
	case item.IsDir():
		suffix = "/"
	}

	return fmt.Sprintf("%s%s%s", indent, item.Name(), suffix)
}
