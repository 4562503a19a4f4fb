package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kayz/osprey/internal/classify"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <query>",
	Short: "Show how a query would be classified",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		for _, tag := range classify.Classify(args[0]) {
			fmt.Println(tag)
		}
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
