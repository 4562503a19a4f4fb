package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kayz/osprey/internal/classify"
)

var servicesCmd = &cobra.Command{
	Use:   "services",
	Short: "List available OSINT services",
	RunE:  runServices,
}

func init() {
	rootCmd.AddCommand(servicesCmd)
}

// probeTags covers every tag a service could be registered for.
var probeTags = []classify.Tag{
	{Category: classify.CategorySocial, Subtype: classify.SubtypeUsername},
	{Category: classify.CategorySocial, Subtype: classify.SubtypeHashtag},
	{Category: classify.CategorySocial, Platform: "linkedin", Subtype: classify.SubtypeEmailLookup},
	{Category: classify.CategoryBulk, Subtype: classify.SubtypeUsername},
	{Category: classify.CategoryImage, Subtype: classify.SubtypeReverseImage},
	{Category: classify.CategoryUtility, Subtype: classify.SubtypeURLExpansion},
	{Category: classify.CategoryUtility, Subtype: classify.SubtypeTrainerCode},
}

func runServices(cmd *cobra.Command, args []string) error {
	dispatcher, _, err := buildDispatcher()
	if err != nil {
		return err
	}

	for _, svc := range dispatcher.Registry().All() {
		var accepted []string
		for _, tag := range probeTags {
			if svc.Accepts(tag) {
				accepted = append(accepted, tag.String())
			}
		}
		fmt.Printf("%-14s %s\n", svc.Name(), strings.Join(accepted, ", "))
	}
	return nil
}
