package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kayz/osprey/internal/classify"
	"github.com/kayz/osprey/internal/report"
	"github.com/kayz/osprey/internal/services"
)

var (
	searchType      string
	searchPlatforms []string
	searchOutput    string
	searchFormat    string
	searchParallel  int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run a query against every matching OSINT service",
	Long: `Run a query against every matching OSINT service.

The query type is detected automatically unless --type is given:
  auto      Classify the query (default)
  username  Profile lookups plus the bulk username sweep
  social    Profile lookups only (narrow with --platform)
  bulk      Bulk username sweep only
  image     Reverse image search
  url       Shortened URL expansion
  email     LinkedIn email lookup
  pokemon   Trainer code lookup`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchType, "type", "t", "auto",
		"Query type: auto, username, social, bulk, image, url, email, pokemon")
	searchCmd.Flags().StringSliceVarP(&searchPlatforms, "platform", "p", nil,
		"Limit social lookups to these platforms (gab, tiktok, linkedin, reddit, tumblr)")
	searchCmd.Flags().StringVarP(&searchOutput, "output", "o", "",
		"Write the JSON report to this file")
	searchCmd.Flags().StringVar(&searchFormat, "format", "",
		"Output format: text, json, csv (default from config)")
	searchCmd.Flags().IntVar(&searchParallel, "parallel", 0,
		"Run services concurrently with this many workers (0 = sequential)")
}

// tagsForType maps the --type flag to dispatch tags.
func tagsForType(queryType, query string, platforms []string) ([]classify.Tag, error) {
	switch queryType {
	case "auto":
		return classify.Classify(query), nil
	case "username":
		return []classify.Tag{
			{Category: classify.CategorySocial, Subtype: classify.SubtypeUsername},
			{Category: classify.CategoryBulk, Subtype: classify.SubtypeUsername},
		}, nil
	case "social":
		if len(platforms) == 0 {
			return []classify.Tag{
				{Category: classify.CategorySocial, Subtype: classify.SubtypeUsername},
			}, nil
		}
		tags := make([]classify.Tag, 0, len(platforms))
		for _, p := range platforms {
			tags = append(tags, classify.Tag{
				Category: classify.CategorySocial,
				Platform: strings.ToLower(p),
				Subtype:  classify.SubtypeUsername,
			})
		}
		return tags, nil
	case "bulk":
		return []classify.Tag{
			{Category: classify.CategoryBulk, Subtype: classify.SubtypeUsername},
		}, nil
	case "image":
		return []classify.Tag{
			{Category: classify.CategoryImage, Subtype: classify.SubtypeReverseImage},
		}, nil
	case "url":
		return []classify.Tag{
			{Category: classify.CategoryUtility, Subtype: classify.SubtypeURLExpansion},
		}, nil
	case "email":
		return []classify.Tag{
			{Category: classify.CategorySocial, Platform: "linkedin", Subtype: classify.SubtypeEmailLookup},
		}, nil
	case "pokemon":
		return []classify.Tag{
			{Category: classify.CategoryUtility, Subtype: classify.SubtypeTrainerCode},
		}, nil
	default:
		return nil, fmt.Errorf("unknown query type %q", queryType)
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(args[0])
	if query == "" {
		return fmt.Errorf("query must not be empty")
	}

	dispatcher, cfg, err := buildDispatcher()
	if err != nil {
		return err
	}

	tags, err := tagsForType(searchType, query, searchPlatforms)
	if err != nil {
		return err
	}

	for _, tag := range tags {
		fmt.Fprintf(os.Stderr, "dispatching %s\n", tag)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	var results []services.Result
	if searchParallel > 1 {
		results = dispatcher.RunParallel(ctx, query, tags, searchParallel)
	} else {
		results = dispatcher.RunWithProgress(ctx, query, tags,
			func(done, total int, res services.Result) {
				status := "FAIL"
				if res.Success {
					status = "OK"
				}
				fmt.Fprintf(os.Stderr, "[%d/%d] %s %s (%.2fs)\n",
					done, total, status, res.Service, res.ResponseTime)
			})
	}

	rep := report.Aggregate(results)

	format := searchFormat
	if format == "" {
		format = cfg.Output.Format
	}
	switch format {
	case "json":
		data, err := rep.JSON()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	case "csv":
		data, err := rep.CSV()
		if err != nil {
			return err
		}
		fmt.Print(string(data))
	default:
		fmt.Print(rep.Text())
	}

	output := searchOutput
	if output == "" && cfg.Output.Dir != "" {
		output = filepath.Join(cfg.Output.Dir,
			fmt.Sprintf("osprey_report_%s.json", time.Now().Format("20060102_150405")))
	}
	if output != "" {
		if _, err := rep.Save(output); err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}
	}
	return nil
}
