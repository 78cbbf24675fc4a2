package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"jobfill/autofill"
	"jobfill/dom"
	"jobfill/models"
)

type analyzeOutput struct {
	URL         string                  `json:"url,omitempty"`
	Platform    string                  `json:"platform"`
	JobTitle    string                  `json:"job_title,omitempty"`
	Company     string                  `json:"company,omitempty"`
	Mappings    []autofill.FieldMapping `json:"field_mappings"`
	Suggestions int                     `json:"suggestions"`
}

func newAnalyzeCmd() *cobra.Command {
	var (
		pageURL     string
		profilePath string
	)

	cmd := &cobra.Command{
		Use:   "analyze <file.html|->",
		Short: "Show what would be filled on a saved page",
		Long: `Reads a saved application page and prints, as JSON, the value each
form field would receive. Nothing is typed into a browser.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer src.Close()

			var profile *models.Profile
			if profilePath != "" {
				if profile, err = profileFile(profilePath).Profile(cmd.Context()); err != nil {
					return err
				}
			} else {
				profile = models.DefaultProfile()
			}
			return runAnalyze(cmd.Context(), src, pageURL, profile, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&pageURL, "url", "", "URL the page was saved from, used for platform detection")
	cmd.Flags().StringVar(&profilePath, "profile", "", "profile JSON file (default: an empty profile)")
	return cmd
}

func openInput(cmd *cobra.Command, arg string) (io.ReadCloser, error) {
	if arg == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(arg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", arg, err)
	}
	return f, nil
}

func runAnalyze(_ context.Context, src io.Reader, pageURL string, profile *models.Profile, out io.Writer) error {
	raw, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("failed to read page: %w", err)
	}
	doc, err := dom.ParseString(string(raw), pageURL)
	if err != nil {
		return fmt.Errorf("failed to parse page: %w", err)
	}

	mappings := autofill.NewAnalyzer(nil).AnalyzeDocument(doc, profile)
	if mappings == nil {
		mappings = []autofill.FieldMapping{}
	}
	result := analyzeOutput{
		URL:      pageURL,
		Platform: autofill.DetectPlatform(pageURL),
		JobTitle: autofill.ExtractJobTitle(doc),
		Company:  autofill.ExtractCompany(doc),
		Mappings: mappings,
	}
	for _, m := range mappings {
		if m.SuggestedValue != "" {
			result.Suggestions++
		}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
