package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-matcher/internal/extraction"
	"github.com/jonathan/resume-matcher/internal/matching"
	"github.com/jonathan/resume-matcher/internal/pdftext"
	"github.com/jonathan/resume-matcher/internal/types"
)

var (
	analyzeResume string
	analyzeJob    string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score a resume against a job description",
	Long:  `Extract keywords from a resume PDF and a job description text file, then print the match result as JSON. Runs entirely offline: no LLM, no rate limiting.`,
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeResume, "resume", "", "Path to resume PDF (required)")
	analyzeCmd.Flags().StringVar(&analyzeJob, "job", "", "Path to job description text file (required)")
	_ = analyzeCmd.MarkFlagRequired("resume")
	_ = analyzeCmd.MarkFlagRequired("job")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(_ *cobra.Command, _ []string) error {
	resumeText, err := pdftext.Extract(analyzeResume)
	if err != nil {
		return err
	}

	jobText, err := os.ReadFile(analyzeJob)
	if err != nil {
		return fmt.Errorf("failed to read job description: %w", err)
	}

	profile := extraction.ExtractResumeKeywords(resumeText)
	jobKeywords := extraction.ExtractJobKeywords(string(jobText))

	result, err := matching.NewScorer().Score(profile, jobKeywords)
	if err != nil {
		return err
	}

	output, err := json.MarshalIndent(struct {
		*types.MatchResult
		ExtractedProfile *types.ExtractedProfile `json:"extracted_profile"`
	}{result, profile}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	fmt.Println(string(output))
	return nil
}
