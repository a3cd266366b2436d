package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/cv-scorer/internal/evaluation"
	"github.com/jonathan/cv-scorer/internal/ingest"
	"github.com/jonathan/cv-scorer/internal/llm"
	"github.com/jonathan/cv-scorer/internal/rubric"
	"github.com/jonathan/cv-scorer/internal/scoring"
	"github.com/jonathan/cv-scorer/internal/types"
)

var (
	scoreCVPath   string
	scoreJobPath  string
	scoreJobURL   string
	scoreJobTitle string
	scoreCompany  string
	scoreOutPath  string
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a CV against a job description",
	Long:  `Score a CV JSON file against a job description without the queue and print the result as JSON.`,
	RunE:  runScore,
}

func init() {
	scoreCmd.Flags().StringVar(&scoreCVPath, "cv", "", "Path to CV JSON file (required)")
	scoreCmd.Flags().StringVar(&scoreJobPath, "job", "", "Path to job description text file")
	scoreCmd.Flags().StringVar(&scoreJobURL, "job-url", "", "URL to fetch the job posting from")
	scoreCmd.Flags().StringVar(&scoreJobTitle, "title", "", "Job title (defaults to the first line of the posting)")
	scoreCmd.Flags().StringVar(&scoreCompany, "company", "", "Company name")
	scoreCmd.Flags().StringVar(&scoreOutPath, "out", "", "Write the result to this file instead of stdout")
	_ = scoreCmd.MarkFlagRequired("cv")
	scoreCmd.MarkFlagsMutuallyExclusive("job", "job-url")
	scoreCmd.MarkFlagsOneRequired("job", "job-url")
	rootCmd.AddCommand(scoreCmd)
}

// cvFile is the on-disk CV format accepted by the score command.
type cvFile struct {
	CandidateName  string            `json:"candidate_name,omitempty"`
	CandidateEmail string            `json:"candidate_email,omitempty"`
	Sections       map[string]string `json:"sections"`
}

func runScore(cmd *cobra.Command, _ []string) error {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	ctx := cmd.Context()

	cv, err := loadCV(scoreCVPath)
	if err != nil {
		return err
	}
	jd, err := loadJobDescription(ctx)
	if err != nil {
		return err
	}

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), apiKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	orchestrator := evaluation.NewOrchestrator(
		rubric.NewBuilder(client),
		scoring.NewScorer(client, scoring.DefaultMaxConcurrency),
	)

	jobRubric, err := orchestrator.BuildRubrics(ctx, jd)
	if err != nil {
		return fmt.Errorf("failed to build rubrics: %w", err)
	}
	result, err := orchestrator.ScoreCV(ctx, cv, jobRubric)
	if err != nil {
		return fmt.Errorf("failed to score CV: %w", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	out = append(out, '\n')

	if scoreOutPath != "" {
		return os.WriteFile(scoreOutPath, out, 0o644)
	}
	_, err = os.Stdout.Write(out)
	return err
}

// loadCV reads and validates the CV JSON file.
func loadCV(path string) (*types.CV, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read CV file: %w", err)
	}

	var file cvFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse CV JSON: %w", err)
	}
	if len(file.Sections) == 0 {
		return nil, fmt.Errorf("CV file has no sections")
	}

	sections := make(map[types.SectionType]string, len(file.Sections))
	for key, content := range file.Sections {
		section := types.SectionType(key)
		if !section.Valid() {
			return nil, fmt.Errorf("unknown CV section: %s", key)
		}
		sections[section] = content
	}

	return &types.CV{
		ID:             uuid.New(),
		CandidateName:  file.CandidateName,
		CandidateEmail: file.CandidateEmail,
		Sections:       sections,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// loadJobDescription builds a job description from the --job file or the
// --job-url posting.
func loadJobDescription(ctx context.Context) (*types.JobDescription, error) {
	var text string

	switch {
	case scoreJobPath != "":
		data, err := os.ReadFile(scoreJobPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read job file: %w", err)
		}
		text = string(data)
	case scoreJobURL != "":
		result, err := ingest.FetchPosting(ctx, scoreJobURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch job posting: %w", err)
		}
		text = result.Text
	}

	title := scoreJobTitle
	if title == "" {
		title = firstNonEmptyLine(text)
	}

	return &types.JobDescription{
		ID:               uuid.New(),
		Title:            title,
		Company:          scoreCompany,
		Responsibilities: text,
		CreatedAt:        time.Now().UTC(),
	}, nil
}

func firstNonEmptyLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
