package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/abhisek/intertest/internal/llm"
	"github.com/abhisek/intertest/internal/screens/generating"
	"github.com/abhisek/intertest/internal/testgen"
)

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen"},
	Short:   "Generate an interview test for a job description",
	Example: `  intertest generate --jd "Senior Go engineer for payments" --domain Finance --level 5+
  intertest generate --jd-file jd.txt --mcq 8 --coding=false --short 3
  intertest generate --request request.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := requestFromFlags(cmd)
		if err != nil {
			return err
		}

		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		gen := testgen.New(rt.dispatcher, testgen.DefaultConfig())
		run := func(ctx context.Context) (*testgen.Test, error) {
			return gen.Generate(ctx, req)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		var test *testgen.Test
		plain, _ := cmd.Flags().GetBool("plain")
		if !plain && isTerminal(os.Stderr) {
			// Attempt warnings would tear the spinner line.
			restore := rt.logger.MuteConsole()
			test, err = generating.Run(ctx, os.Stderr, "Generating interview test...", run)
			restore()
		} else {
			test, err = run(ctx)
		}

		switch {
		case errors.Is(err, llm.ErrNoProvidersConfigured):
			return errors.New(llm.NoProvidersMessage(rt.providerNames()...))
		case err != nil:
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), test.Text)
		rt.logger.WithField("run_id", test.RunID).
			WithField("provider", test.Provider).
			WithField("model", test.Model).
			Info("interview test generated")
		return nil
	},
}

func init() {
	f := generateCmd.Flags()
	f.String("jd", "", "Job description text")
	f.String("jd-file", "", "Read the job description from a file (- for stdin)")
	f.String("request", "", "Read the whole request as JSON from a file (- for stdin)")
	f.String("domain", testgen.Domains[0], "Company domain: "+strings.Join(testgen.Domains, ", "))
	f.String("level", string(testgen.LevelEntry), "Experience level: 0-1, 2-5 or 5+")
	f.Int("mcq", testgen.DefaultMCQ, fmt.Sprintf("Number of multiple-choice questions (%d-%d)", testgen.MinMCQ, testgen.MaxMCQ))
	f.Bool("coding", true, "Include a coding challenge")
	f.Int("short", testgen.DefaultShort, fmt.Sprintf("Number of short-answer questions (%d-%d)", testgen.MinShortAnswer, testgen.MaxShortAnswer))
	f.Bool("plain", false, "Disable the progress spinner")

	generateCmd.MarkFlagsMutuallyExclusive("jd", "jd-file", "request")
}

// requestFromFlags builds and validates the TestRequest. Validation runs
// before any store or provider is touched.
func requestFromFlags(cmd *cobra.Command) (testgen.TestRequest, error) {
	f := cmd.Flags()

	if path, _ := f.GetString("request"); path != "" {
		raw, err := readInput(cmd, path)
		if err != nil {
			return testgen.TestRequest{}, fmt.Errorf("read request: %w", err)
		}
		return testgen.ParseRequest(raw)
	}

	jd, _ := f.GetString("jd")
	if path, _ := f.GetString("jd-file"); path != "" {
		raw, err := readInput(cmd, path)
		if err != nil {
			return testgen.TestRequest{}, fmt.Errorf("read job description: %w", err)
		}
		jd = string(raw)
	}

	levelFlag, _ := f.GetString("level")
	level, err := testgen.ParseExperienceLevel(levelFlag)
	if err != nil {
		return testgen.TestRequest{}, err
	}

	req := testgen.DefaultRequest()
	req.JobDescription = jd
	req.CompanyDomain, _ = f.GetString("domain")
	req.ExperienceLevel = level
	req.MCQCount, _ = f.GetInt("mcq")
	req.IncludeCoding, _ = f.GetBool("coding")
	req.ShortAnswerCount, _ = f.GetInt("short")

	if err := req.Validate(); err != nil {
		return testgen.TestRequest{}, err
	}
	return req, nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
