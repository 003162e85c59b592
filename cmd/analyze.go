package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	analyzeVoice    bool
	analyzeDuration float64
	analyzeUser     string
	analyzeSave     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <text>",
	Short: "Classify a journal entry and print the result as JSON",
	Long: `Classify a journal entry into an emotion and print the analysis, including
coping suggestions, as JSON. With --voice the text is treated as a speech
transcript and classified with the utterance rules instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().BoolVar(&analyzeVoice, "voice", false, "Treat the text as a speech transcript")
	analyzeCmd.Flags().Float64Var(&analyzeDuration, "duration", 0, "Recording length in seconds (with --voice)")
	analyzeCmd.Flags().StringVarP(&analyzeUser, "user", "u", "cli", "User id recorded with the result")
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "Persist the result to the configured store")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text must not be blank")
	}

	a, err := newCore(cfg)
	if err != nil {
		return err
	}
	if analyzeSave {
		if a, err = newApp(cmd.Context(), cfg); err != nil {
			return err
		}
		defer a.Close()
	}

	var result interface{}
	if analyzeVoice {
		v := a.classifier.AnalyzeVoice(text, analyzeDuration)
		v.UserID = analyzeUser
		if analyzeSave {
			if err := a.store.SaveVoiceAnalysis(cmd.Context(), v); err != nil {
				return err
			}
		}
		result = v
	} else {
		r := a.classifier.ClassifyText(text)
		r.UserID = analyzeUser
		if analyzeSave {
			if err := a.store.SaveAnalysis(cmd.Context(), r); err != nil {
				return err
			}
		}
		result = r
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
