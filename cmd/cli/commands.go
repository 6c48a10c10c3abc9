package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Halleck45/OpenPronounce/pkg/models"
	"github.com/Halleck45/OpenPronounce/pkg/pronounce/audio"
	"github.com/Halleck45/OpenPronounce/pkg/utils"
)

var (
	historyLimit   int
	spectrogramOut string
	summaryOnly    bool
)

var scoreCmd = &cobra.Command{
	Use:   "score <audio> <text>",
	Short: "Score a recording against the text it should say",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := serviceFor(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		analysis, err := svc.CompareAudioWithText(ctx, args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if summaryOnly {
			fmt.Fprintf(out, "Score: %.2f / 100\n", analysis.Score)
			fmt.Fprintf(out, "Heard: %q\n", analysis.Transcript)
			fmt.Fprint(out, analysis.Feedback)
			return nil
		}
		return writeJSON(out, analysis)
	},
}

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <audio>",
	Short: "Print what the transcriber hears in a recording",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := serviceFor(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		text, err := svc.Transcribe(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

var phonemesCmd = &cobra.Command{
	Use:   "phonemes <text>",
	Short: "Print the phonemes of a text, word by word",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := serviceFor(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		listing, err := svc.Phonemes(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, w := range listing.Words {
			if len(w.Phonemes) == 0 {
				fmt.Fprintf(out, "%-16s (silent)\n", w.Word)
				continue
			}
			fmt.Fprintf(out, "%-16s %s\n", w.Word, strings.Join(w.Phonemes, " "))
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the most recent scored attempts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := serviceFor(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		attempts, err := svc.ListAttempts(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		printAttempts(cmd.OutOrStdout(), attempts)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one stored attempt with its word errors",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !utils.IsUUID(args[0]) {
			return fmt.Errorf("invalid attempt ID %q", args[0])
		}
		svc, err := serviceFor(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		attempt, err := svc.GetAttempt(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), attempt)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored attempt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !utils.IsUUID(args[0]) {
			return fmt.Errorf("invalid attempt ID %q", args[0])
		}
		svc, err := serviceFor(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		if err := svc.DeleteAttempt(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted attempt %s\n", args[0])
		return nil
	},
}

var spectrogramCmd = &cobra.Command{
	Use:   "spectrogram <audio>",
	Short: "Render the spectrogram of a recording as PNG",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		dir := cfg.Audio.TempDir
		if dir == "" {
			dir = os.TempDir()
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		wavPath, err := audio.ConvertToMonoWAV(ctx, args[0], dir, audio.ConvertWAVConfig{SampleRate: cfg.Audio.SampleRate})
		if err != nil {
			return err
		}
		defer utils.RemoveFiles(wavPath)

		samples, err := audio.ReadWav(wavPath)
		if err != nil {
			return err
		}

		out := spectrogramOut
		if out == "" {
			base := filepath.Base(args[0])
			out = strings.TrimSuffix(base, filepath.Ext(base)) + ".png"
		}
		if err := audio.RenderSpectrogram(samples, out, 0, 0); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Spectrogram written to %s\n", out)
		return nil
	},
}

func init() {
	scoreCmd.Flags().BoolVarP(&summaryOnly, "summary", "s", false, "print score and feedback instead of JSON")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of attempts to list")
	spectrogramCmd.Flags().StringVarP(&spectrogramOut, "output", "o", "", "output PNG path (default: <audio>.png)")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printAttempts(w io.Writer, attempts []models.AttemptSummary) {
	if len(attempts) == 0 {
		fmt.Fprintln(w, "No attempts recorded yet")
		return
	}
	for _, a := range attempts {
		at := time.UnixMilli(a.CreatedAtMs).Format("2006-01-02 15:04")
		fmt.Fprintf(w, "%s  %s  %6.2f  %q\n", a.ID, at, a.Score, a.ExpectedText)
	}
}
