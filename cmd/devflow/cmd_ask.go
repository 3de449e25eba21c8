package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/suykerbuyk/devflow/internal/chat"
	"github.com/suykerbuyk/devflow/internal/segment"
)

var (
	askRaw  bool
	askJSON bool
)

var askCmd = &cobra.Command{
	Use:   "ask [description]",
	Short: "Send one description and print the reply",
	Long: `Sends the description to the model once and prints the reply.
With no arguments the description is read from stdin.`,
	RunE: runAsk,
}

var segmentJSON bool

var segmentCmd = &cobra.Command{
	Use:   "segment [file]",
	Short: "Split reply text into segments without calling the model",
	Long: `Reads reply text from a file, or stdin when no file is given, and
renders its segments. Useful for checking how a saved reply displays.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSegment,
}

func init() {
	askCmd.Flags().BoolVar(&askRaw, "raw", false, "Print the reply text unrendered")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "Print the reply and its segments as JSON")
	segmentCmd.Flags().BoolVar(&segmentJSON, "json", false, "Print segments as JSON")
}

func runAsk(cmd *cobra.Command, args []string) error {
	description := strings.Join(args, " ")
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		description = string(data)
	}

	client, err := newCompleter(cfg)
	if err != nil {
		return err
	}
	opts := []chat.Option{chat.WithLogger(logger)}
	store, err := openHistory(cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
		opts = append(opts, chat.WithRecorder(store))
	}
	sess := chat.New(client, opts...)

	entry, err := sess.Submit(cmd.Context(), description)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case askJSON:
		return writeJSON(out, map[string]any{"code": entry.Content, "segments": nonNil(entry.Segments())})
	case askRaw:
		_, err := fmt.Fprintln(out, entry.Content)
		return err
	default:
		_, err := fmt.Fprint(out, newTerminal().Turn(chat.TurnOf(entry)))
		return err
	}
}

func runSegment(cmd *cobra.Command, args []string) error {
	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	segs := segment.Parse(string(data))
	if segmentJSON {
		return writeJSON(cmd.OutOrStdout(), map[string]any{"segments": nonNil(segs)})
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), newTerminal().Segments(segs))
	return err
}

func nonNil(segs []segment.Segment) []segment.Segment {
	if segs == nil {
		return []segment.Segment{}
	}
	return segs
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
