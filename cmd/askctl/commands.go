package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

type questionResult struct {
	TurnID string `json:"turn_id"`
	Phase  string `json:"phase"`
	Answer string `json:"answer"`
	Error  string `json:"error"`
	Locale string `json:"locale"`
}

// --- ask ---

func newAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question and print the answer",
		Long: `Ask a question and print the answer.

Examples:
  askctl ask "What is the capital of France?"
  askctl ask "지하철역이 어디예요?" --my-language Korean --target-language English`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			myLanguage, _ := cmd.Flags().GetString("my-language")
			targetLanguage, _ := cmd.Flags().GetString("target-language")

			req := map[string]any{
				"question": strings.Join(args, " "),
			}
			if myLanguage != "" {
				req["my_language"] = myLanguage
			}
			if targetLanguage != "" {
				req["target_language"] = targetLanguage
			}

			client, err := newAPIClient()
			if err != nil {
				return err
			}
			resp, err := client.post(cmd.Context(), "/api/questions", req)
			if err != nil {
				return err
			}

			// A failed turn still carries a rendered answer.
			if resp.StatusCode == http.StatusBadGateway {
				resp.StatusCode = http.StatusOK
			}
			var result questionResult
			if err := decodeJSON(resp, &result); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.Answer)
			printStatus("turn", "%s (%s)", result.TurnID, result.Phase)
			printStatus("locale", "%s", result.Locale)
			if result.Phase == "failed" {
				return fmt.Errorf("question failed: %s", result.Error)
			}
			return nil
		},
	}
	cmd.Flags().String("my-language", "", "language the answer is written in")
	cmd.Flags().String("target-language", "", "language the question was asked in")
	return cmd
}

// --- context ---

func newContextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Manage the reference context used for answers",
	}
	cmd.AddCommand(newContextSetCmd(), newContextShowCmd(), newContextClearCmd())
	return cmd
}

func newContextSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Replace the reference context",
		Long: `Replace the reference context.

Examples:
  askctl context set --text "The museum opens at nine."
  askctl context set --file ./guide.pdf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, _ := cmd.Flags().GetString("text")
			file, _ := cmd.Flags().GetString("file")

			if text == "" && file == "" {
				return fmt.Errorf("one of --text or --file is required")
			}
			if text != "" && file != "" {
				return fmt.Errorf("--text and --file are mutually exclusive")
			}

			client, err := newAPIClient()
			if err != nil {
				return err
			}

			var resp *http.Response
			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("reading file: %w", err)
				}
				resp, err = client.upload(cmd.Context(), "/api/context/upload", filepath.Base(file), data)
				if err != nil {
					return err
				}
			} else {
				resp, err = client.put(cmd.Context(), "/api/context", map[string]any{"text": text})
				if err != nil {
					return err
				}
			}

			var result map[string]any
			if err := decodeJSON(resp, &result); err != nil {
				return err
			}
			printSuccess("Context updated")
			return nil
		},
	}
	cmd.Flags().String("text", "", "context text")
	cmd.Flags().String("file", "", "text or PDF file to import")
	return cmd
}

func newContextShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current reference context",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}
			resp, err := client.get(cmd.Context(), "/api/context")
			if err != nil {
				return err
			}

			var result struct {
				Context    string `json:"context"`
				HasContext bool   `json:"has_context"`
			}
			if err := decodeJSON(resp, &result); err != nil {
				return err
			}
			if !result.HasContext {
				printWarning("No context set")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Context)
			return nil
		},
	}
}

func newContextClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the reference context",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}
			resp, err := client.delete(cmd.Context(), "/api/context")
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode >= 400 {
				return statusError(resp)
			}
			printSuccess("Context cleared")
			return nil
		},
	}
}

// --- dict ---

func newDictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dict",
		Short: "Browse and build dictionaries",
	}
	cmd.AddCommand(newDictListCmd(), newDictShowCmd(), newDictBuildCmd())
	return cmd
}

func newDictListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List dictionary names",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}
			resp, err := client.get(cmd.Context(), "/api/dictionaries")
			if err != nil {
				return err
			}

			var result struct {
				Dictionaries []string `json:"dictionaries"`
			}
			if err := decodeJSON(resp, &result); err != nil {
				return err
			}
			if len(result.Dictionaries) == 0 {
				printWarning("No dictionaries found")
				return nil
			}
			for _, name := range result.Dictionaries {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newDictShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Print a dictionary as stored",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, _ := cmd.Flags().GetBool("entries")

			path := "/api/dictionaries/" + url.PathEscape(args[0])
			if entries {
				path += "/entries"
			}

			client, err := newAPIClient()
			if err != nil {
				return err
			}
			resp, err := client.get(cmd.Context(), path)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode >= 400 {
				return statusError(resp)
			}

			// Output is copied byte for byte.
			if _, err := io.Copy(cmd.OutOrStdout(), resp.Body); err != nil {
				return fmt.Errorf("reading dictionary: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().Bool("entries", false, "print only the entries array")
	return cmd
}
