package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/akolanti/docvector/internal/domain/commonModels"
	"github.com/akolanti/docvector/internal/rag"
	"github.com/spf13/cobra"
)

func newIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Extract, chunk, embed and index a file",
		Long: `Index a PDF, DOCX, TXT or MD file for a user.

Examples:
  docvec ingest handbook.pdf --user alice`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return withService(cmd, func(ctx context.Context, svc rag.Service) error {
				report, err := svc.IngestFile(ctx, filepath.Base(args[0]), content, userID)
				if err != nil {
					return err
				}
				if outputJSON {
					return printJSON(cmd.OutOrStdout(), report)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Indexed %s as %s (%d chunks)\n", report.Filename, report.DocumentID, report.ChunksProcessed)
				return nil
			})
		},
	}
	addUserFlag(cmd)
	return cmd
}

func newSearchCmd() *cobra.Command {
	var limit int
	var threshold float32
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Semantic search over a user's documents",
		Long: `Search a user's indexed chunks.

Examples:
  docvec search "vacation policy" --user alice --limit 5 --threshold 0.5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := commonModels.Query{Text: args[0], UserID: userID}
			if cmd.Flags().Changed("limit") {
				q.Limit = &limit
			}
			if cmd.Flags().Changed("threshold") {
				q.ScoreThreshold = &threshold
			}
			return withService(cmd, func(ctx context.Context, svc rag.Service) error {
				results, err := svc.Search(ctx, q)
				if err != nil {
					return err
				}
				if outputJSON {
					return printJSON(cmd.OutOrStdout(), results)
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "SCORE\tDOCUMENT\tCHUNK\tCONTENT")
				for _, r := range results {
					fmt.Fprintf(w, "%.3f\t%s\t%s\t%s\n", r.Score, r.DocumentID, r.ChunkID, truncate(r.Content, 60))
				}
				return w.Flush()
			})
		},
	}
	addUserFlag(cmd)
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of results (1-100)")
	cmd.Flags().Float32Var(&threshold, "threshold", 0.7, "minimum similarity score (0-1)")
	return cmd
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc rag.Service) error {
				documents, err := svc.ListDocuments(ctx, userID)
				if err != nil {
					return err
				}
				if outputJSON {
					return printJSON(cmd.OutOrStdout(), documents)
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "DOCUMENT\tCHUNKS\tCREATED")
				for _, d := range documents {
					fmt.Fprintf(w, "%s\t%d\t%s\n", d.DocumentID, d.ChunkCount, d.CreatedAt)
				}
				return w.Flush()
			})
		},
	}
	addUserFlag(cmd)
	return cmd
}

func newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <document_id>",
		Short: "Delete a document and all of its chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc rag.Service) error {
				if err := svc.DeleteDocument(ctx, args[0], userID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Document %s deleted successfully\n", args[0])
				return nil
			})
		},
	}
	addUserFlag(cmd)
	return cmd
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Report the vector index health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc rag.Service) error {
				status := svc.Health(ctx)
				fmt.Fprintf(cmd.OutOrStdout(), "index: %s\nembedder: %s (%d)\n", status, svc.ModelName(), svc.Dimension())
				if status != commonModels.HealthHealthy {
					return fmt.Errorf("index is %s", status)
				}
				return nil
			})
		},
	}
}

func addUserFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&userID, "user", "", "owner of the documents (required)")
	_ = cmd.MarkFlagRequired("user")
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
