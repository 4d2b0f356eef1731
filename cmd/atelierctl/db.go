package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Simplici0/atelier/internal/blob"
	"github.com/Simplici0/atelier/internal/config"
	"github.com/Simplici0/atelier/internal/db"
	"github.com/Simplici0/atelier/internal/export"
	"github.com/Simplici0/atelier/internal/migrations"
	"github.com/Simplici0/atelier/internal/seed"
	"github.com/Simplici0/atelier/internal/store"
)

func openDB(cmd *cobra.Command) (*sql.DB, db.Dialect, error) {
	database, dialect, err := db.Open(dsnFlag(cmd))
	if err != nil {
		return nil, "", fmt.Errorf("open database: %w", err)
	}
	return database, dialect, nil
}

func newMigrateCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, dialect, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer database.Close()

			n, err := migrations.Up(cmd.Context(), database, dialect, dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migrations (%s)\n", n, dialect)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "migrations", "migrations directory")
	return cmd
}

func newSeedCmd() *cobra.Command {
	var studioName string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create studio settings and the starter material catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, dialect, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer database.Close()

			stats, err := seed.Run(cmd.Context(), database, dialect, seed.Config{StudioName: studioName})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seed complete: %d inserts, %d updates\n", stats.Inserts, stats.Updates)
			return nil
		},
	}
	cmd.Flags().StringVar(&studioName, "studio-name", "", "studio name shown on documents")
	return cmd
}

func newExportCmd() *cobra.Command {
	var (
		quoteID string
		format  string
		out     string
		archive bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a published quote to a file or the blob archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, dialect, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer database.Close()

			doc, q, err := loadDocument(cmd.Context(), store.New(database, dialect), quoteID)
			if err != nil {
				return err
			}
			rendered, err := export.Render(doc, export.Format(format))
			if err != nil {
				return err
			}

			if archive {
				blobs, err := blob.Open(cmd.Context(), config.BlobConfig())
				if err != nil {
					return err
				}
				info, err := blobs.Put(cmd.Context(), blob.QuoteArchiveKey(q, rendered.Ext, time.Now().UTC()),
					bytes.NewReader(rendered.Body), blob.PutOptions{ContentType: rendered.ContentType})
				if err != nil {
					return fmt.Errorf("archive quote: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "archived %s (%d bytes, %s)\n", info.Key, info.Size, blobs.Driver())
				return nil
			}

			if out == "" {
				out = rendered.Filename(doc)
			}
			if err := os.WriteFile(out, rendered.Body, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&quoteID, "quote", "", "quote id")
	cmd.Flags().StringVar(&format, "format", string(export.FormatPDF), "pdf, xlsx or txt")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path (default <number>.<ext>)")
	cmd.Flags().BoolVar(&archive, "archive", false, "store in the blob archive instead of a local file")
	_ = cmd.MarkFlagRequired("quote")
	return cmd
}

// loadDocument returns the render-ready document for a quote and its id.
func loadDocument(ctx context.Context, st *store.Store, quoteID string) (export.QuoteDocument, string, error) {
	q, err := st.GetQuote(ctx, quoteID)
	if err != nil {
		return export.QuoteDocument{}, "", err
	}
	var clientName, projectName string
	if c, err := st.GetClient(ctx, q.ClientID); err == nil {
		clientName = c.Name
	}
	if p, err := st.GetProject(ctx, q.ProjectID); err == nil {
		projectName = p.Name
	}
	return export.NewQuoteDocument(q, clientName, projectName), q.ID, nil
}
