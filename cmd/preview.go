package cmd

import (
	"context"
	"fmt"

	"douban2feishu/core/feishu"
	"douban2feishu/feature/sync/catalog"
	"douban2feishu/feature/sync/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	previewContentType string
	previewAppToken    string
	previewTableID     string
	previewAppID       string
	previewAppSecret   string
)

// previewCmd dry-runs mapping resolution against a live table.
var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview mapping resolution for a table",
	Long: `Lists the target table's columns and reports which catalog fields would
match existing columns and which columns a sync would create. Nothing is
created or persisted.`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().StringVar(&previewContentType, "content-type", "", "Content type: books, movies, tv, documentary (required)")
	previewCmd.Flags().StringVar(&previewAppToken, "app-token", "", "Bitable app token (required)")
	previewCmd.Flags().StringVar(&previewTableID, "table-id", "", "Bitable table ID (required)")
	previewCmd.Flags().StringVar(&previewAppID, "app-id", "", "Feishu app ID (required)")
	previewCmd.Flags().StringVar(&previewAppSecret, "app-secret", "", "Feishu app secret (required)")

	_ = previewCmd.MarkFlagRequired("content-type")
	_ = previewCmd.MarkFlagRequired("app-token")
	_ = previewCmd.MarkFlagRequired("table-id")
	_ = previewCmd.MarkFlagRequired("app-id")
	_ = previewCmd.MarkFlagRequired("app-secret")

	RootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	contentType, err := catalog.Parse(previewContentType)
	if err != nil {
		return err
	}

	svc, l, cleanup, err := buildSyncService()
	if err != nil {
		return err
	}
	defer cleanup()

	target := models.TargetConfig{
		Creds:       feishu.Credentials{AppID: previewAppID, AppSecret: previewAppSecret},
		AppToken:    previewAppToken,
		TableID:     previewTableID,
		ContentType: contentType,
	}

	preview, err := svc.PreviewMapping(ctx, target)
	if err != nil {
		return fmt.Errorf("preview failed: %w", err)
	}

	for _, m := range preview.WillMatch {
		l.Info("Will match", zap.String("field", m.DomainName), zap.String("column", m.DisplayName), zap.String("columnId", m.ColumnID))
	}
	for _, c := range preview.WillCreate {
		l.Info("Will create", zap.String("field", c.DomainName), zap.String("column", c.DisplayName), zap.String("kind", c.Kind))
	}
	l.Info("Preview finished",
		zap.Int("matched", len(preview.WillMatch)),
		zap.Int("toCreate", len(preview.WillCreate)),
	)
	return nil
}
