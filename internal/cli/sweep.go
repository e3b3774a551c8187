package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"daisy/internal/media"
	"daisy/internal/repository"
)

func newSweepCommand(e *env) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Remove files under MEDIA_ROOT that no row references",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.open(); err != nil {
				return err
			}
			defer e.close()
			refs, err := repository.ReferencedMedia(cmd.Context(), e.db)
			if err != nil {
				return fmt.Errorf("collect references: %w", err)
			}
			orphans, err := media.Orphans(e.cfg.MediaRoot, refs)
			if err != nil {
				return fmt.Errorf("scan media: %w", err)
			}

			store := media.NewLocalStore(e.cfg.MediaRoot, e.cfg.MediaURL)
			removed := 0
			for _, p := range orphans {
				if dryRun {
					fmt.Fprintln(cmd.OutOrStdout(), p)
					continue
				}
				if err := store.Remove(p); err != nil {
					e.log.Warn("orphan removal failed", zap.String("path", p), zap.Error(err))
					continue
				}
				removed++
			}

			e.log.Info("media sweep completed",
				zap.Int("referenced", len(refs)),
				zap.Int("orphans", len(orphans)),
				zap.Int("removed", removed),
				zap.Bool("dry_run", dryRun),
			)
			if !dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d of %d orphaned files\n", removed, len(orphans))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "only list orphaned files")
	return cmd
}
