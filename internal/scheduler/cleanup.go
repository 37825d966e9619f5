// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/quizdeck/quizdeck/internal/database"
	"github.com/quizdeck/quizdeck/internal/logging"
	"github.com/quizdeck/quizdeck/internal/metrics"
	"github.com/quizdeck/quizdeck/internal/storage"
)

// ImageCleanupJobName identifies the orphan editor-image cleanup job.
const ImageCleanupJobName = "editor_image_cleanup"

// NewImageCleanupJob returns a job that deletes editor images never
// attached to a quiz and older than orphanAge, removing both the
// stored object and the database record. The record goes last so a
// crash between the two steps leaves a row pointing at a missing
// object rather than an unreferenced object on disk.
func NewImageCleanupJob(db *database.DB, store *storage.Store, orphanAge time.Duration) Job {
	return func(ctx context.Context) error {
		cutoff := time.Now().UTC().Add(-orphanAge)

		orphans, err := db.ListOrphanImages(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("list orphan images: %w", err)
		}
		if len(orphans) == 0 {
			return nil
		}

		deleted := 0
		for _, img := range orphans {
			if ctx.Err() != nil {
				break
			}
			if err := store.Delete(img.StorageID); err != nil {
				logging.Warn().
					Err(err).
					Str("storage_id", img.StorageID).
					Msg("failed to delete orphan image object")
				continue
			}
			if err := db.DeleteEditorImage(ctx, img.ID); err != nil {
				logging.Warn().
					Err(err).
					Str("image_id", img.ID.String()).
					Msg("failed to delete orphan image record")
				continue
			}
			deleted++
			metrics.OrphanImagesDeleted.Inc()
		}

		logging.Info().
			Int("found", len(orphans)).
			Int("deleted", deleted).
			Msg("orphan editor images cleaned")
		return nil
	}
}
