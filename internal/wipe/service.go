// Package wipe deletes every file and key-value entry a user owns.
package wipe

import (
	"context"
	"fmt"

	"resurate/internal/platform"
	"resurate/internal/shared/metrics"
	"resurate/internal/shared/telemetry"
)

// Report summarizes a wipe. Success means the listing was reloaded after the
// deletions; individual file failures are counted, not fatal.
type Report struct {
	Success bool              `json:"success"`
	Deleted int               `json:"deleted"`
	Failed  int               `json:"failed"`
	Files   []platform.FSItem `json:"files"`
}

type Service struct {
	Files platform.Files
	KV    platform.KV
}

func NewService(p *platform.Platform) *Service {
	return &Service{Files: p.Files, KV: p.KV}
}

// List returns the user's files.
func (s *Service) List(ctx context.Context, userID string) ([]platform.FSItem, error) {
	items, err := s.Files.ReadDir(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return items, nil
}

// Run deletes the user's files one by one, flushes the user's key-value
// namespace and reloads the listing.
func (s *Service) Run(ctx context.Context, userID string) (Report, error) {
	items, err := s.List(ctx, userID)
	if err != nil {
		return Report{}, err
	}

	var report Report
	for _, item := range items {
		if err := s.Files.Delete(ctx, userID, item.Path); err != nil {
			report.Failed++
			telemetry.Error("wipe.delete_failed", map[string]any{
				"user_id": userID,
				"path":    item.Path,
				"error":   err,
			})
			continue
		}
		report.Deleted++
	}

	if err := s.KV.Flush(ctx, userID); err != nil {
		telemetry.Error("wipe.flush_failed", map[string]any{
			"user_id": userID,
			"error":   err,
		})
	}

	metrics.IncWipeRun()
	metrics.AddWipeDeleteFailures(report.Failed)

	remaining, err := s.List(ctx, userID)
	if err != nil {
		return report, fmt.Errorf("reload: %w", err)
	}
	report.Files = remaining
	report.Success = true

	telemetry.Info("wipe.complete", map[string]any{
		"user_id":   userID,
		"deleted":   report.Deleted,
		"failed":    report.Failed,
		"remaining": len(remaining),
	})
	return report, nil
}
