package main

import (
	"context"
	"log/slog"

	"alyra/internal/platform/config"
	"alyra/internal/voting/service"
	"alyra/pkg/domain"
	"alyra/pkg/requestcontext"
)

// seed opens one ballot administered by SEED_ADMIN and registers SEED_VOTERS
// on it. Nothing happens when SEED_ADMIN is unset.
func seed(ctx context.Context, svc *service.Service, cfg config.Server, log *slog.Logger) error {
	if cfg.SeedAdmin == "" {
		return nil
	}
	admin, err := domain.ParseIdentity(cfg.SeedAdmin)
	if err != nil {
		return err
	}
	ctx = requestcontext.WithIdentity(ctx, admin)
	ctx = requestcontext.WithRequestID(ctx, "seed")

	b, err := svc.CreateBallot(ctx)
	if err != nil {
		return err
	}
	for _, raw := range cfg.SeedVoters {
		voter, err := domain.ParseIdentity(raw)
		if err != nil {
			return err
		}
		if err := svc.AddVoter(ctx, b.ID, voter); err != nil {
			return err
		}
	}
	log.Info("seeded ballot",
		"ballot_id", b.ID.String(),
		"administrator", admin.String(),
		"voters", len(cfg.SeedVoters),
	)
	return nil
}
