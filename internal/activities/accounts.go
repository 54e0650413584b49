package activities

import (
	"context"
	"log/slog"

	"github.com/studiopipe/studiopipe/internal/domain"
	"github.com/studiopipe/studiopipe/internal/ports"
)

// AccountActivities is the only mutation path to the shared account pool.
type AccountActivities struct {
	Pool   ports.AccountPool
	Logger *slog.Logger
}

func NewAccountActivities(pool ports.AccountPool, logger *slog.Logger) *AccountActivities {
	return &AccountActivities{Pool: pool, Logger: logger.With("component", "account-activities")}
}

func (a *AccountActivities) WarmUpAccount(ctx context.Context, ref domain.AccountRef) error {
	return a.Pool.WarmUp(ctx, ref)
}

type CheckAccountHealthOutput struct {
	Healthy       bool   `json:"healthy"`
	NeedsRotation bool   `json:"needs_rotation"`
	Detail        string `json:"detail,omitempty"`
}

func (a *AccountActivities) CheckAccountHealth(ctx context.Context, ref domain.AccountRef) (*CheckAccountHealthOutput, error) {
	health, err := a.Pool.Health(ctx, ref)
	if err != nil {
		return nil, err
	}
	return &CheckAccountHealthOutput{
		Healthy:       health.Healthy,
		NeedsRotation: health.NeedsRotation,
		Detail:        health.Detail,
	}, nil
}

func (a *AccountActivities) RotateProxy(ctx context.Context, ref domain.AccountRef) error {
	a.Logger.Info("rotating proxy", "platform", ref.Platform, "account", ref.AccountID)
	return a.Pool.RotateProxy(ctx, ref)
}
