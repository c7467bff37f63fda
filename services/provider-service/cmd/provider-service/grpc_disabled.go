//go:build !protogen

package main

import (
	"context"
	"log/slog"

	"github.com/bookline/bookline/services/provider-service/internal/storage"
)

func startGrpcServer(_ context.Context, _ *slog.Logger, _ *storage.Repository) error {
	return nil
}
