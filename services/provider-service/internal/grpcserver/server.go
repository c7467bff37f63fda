//go:build protogen

package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/timestamppb"

	availabilityv1 "github.com/bookline/bookline/protos/gen/availability/v1"
	"github.com/bookline/bookline/services/provider-service/internal/storage"
)

type server struct {
	availabilityv1.UnimplementedAvailabilityServiceServer
	repo *storage.Repository
}

func Register(grpcServer *grpc.Server, repo *storage.Repository) {
	availabilityv1.RegisterAvailabilityServiceServer(grpcServer, &server{repo: repo})
}

func (s *server) ListWindows(ctx context.Context, req *availabilityv1.ListWindowsRequest) (*availabilityv1.ListWindowsResponse, error) {
	windows, err := s.repo.ListWindows(ctx, req.GetProviderId(), req.GetDate())
	if err != nil {
		return nil, err
	}

	resp := &availabilityv1.ListWindowsResponse{}
	for _, w := range windows {
		resp.Windows = append(resp.Windows, &availabilityv1.Window{
			Id:       w.ID,
			StartUtc: timestamppb.New(w.StartTime),
			EndUtc:   timestamppb.New(w.EndTime),
			IsOpen:   w.Open,
		})
	}
	return resp, nil
}
