package client

import (
	"context"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-matrix-service/internal/delivery/grpcapi"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// MatrixClient talks to a running DonationService, used by operator commands.
type MatrixClient struct {
	conn    *grpc.ClientConn
	timeout time.Duration
}

func NewMatrixClient(addr string, opts ...grpc.DialOption) (*MatrixClient, error) {
	if len(opts) == 0 {
		opts = []grpc.DialOption{
			grpc.WithTransportCredentials(insecure.NewCredentials()),
			grpc.WithDefaultServiceConfig(`{"loadBalancingPolicy": "round_robin"}`),
		}
	}
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, err
	}
	return &MatrixClient{
		conn:    conn,
		timeout: 10 * time.Second,
	}, nil
}

func (c *MatrixClient) Close() error {
	return c.conn.Close()
}

func (c *MatrixClient) call(ctx context.Context, method string, in map[string]any) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(in)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", method, err)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, "/"+grpcapi.ServiceName+"/"+method, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *MatrixClient) InitiateDonation(ctx context.Context, userID int64, amount float64, buildType string) (*structpb.Struct, error) {
	return c.call(ctx, "InitiateDonation", map[string]any{
		"user_id":    userID,
		"amount":     amount,
		"build_type": buildType,
	})
}

func (c *MatrixClient) ConfirmDonationLeg(ctx context.Context, transactionID string) error {
	_, err := c.call(ctx, "ConfirmDonationLeg", map[string]any{"transaction_id": transactionID})
	return err
}

func (c *MatrixClient) ExpireDonation(ctx context.Context, donateID string) error {
	_, err := c.call(ctx, "ExpireDonation", map[string]any{"donate_id": donateID})
	return err
}

func (c *MatrixClient) GetMatrix(ctx context.Context, matrixID string) (*structpb.Struct, error) {
	return c.call(ctx, "GetMatrix", map[string]any{"matrix_id": matrixID})
}
