package grpcapi_test

import (
	"context"
	"net"
	"testing"

	"github.com/LavaJover/shvark-matrix-service/internal/delivery/grpcapi"
	"github.com/LavaJover/shvark-matrix-service/internal/infrastructure/memory"
	"github.com/LavaJover/shvark-matrix-service/internal/usecase"
	"github.com/LavaJover/shvark-matrix-service/internal/usecase/donation"
	userdto "github.com/LavaJover/shvark-matrix-service/internal/usecase/dto/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

const houseID = 1

func newClient(t *testing.T) *grpc.ClientConn {
	t.Helper()

	store := memory.NewStore()
	uow := memory.NewUnitOfWork(store)
	users := usecase.NewDefaultUserUsecase(uow, store.Repositories(), nil)
	_, err := users.EnsureHouse(context.Background(), &userdto.EnsureHouseInput{UserID: houseID, Username: "house"})
	require.NoError(t, err)
	donations := donation.NewDefaultDonationUsecase(uow, store.Repositories(), nil, nil, nil, nil, donation.Config{})

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	grpcapi.RegisterDonationServiceServer(srv, grpcapi.NewDonationHandler(donations, users))
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func call(t *testing.T, conn *grpc.ClientConn, method string, in map[string]any) (*structpb.Struct, error) {
	t.Helper()
	req, err := structpb.NewStruct(in)
	require.NoError(t, err)
	out := new(structpb.Struct)
	err = conn.Invoke(context.Background(), "/"+grpcapi.ServiceName+"/"+method, req, out)
	return out, err
}

func TestDonationFlowOverGRPC(t *testing.T) {
	conn := newClient(t)

	out, err := call(t, conn, "RegisterUser", map[string]any{"user_id": 10, "username": "ten"})
	require.NoError(t, err)
	assert.True(t, out.Fields["created"].GetBoolValue())
	user := out.Fields["user"].GetStructValue()
	assert.Equal(t, float64(houseID), user.Fields["sponsor_user_id"].GetNumberValue())

	out, err = call(t, conn, "InitiateDonation", map[string]any{"user_id": 10, "amount": 10, "build_type": "trinary"})
	require.NoError(t, err)
	assert.True(t, out.Fields["placed"].GetBoolValue())
	assert.Equal(t, "BASE", out.Fields["status"].GetStringValue())
	recipients := out.Fields["recipients"].GetListValue().GetValues()
	require.Len(t, recipients, 1)
	assert.Equal(t, float64(houseID), recipients[0].GetStructValue().Fields["recipient_id"].GetNumberValue())
	txIDs := out.Fields["transaction_ids"].GetListValue().GetValues()
	require.Len(t, txIDs, 1)

	_, err = call(t, conn, "InitiateDonation", map[string]any{"user_id": 10, "amount": 30, "build_type": "trinary"})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	_, err = call(t, conn, "ConfirmDonationLeg", map[string]any{"transaction_id": txIDs[0].GetStringValue()})
	require.NoError(t, err)

	out, err = call(t, conn, "GetUser", map[string]any{"user_id": 10})
	require.NoError(t, err)
	assert.Equal(t, "BASE", out.Fields["user"].GetStructValue().Fields["trinary_status"].GetStringValue())

	out, err = call(t, conn, "ListDonations", map[string]any{"user_id": 10})
	require.NoError(t, err)
	sent := out.Fields["sent"].GetListValue().GetValues()
	require.Len(t, sent, 1)
	assert.True(t, sent[0].GetStructValue().Fields["is_confirmed"].GetBoolValue())

	out, err = call(t, conn, "GetReferrals", map[string]any{"user_id": houseID})
	require.NoError(t, err)
	assert.Len(t, out.Fields["referrals"].GetListValue().GetValues(), 1)
}

func TestGRPCErrorCodes(t *testing.T) {
	conn := newClient(t)

	tests := []struct {
		name   string
		method string
		in     map[string]any
		want   codes.Code
	}{
		{name: "missing user id", method: "InitiateDonation", in: map[string]any{"amount": 10, "build_type": "trinary"}, want: codes.InvalidArgument},
		{name: "fractional user id", method: "GetUser", in: map[string]any{"user_id": 1.5}, want: codes.InvalidArgument},
		{name: "bad build type", method: "InitiateDonation", in: map[string]any{"user_id": 10, "amount": 10, "build_type": "quad"}, want: codes.InvalidArgument},
		{name: "amount off the table", method: "InitiateDonation", in: map[string]any{"user_id": houseID, "amount": 11, "build_type": "binary"}, want: codes.InvalidArgument},
		{name: "house cannot donate", method: "InitiateDonation", in: map[string]any{"user_id": houseID, "amount": 10, "build_type": "binary"}, want: codes.InvalidArgument},
		{name: "unknown user", method: "InitiateDonation", in: map[string]any{"user_id": 77, "amount": 10, "build_type": "binary"}, want: codes.NotFound},
		{name: "unknown matrix", method: "GetMatrix", in: map[string]any{"matrix_id": "nope"}, want: codes.NotFound},
		{name: "unknown transaction", method: "ConfirmDonationLeg", in: map[string]any{"transaction_id": "nope"}, want: codes.NotFound},
		{name: "empty transaction id", method: "ConfirmDonationLeg", in: map[string]any{"transaction_id": ""}, want: codes.InvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := call(t, conn, tt.method, tt.in)
			assert.Equal(t, tt.want, status.Code(err))
		})
	}
}

func TestGetMatrixTeam(t *testing.T) {
	conn := newClient(t)

	_, err := call(t, conn, "RegisterUser", map[string]any{"user_id": 10})
	require.NoError(t, err)
	out, err := call(t, conn, "InitiateDonation", map[string]any{"user_id": 10, "amount": 10, "build_type": "binary"})
	require.NoError(t, err)
	target := out.Fields["target_matrix_id"].GetStringValue()
	tx := out.Fields["transaction_ids"].GetListValue().GetValues()[0].GetStringValue()
	_, err = call(t, conn, "ConfirmDonationLeg", map[string]any{"transaction_id": tx})
	require.NoError(t, err)

	out, err = call(t, conn, "GetMatrixTeam", map[string]any{"matrix_id": target})
	require.NoError(t, err)
	first := out.Fields["first_level"].GetListValue().GetValues()
	require.Len(t, first, 1)
	assert.Equal(t, float64(10), first[0].GetNumberValue())
	m := out.Fields["matrix"].GetStructValue()
	assert.Equal(t, float64(houseID), m.Fields["owner_id"].GetNumberValue())
	assert.Equal(t, float64(1), m.Fields["occupied"].GetNumberValue())
}
