package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "matrix.v1.DonationService"

// DonationServiceServer is served over the generic Struct message, the bot
// side builds requests as plain JSON objects.
type DonationServiceServer interface {
	InitiateDonation(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error)
	ConfirmDonationLeg(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error)
	ExpireDonation(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error)
	ListDonations(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error)
	RegisterUser(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error)
	GetUser(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error)
	GetReferrals(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error)
	GetMatrix(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error)
	GetMatrixTeam(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error)
}

func RegisterDonationServiceServer(s grpc.ServiceRegistrar, srv DonationServiceServer) {
	s.RegisterService(&DonationServiceDesc, srv)
}

type unaryMethod func(DonationServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(DonationServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(DonationServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var DonationServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DonationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("InitiateDonation", DonationServiceServer.InitiateDonation),
		unaryHandler("ConfirmDonationLeg", DonationServiceServer.ConfirmDonationLeg),
		unaryHandler("ExpireDonation", DonationServiceServer.ExpireDonation),
		unaryHandler("ListDonations", DonationServiceServer.ListDonations),
		unaryHandler("RegisterUser", DonationServiceServer.RegisterUser),
		unaryHandler("GetUser", DonationServiceServer.GetUser),
		unaryHandler("GetReferrals", DonationServiceServer.GetReferrals),
		unaryHandler("GetMatrix", DonationServiceServer.GetMatrix),
		unaryHandler("GetMatrixTeam", DonationServiceServer.GetMatrixTeam),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "matrix/v1/donation.proto",
}
