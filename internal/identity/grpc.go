package identity

import (
	"context"
	"io"
	"log"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/MikeMC777/storefront/internal/apperr"
)

// ServiceName is the fully qualified gRPC service name. Requests and
// responses are protobuf well-known wrappers: a user id in, a flag out.
const ServiceName = "storefront.identity.v1.Identity"

const (
	methodValidateUser = "/" + ServiceName + "/ValidateUser"
	methodIsAdmin      = "/" + ServiceName + "/IsAdmin"
)

type identityServer interface {
	ValidateUser(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
	IsAdmin(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*identityServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ValidateUser", Handler: unary(methodValidateUser, identityServer.ValidateUser)},
		{MethodName: "IsAdmin", Handler: unary(methodIsAdmin, identityServer.IsAdmin)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "storefront/identity/v1/identity.proto",
}

type rpcFunc func(identityServer, context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)

func unary(fullMethod string, call rpcFunc) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(wrapperspb.StringValue)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(identityServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(identityServer), ctx, req.(*wrapperspb.StringValue))
		}
		return interceptor(ctx, in, info, handler)
	}
}

type grpcServer struct{ svc *Service }

func (g grpcServer) ValidateUser(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	ok, err := g.svc.ValidateUser(ctx, in.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.Bool(ok), nil
}

func (g grpcServer) IsAdmin(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	ok, err := g.svc.IsAdmin(ctx, in.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.Bool(ok), nil
}

// Register exposes svc on a gRPC server.
func Register(s grpc.ServiceRegistrar, svc *Service) {
	s.RegisterService(&serviceDesc, grpcServer{svc: svc})
}

func toStatus(err error) error {
	switch apperr.KindOf(err) {
	case apperr.KindUnavailable:
		return status.Error(codes.Unavailable, err.Error())
	case apperr.KindNotFound:
		return status.Error(codes.NotFound, err.Error())
	default:
		log.Printf("[identity] rpc error: %v", err)
		return status.Error(codes.Internal, "internal error")
	}
}

// Client calls a remote identity service. It satisfies the same
// ValidateUser/IsAdmin surface as *Service.
type Client struct {
	conn   grpc.ClientConnInterface
	closer io.Closer
}

// Dial creates a lazily connecting client for addr.
func Dial(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, closer: conn}, nil
}

func NewClient(conn grpc.ClientConnInterface) *Client { return &Client{conn: conn} }

func (c *Client) ValidateUser(ctx context.Context, id string) (bool, error) {
	return c.ask(ctx, methodValidateUser, id)
}

func (c *Client) IsAdmin(ctx context.Context, id string) (bool, error) {
	return c.ask(ctx, methodIsAdmin, id)
}

func (c *Client) ask(ctx context.Context, method, id string) (bool, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.conn.Invoke(ctx, method, wrapperspb.String(id), out, grpc.WaitForReady(true)); err != nil {
		switch status.Code(err) {
		case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
			return false, apperr.Wrap(apperr.KindUnavailable, apperr.CodeServiceUnavailable, err)
		}
		return false, apperr.Internal("identity.rpc", err)
	}
	return out.GetValue(), nil
}

func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}
