// Package rpc exposes the inference engine over gRPC without any
// generated stubs: the Solver service descriptor is parsed from an
// embedded .proto source at package init, the same way the teacher
// lineage's grpcLoadProto/grpcRegister build a *grpc.ServiceDesc from a
// *desc.ServiceDescriptor at runtime, except the schema is compiled in
// rather than loaded from a path the caller supplies.
package rpc

import (
	"context"
	_ "embed"
	"fmt"
	"net"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/latus-lang/latus/internal/atoms"
	"github.com/latus-lang/latus/internal/cache"
	"github.com/latus-lang/latus/internal/infer"
	"github.com/latus-lang/latus/internal/problemio"
)

//go:embed latus.proto
var protoSource string

var serviceDescriptor *desc.ServiceDescriptor

func init() {
	parser := protoparse.Parser{
		Accessor: protoparse.FileContentsFromMap(map[string]string{
			"latus.proto": protoSource,
		}),
	}
	fds, err := parser.ParseFiles("latus.proto")
	if err != nil {
		panic(fmt.Sprintf("rpc: parse embedded latus.proto: %v", err))
	}
	sd := fds[0].FindService("latus.Solver")
	if sd == nil {
		panic("rpc: latus.proto has no latus.Solver service")
	}
	serviceDescriptor = sd
}

// Server is a gRPC server exposing the Solver service, backed by a
// solution cache when one is configured.
type Server struct {
	grpc  *grpc.Server
	cache *cache.Store
}

// NewServer builds a Server. cache may be nil, in which case every
// request is solved from scratch.
func NewServer(store *cache.Store) *Server {
	s := &Server{grpc: grpc.NewServer(), cache: store}

	handler := &solverHandler{sd: serviceDescriptor, cache: store}
	svcDesc := &grpc.ServiceDesc{
		ServiceName: serviceDescriptor.GetFullyQualifiedName(),
		HandlerType: (*interface{})(nil),
		Metadata:    serviceDescriptor.GetFile().GetName(),
	}
	for _, method := range serviceDescriptor.GetMethods() {
		if method.IsClientStreaming() || method.IsServerStreaming() {
			continue
		}
		md := method
		svcDesc.Methods = append(svcDesc.Methods, grpc.MethodDesc{
			MethodName: md.GetName(),
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, _ grpc.UnaryServerInterceptor) (interface{}, error) {
				h := srv.(*solverHandler)
				return h.handleUnary(ctx, md, dec)
			},
		})
	}
	s.grpc.RegisterService(svcDesc, handler)
	return s
}

// Serve blocks accepting connections on addr until the listener fails
// or Stop is called.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("rpc: listen %s: %w", addr, err)
	}
	return s.grpc.Serve(lis)
}

// Stop gracefully shuts the server down.
func (s *Server) Stop() {
	s.grpc.GracefulStop()
}

type solverHandler struct {
	sd    *desc.ServiceDescriptor
	cache *cache.Store
}

func (h *solverHandler) handleUnary(_ context.Context, md *desc.MethodDescriptor, dec func(interface{}) error) (interface{}, error) {
	inMsg := dynamic.NewMessage(md.GetInputType())
	if err := dec(inMsg); err != nil {
		return nil, err
	}
	problemYAML, _ := inMsg.TryGetFieldByName("problem_yaml")
	yamlBytes, _ := problemYAML.([]byte)

	solutionYAML, solveErr := h.solve(yamlBytes)

	outMsg := dynamic.NewMessage(md.GetOutputType())
	if solveErr != nil {
		_ = outMsg.SetFieldByName("error", solveErr.Error())
		return outMsg, nil
	}
	_ = outMsg.SetFieldByName("solution_yaml", solutionYAML)
	return outMsg, nil
}

func (h *solverHandler) solve(problemYAML []byte) ([]byte, error) {
	var key string
	if h.cache != nil {
		key = cache.Key(problemYAML)
		if cached, ok, err := h.cache.Get(key); err == nil && ok {
			return cached, nil
		}
	}

	problem, err := problemio.Decode(problemYAML)
	if err != nil {
		return nil, err
	}
	constraints, err := problem.ToConstraints()
	if err != nil {
		return nil, err
	}
	sigma, err := Infer(constraints)
	if err != nil {
		return nil, err
	}
	out, err := problemio.EncodeSolution(problemio.Vars(constraints), sigma)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		_ = h.cache.Put(key, out)
	}
	return out, nil
}

// Client dials a Solver daemon and solves problems remotely.
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to a Solver daemon at addr.
func Dial(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("rpc: dial %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// Close releases the client's connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Solve sends problemYAML to the daemon and returns its solution YAML.
func (c *Client) Solve(ctx context.Context, problemYAML []byte) ([]byte, error) {
	md := serviceDescriptor.FindMethodByName("Solve")

	reqMsg := dynamic.NewMessage(md.GetInputType())
	_ = reqMsg.SetFieldByName("problem_yaml", problemYAML)

	respMsg := dynamic.NewMessage(md.GetOutputType())

	fullMethod := "/" + serviceDescriptor.GetFullyQualifiedName() + "/Solve"
	if err := c.conn.Invoke(ctx, fullMethod, reqMsg, respMsg); err != nil {
		return nil, fmt.Errorf("rpc: invoke: %w", err)
	}

	if errStr, _ := respMsg.TryGetFieldByName("error"); errStr != nil {
		if s, ok := errStr.(string); ok && s != "" {
			return nil, fmt.Errorf("rpc: remote solve failed: %s", s)
		}
	}
	solutionYAML, _ := respMsg.TryGetFieldByName("solution_yaml")
	b, _ := solutionYAML.([]byte)
	return b, nil
}

// Infer runs the engine over cs using the fixed atoms.Value/string/string
// instantiation the wire protocol speaks, so daemon and in-process
// callers (latusc solve without -remote) share one code path.
func Infer(cs []infer.Constraint[atoms.Value, string, string]) (infer.Solution[atoms.Value, string, string], error) {
	return infer.Solve(infer.Problem[atoms.Value, string, string]{
		Constraints: cs,
		Atoms:       atoms.Unifier{},
	})
}
