package grpc

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection/grpc_reflection_v1"
	"google.golang.org/protobuf/types/known/structpb"
)

func startTestServer(t *testing.T) *grpc.ClientConn {
	t.Helper()
	return serveForTest(t, newTestServer(&mockSource{}, &mockExporter{}))
}

func serveForTest(t *testing.T, impl CaptionServiceServer) *grpc.ClientConn {
	t.Helper()
	srv := NewGRPCServer(impl)

	lis, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.GracefulStop)

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestNewGRPCServer_HealthCheck(t *testing.T) {
	conn := startTestServer(t)
	healthClient := grpc_health_v1.NewHealthClient(conn)

	for _, service := range []string{"", ServiceName} {
		resp, err := healthClient.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: service})
		if err != nil {
			t.Fatalf("Health check for %q failed: %v", service, err)
		}
		if resp.Status != grpc_health_v1.HealthCheckResponse_SERVING {
			t.Errorf("Expected SERVING status for %q, got %v", service, resp.Status)
		}
	}
}

func TestNewGRPCServer_ReflectionEnabled(t *testing.T) {
	conn := startTestServer(t)

	reflectionClient := grpc_reflection_v1.NewServerReflectionClient(conn)
	stream, err := reflectionClient.ServerReflectionInfo(context.Background())
	if err != nil {
		t.Fatalf("Failed to create reflection stream: %v", err)
	}

	err = stream.Send(&grpc_reflection_v1.ServerReflectionRequest{
		MessageRequest: &grpc_reflection_v1.ServerReflectionRequest_ListServices{ListServices: ""},
	})
	if err != nil {
		t.Fatalf("Failed to send reflection request: %v", err)
	}

	resp, err := stream.Recv()
	if err != nil {
		t.Fatalf("Failed to receive reflection response: %v", err)
	}

	listResp := resp.GetListServicesResponse()
	if listResp == nil {
		t.Fatal("Expected list services response")
	}
	found := false
	for _, svc := range listResp.Service {
		if svc.Name == ServiceName {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("Expected %s to be registered", ServiceName)
	}
}

func TestNewGRPCServer_CalledMultipleTimes(t *testing.T) {
	// the metrics are registered once per process
	srv1 := NewGRPCServer(newTestServer(&mockSource{}, &mockExporter{}))
	srv2 := NewGRPCServer(newTestServer(&mockSource{}, &mockExporter{}))

	if srv1 == nil || srv2 == nil {
		t.Fatal("Expected non-nil servers from multiple calls")
	}
}

func TestCaptionServiceClient_RoundTrip(t *testing.T) {
	client := NewCaptionServiceClient(startTestServer(t))
	ctx := context.Background()

	list, err := client.ListCaptions(ctx, mustStruct(t, map[string]any{"video_id": testVideoID}))
	if err != nil {
		t.Fatalf("ListCaptions: %v", err)
	}
	if got := list.GetFields()["default_caption_id"].GetStringValue(); got != "cap-en" {
		t.Errorf("Expected default caption cap-en, got %q", got)
	}

	rendered, err := client.RenderCaption(ctx, mustStruct(t, map[string]any{"video_id": testVideoID, "caption_id": "cap-fr", "format": "txt"}))
	if err != nil {
		t.Fatalf("RenderCaption: %v", err)
	}
	if got := rendered.GetFields()["file_name"].GetStringValue(); got != "Never_Gonna_Give_You_Up_fr.txt" {
		t.Errorf("Unexpected file name %q", got)
	}

	_, err = client.RenderCaption(ctx, mustStruct(t, map[string]any{"video_id": testVideoID, "format": "ass"}))
	st := requireCode(t, err, codes.InvalidArgument)
	requireBadRequestField(t, st, "format")
}

func TestCaptionServiceClient_RunBatch(t *testing.T) {
	client := NewCaptionServiceClient(startTestServer(t))

	stream, err := client.RunBatch(context.Background(), mustStruct(t, map[string]any{
		"video_id":    testVideoID,
		"caption_ids": []any{"cap-en", "cap-fr"},
		"formats":     []any{"vtt"},
	}))
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}

	var events []*structpb.Struct
	for {
		event, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Recv: %v", err)
		}
		events = append(events, event)
	}

	byType := eventsByType(events)
	if len(byType[EventFile]) != 2 || len(byType[EventDone]) != 1 {
		t.Fatalf("Expected 2 files and 1 done event, got %d / %d", len(byType[EventFile]), len(byType[EventDone]))
	}
	if got := byType[EventDone][0].GetFields()["completed"].GetNumberValue(); got != 2 {
		t.Errorf("Expected 2 completed items, got %v", got)
	}
}

type panickingServer struct{}

func (panickingServer) ListCaptions(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	panic("boom")
}

func (panickingServer) RenderCaption(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	panic("boom")
}

func (panickingServer) RunBatch(*structpb.Struct, grpc.ServerStreamingServer[structpb.Struct]) error {
	panic("boom")
}

func TestNewGRPCServer_RecoversFromPanics(t *testing.T) {
	conn := serveForTest(t, panickingServer{})
	client := NewCaptionServiceClient(conn)

	_, err := client.ListCaptions(context.Background(), mustStruct(t, map[string]any{"video_id": testVideoID}))
	requireCode(t, err, codes.Internal)

	stream, err := client.RunBatch(context.Background(), mustStruct(t, map[string]any{"video_id": testVideoID}))
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	_, err = stream.Recv()
	requireCode(t, err, codes.Internal)

	// the server keeps serving after a panic
	healthClient := grpc_health_v1.NewHealthClient(conn)
	if _, err := healthClient.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{}); err != nil {
		t.Errorf("Expected health check to succeed after a panic, got %v", err)
	}
}
