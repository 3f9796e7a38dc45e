//go:build integration
// +build integration

package artifact

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startMinio(t *testing.T) (endpoint string, stop func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)

	req := tc.ContainerRequest{
		Image:        "minio/minio:latest",
		ExposedPorts: []string{"9000/tcp"},
		Cmd:          []string{"server", "/data"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     "minioadmin",
			"MINIO_ROOT_PASSWORD": "minioadmin",
		},
		WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp").WithStartupTimeout(2 * time.Minute),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		cancel()
		t.Fatalf("failed to start minio container: %v", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get container host: %v", err)
	}
	mapped, err := c.MappedPort(ctx, "9000/tcp")
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get mapped port: %v", err)
	}

	endpoint = fmt.Sprintf("%s:%s", host, mapped.Port())
	stop = func() {
		_ = c.Terminate(context.Background())
		cancel()
	}
	return endpoint, stop
}

func TestMinioStore_Integration(t *testing.T) {
	endpoint, stop := startMinio(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, err := NewMinioStore(ctx, endpoint, "minioadmin", "minioadmin", "charts", false)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if _, err := store.Put(ctx, "chart_x.png", []byte("png-bytes"), ContentTypePNG); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := store.Put(ctx, "chart_x.png", []byte("other"), ContentTypePNG); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}

	data, contentType, err := store.Get(ctx, "chart_x.png")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(data) != "png-bytes" || contentType != ContentTypePNG {
		t.Errorf("get = %q %q", data, contentType)
	}
}
