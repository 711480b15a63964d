package surrealdb

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	surreal "github.com/surrealdb/surrealdb.go"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/bobmcallan/investtrack/internal/common"
)

var (
	surrealOnce    sync.Once
	surrealAddress string
	surrealError   error
)

// startSurrealDB starts one SurrealDB container per test process and
// returns its WebSocket RPC address.
func startSurrealDB(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping SurrealDB integration test in short mode")
	}

	surrealOnce.Do(func() {
		ctx := context.Background()

		req := testcontainers.ContainerRequest{
			Image:        "surrealdb/surrealdb:v3.0.0",
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"start", "--user", "root", "--pass", "root"},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("8000/tcp"),
				wait.ForLog("Started web server"),
			).WithDeadline(60 * time.Second),
		}

		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		if err != nil {
			surrealError = fmt.Errorf("start SurrealDB container: %w", err)
			return
		}

		host, err := container.Host(ctx)
		if err != nil {
			container.Terminate(ctx)
			surrealError = fmt.Errorf("get SurrealDB host: %w", err)
			return
		}

		port, err := container.MappedPort(ctx, "8000/tcp")
		if err != nil {
			container.Terminate(ctx)
			surrealError = fmt.Errorf("get SurrealDB port: %w", err)
			return
		}

		surrealAddress = fmt.Sprintf("ws://%s:%s/rpc", host, port.Port())
	})

	if surrealError != nil {
		t.Fatalf("SurrealDB container failed: %v", surrealError)
	}
	return surrealAddress
}

// testDB returns a connected *surreal.DB using a unique database name per
// test, with the schema applied.
func testDB(t *testing.T) *surreal.DB {
	t.Helper()

	addr := startSurrealDB(t)
	ctx := context.Background()

	db, err := surreal.New(addr)
	if err != nil {
		t.Fatalf("connect to SurrealDB: %v", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": "root",
		"pass": "root",
	}); err != nil {
		t.Fatalf("sign in to SurrealDB: %v", err)
	}

	// SurrealDB rejects "/" in database names, which subtests produce.
	sanitized := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dbName := fmt.Sprintf("t_%s_%d", sanitized, time.Now().UnixNano()%100000)
	if err := db.Use(ctx, "investtrack_test", dbName); err != nil {
		t.Fatalf("select namespace/database: %v", err)
	}
	if err := defineSchema(ctx, db); err != nil {
		t.Fatalf("define schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close(context.Background())
	})

	return db
}

// testLogger returns a silent logger for tests.
func testLogger() *common.Logger {
	return common.NewSilentLogger()
}
