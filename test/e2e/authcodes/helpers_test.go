//go:build e2e

package authcodes_test

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"os/exec"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/codesdk"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/jwtx"
)

/*
 * Shared setup for the auth code service end-to-end tests: the image is
 * built once, each test gets its own container and database.
 */

const (
	testImageName = "goalkeeper-authcodes-test:latest"

	adminSecret = "e2e-admin-secret-0123456789abcdef"
	adminIssuer = "goalkeeper-authcodes"
)

// The log sender writes the deep link into the container log in dev.
var codeInLog = regexp.MustCompile(`code=([A-Za-z0-9_-]{32})`)

// TestMain builds the Docker image once before all tests and removes it
// afterwards.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building auth codes Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up auth codes Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	cmd := exec.CommandContext(context.Background(), "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/authcodes/Dockerfile",
		"../../../")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}

func cleanupDockerImage() {
	cmd := exec.CommandContext(context.Background(), "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // image might not exist
}

// service is a running container plus a client pointed at it.
type service struct {
	container testcontainers.Container
	client    *codesdk.Client

	// codes already scraped from the log
	seen int
}

// setupService starts the service with relaxed rate limits. extra overrides
// or adds environment variables.
func setupService(t *testing.T, extra map[string]string) *service {
	t.Helper()
	ctx := context.Background()

	env := map[string]string{
		"ENV":                         "dev",
		"LOG_LEVEL":                   "info",
		"LOG_FORMAT":                  "json",
		"ADMIN_JWT_SECRET":            adminSecret,
		"ADMIN_JWT_ISSUER":            adminIssuer,
		"APP_BASE_URL":                "https://goalkeeper.example",
		"RATELIMIT_VALIDATE_REQUESTS": "1000",
		"RATELIMIT_VALIDATE_BURST":    "1000",
		"RATELIMIT_SEND_REQUESTS":     "1000",
		"RATELIMIT_SEND_BURST":        "1000",
		"RATELIMIT_ADMIN_REQUESTS":    "1000",
		"RATELIMIT_ADMIN_BURST":       "1000",
		"RATELIMIT_READ_REQUESTS":     "1000",
		"RATELIMIT_READ_BURST":        "1000",
	}
	maps.Copy(env, extra)

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        testImageName,
			ExposedPorts: []string{"8080/tcp"},
			Env:          env,
			WaitingFor: wait.ForHTTP("/livez").
				WithPort("8080/tcp").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)
	host, err := container.Host(ctx)
	require.NoError(t, err)

	return &service{
		container: container,
		client:    codesdk.NewClient(fmt.Sprintf("http://%s:%s", host, mappedPort.Port())),
	}
}

// admin returns a client carrying a codes:admin token.
func (s *service) admin(t *testing.T) *codesdk.Client {
	t.Helper()

	signer, err := jwtx.NewHS256(adminSecret, adminIssuer)
	require.NoError(t, err)
	token, err := signer.Sign(jwtx.NewClaims("e2e", "", []string{codesdk.AdminScope}, time.Hour, time.Now()))
	require.NoError(t, err)

	return s.client.WithToken(token)
}

// lastCode waits for a code newer than the last one scraped and returns it.
func (s *service) lastCode(t *testing.T) string {
	t.Helper()

	var code string
	require.Eventually(t, func() bool {
		logs, err := s.container.Logs(context.Background())
		if err != nil {
			return false
		}
		defer logs.Close()

		out, err := io.ReadAll(logs)
		if err != nil {
			return false
		}
		matches := codeInLog.FindAllSubmatch(out, -1)
		if len(matches) <= s.seen {
			return false
		}
		s.seen = len(matches)
		code = string(matches[len(matches)-1][1])
		return true
	}, 5*time.Second, 100*time.Millisecond, "no code found in container logs")

	return code
}

// sendConfirmation emails a confirmation code and returns its plaintext.
func (s *service) sendConfirmation(t *testing.T, userID string) string {
	t.Helper()

	resp, err := s.client.SendEmailConfirmation(t.Context(), codesdk.SendCodeRequest{
		Email:  userID + "@example.com",
		UserID: userID,
	})
	require.NoError(t, err)
	require.True(t, resp.Success)

	return s.lastCode(t)
}

func assertHealthy(t *testing.T, health *codesdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}
