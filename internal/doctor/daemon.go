package doctor

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rileyhilliard/dockmon/internal/docker"
	"github.com/rileyhilliard/dockmon/internal/logger"
)

// DefaultDaemonTimeout bounds the reachability check.
const DefaultDaemonTimeout = 10 * time.Second

// Prober is the part of the daemon client the check needs.
type Prober interface {
	io.Closer
	Ping(ctx context.Context) error
	ListContainers(ctx context.Context, all bool) ([]docker.Summary, error)
}

// DaemonCheck pings the daemon and counts its containers.
type DaemonCheck struct {
	Host    string
	Timeout time.Duration
	// Connect opens the client. Defaults to docker.NewClient.
	Connect func(host string) (Prober, error)
}

func (c *DaemonCheck) Name() string     { return "daemon" }
func (c *DaemonCheck) Category() string { return "DAEMON" }

func (c *DaemonCheck) Run() CheckResult {
	connect := c.Connect
	if connect == nil {
		connect = func(host string) (Prober, error) {
			client, err := docker.NewClient(host, logger.Default())
			if err != nil {
				return nil, err
			}
			return client, nil
		}
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultDaemonTimeout
	}

	target := c.Host
	if target == "" {
		target = "the default socket"
	}

	client, err := connect(c.Host)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Cannot create a client for %s: %s", target, errorLine(err)),
			Suggestion: "Check the --host value or DOCKER_HOST",
		}
	}
	defer client.Close() //nolint:errcheck // Best-effort close, error not actionable

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Daemon at %s unreachable: %s", target, errorLine(err)),
			Suggestion: "Start the daemon, or check that your user may access its socket",
		}
	}

	containers, err := client.ListContainers(ctx, true)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("Daemon reachable but listing containers failed: %s", errorLine(err)),
			Suggestion: "Check the daemon logs",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Daemon reachable at %s (%d containers)", target, len(containers)),
	}
}

// errorLine keeps the first non-empty line of a possibly multi-line error
// without its failure symbol.
func errorLine(err error) string {
	for _, line := range strings.Split(err.Error(), "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(line, "✗"))
		if line != "" {
			return line
		}
	}
	return err.Error()
}
