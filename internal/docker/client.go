package docker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/rileyhilliard/dockmon/internal/errors"
	"github.com/rileyhilliard/dockmon/internal/logger"
	"github.com/rileyhilliard/dockmon/internal/state"
	"github.com/rileyhilliard/dockmon/pkg/sshutil"
)

// sshPlaceholderHost is handed to the SDK for ssh:// hosts. The tunnel's
// dialer ignores it; it only needs to parse as an http URL.
const sshPlaceholderHost = "http://docker.example.com"

// Client implements Daemon over the Docker Engine SDK.
type Client struct {
	cli    *client.Client
	tunnel *sshutil.Tunnel
	host   string
	log    logger.Logger
}

var _ Daemon = (*Client)(nil)

// NewClient builds a client for host. An empty host uses DOCKER_HOST and
// the SDK defaults; ssh:// hosts are tunnelled to the remote socket.
// Nothing is dialled until the first call.
func NewClient(host string, log logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.Noop()
	}

	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}

	var tunnel *sshutil.Tunnel
	switch {
	case strings.HasPrefix(host, "ssh://"):
		target, err := sshutil.ParseTarget(host)
		if err != nil {
			return nil, err
		}
		tunnel = sshutil.NewTunnel(target, sshutil.DefaultDialTimeout)
		opts = append(opts,
			client.WithHost(sshPlaceholderHost),
			client.WithDialContext(tunnel.DialContext))
		log.Debug("tunnelling to %s via ssh (socket %s)", target.Host, target.Socket)
	case host != "":
		opts = append(opts, client.WithHost(host))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrDocker,
			fmt.Sprintf("Couldn't configure a docker client for '%s'", displayHost(host)),
			"Check the host URL and any DOCKER_* environment variables.")
	}

	return &Client{cli: cli, tunnel: tunnel, host: host, log: log}, nil
}

func displayHost(host string) string {
	if host == "" {
		return client.DefaultDockerHost
	}
	return host
}

// Host is the endpoint the client was configured with.
func (c *Client) Host() string {
	return displayHost(c.host)
}

// Ping checks the daemon answers.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.cli.Ping(ctx); err != nil {
		return errors.WrapWithCode(err, errors.ErrDocker,
			fmt.Sprintf("Can't reach the docker daemon at %s", c.Host()),
			"Is docker running? Check with: docker info")
	}
	c.log.Debug("connected to %s (api %s)", c.Host(), c.cli.ClientVersion())
	return nil
}

// ListContainers returns every container, or only running ones when all is false.
func (c *Client) ListContainers(ctx context.Context, all bool) ([]Summary, error) {
	list, err := c.cli.ContainerList(ctx, container.ListOptions{All: all})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	out := make([]Summary, 0, len(list))
	for _, ct := range list {
		out = append(out, toSummary(ct))
	}
	return out, nil
}

func toSummary(ct types.Container) Summary {
	var name string
	if len(ct.Names) > 0 {
		name = ct.Names[0]
	}
	return Summary{
		ID:      state.ContainerID(ct.ID),
		Name:    state.NewContainerName(name),
		Image:   state.ContainerImage(ct.Image),
		State:   state.ParseState(ct.State),
		Status:  ct.Status,
		Created: time.Unix(ct.Created, 0),
	}
}

// Stats takes a one-shot stats sample.
func (c *Client) Stats(ctx context.Context, id state.ContainerID) (StatsSample, error) {
	resp, err := c.cli.ContainerStatsOneShot(ctx, string(id))
	if err != nil {
		return StatsSample{}, fmt.Errorf("failed to get stats for %s: %w", id.Short(), err)
	}
	defer resp.Body.Close()

	var raw types.StatsJSON
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return StatsSample{}, fmt.Errorf("failed to decode stats for %s: %w", id.Short(), err)
	}
	return normalizeStats(raw), nil
}

// Control runs a lifecycle command. Stop and restart use the daemon's
// default timeout; remove is forced and keeps volumes.
func (c *Client) Control(ctx context.Context, id state.ContainerID, kind state.CommandKind) error {
	var err error
	switch kind {
	case state.CmdStart:
		err = c.cli.ContainerStart(ctx, string(id), container.StartOptions{})
	case state.CmdStop:
		err = c.cli.ContainerStop(ctx, string(id), container.StopOptions{})
	case state.CmdPause:
		err = c.cli.ContainerPause(ctx, string(id))
	case state.CmdUnpause:
		err = c.cli.ContainerUnpause(ctx, string(id))
	case state.CmdRestart:
		err = c.cli.ContainerRestart(ctx, string(id), container.StopOptions{})
	case state.CmdRemove:
		err = c.cli.ContainerRemove(ctx, string(id), container.RemoveOptions{Force: true})
	default:
		return fmt.Errorf("%s is not a lifecycle command", kind)
	}
	if err != nil {
		return fmt.Errorf("failed to %s %s: %w", kind, id.Short(), err)
	}
	c.log.Debug("%s %s", kind, id.Short())
	return nil
}

// Logs fetches log lines. Timestamps are always requested so incremental
// fetches can resume from the last line seen.
func (c *Client) Logs(ctx context.Context, id state.ContainerID, opts LogOptions) ([]state.LogLine, error) {
	rc, err := c.cli.ContainerLogs(ctx, string(id), container.LogsOptions{
		ShowStdout: true,
		ShowStderr: opts.Stderr,
		Since:      sinceParam(opts.Since),
		Timestamps: true,
		Tail:       tailParam(opts.Tail),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get logs for %s: %w", id.Short(), err)
	}
	defer rc.Close()

	lines, err := parseLogs(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read logs for %s: %w", id.Short(), err)
	}
	return lines, nil
}

// Inspect returns the raw inspect document, indented.
func (c *Client) Inspect(ctx context.Context, id state.ContainerID) ([]byte, error) {
	_, raw, err := c.cli.ContainerInspectWithRaw(ctx, string(id), false)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect %s: %w", id.Short(), err)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return nil, fmt.Errorf("failed to format inspect output: %w", err)
	}
	return out.Bytes(), nil
}

// Exec creates an interactive shell in the container. The shell starts
// when the returned session is Run.
func (c *Client) Exec(ctx context.Context, id state.ContainerID) (Session, error) {
	s, err := newExecSession(ctx, c.cli, string(id))
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrExec,
			fmt.Sprintf("Couldn't start a shell in %s", id.Short()),
			"The image needs sh on its PATH.")
	}
	return s, nil
}

// Close releases the HTTP client and any SSH tunnel.
func (c *Client) Close() error {
	err := c.cli.Close()
	if c.tunnel != nil {
		if terr := c.tunnel.Close(); err == nil {
			err = terr
		}
	}
	return err
}
