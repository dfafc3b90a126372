package probe

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cfdtools/solvewatch/internal/errors"
	"github.com/cfdtools/solvewatch/internal/inventory"
	"github.com/cfdtools/solvewatch/internal/logger"
	"github.com/cfdtools/solvewatch/pkg/sshutil"
)

// Raw holds the raw field values one probe collects from an instance. Parsing
// the timestep line into a structured sample happens downstream; a Raw is
// only ever fully populated or absent — a probe that fails partway yields an
// error, never a half-filled Raw.
type Raw struct {
	TimestepLine string
	CSVCount     int
	FreeDisk     string
	Process      string
}

// CommandError is a remote command that ran but reported failure.
type CommandError struct {
	Cmd      string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command failed with exit code %d: %s", e.ExitCode, strings.TrimSpace(e.Stderr))
}

// Prober executes the probe command set against instances, reusing pooled SSH
// connections across cycles.
type Prober struct {
	pool *Pool
	log  logger.Logger
}

// NewProber creates a prober that dials with the given SSH options.
func NewProber(opts sshutil.Options) *Prober {
	return &Prober{
		pool: NewPool(opts),
		log:  logger.NewEnvLogger("[probe]"),
	}
}

// SetLogger replaces the prober's logger.
func (p *Prober) SetLogger(log logger.Logger) {
	p.log = log
}

// Close shuts down all pooled connections.
func (p *Prober) Close() {
	p.pool.Close()
}

// Probe runs the full command set against one instance. Any failure — no
// address, dial, auth, command, context cancellation — aborts this instance's
// probe and is returned as a structured error; nothing here affects any other
// instance.
func (p *Prober) Probe(ctx context.Context, inst inventory.Identity) (*Raw, error) {
	if !inst.HasAddress() {
		return nil, errors.New(errors.ErrAddr,
			"No reachable address",
			"The instance has no public endpoint; check it is running and reachable")
	}

	client, err := p.pool.Get(inst.Address)
	if err != nil {
		return nil, err
	}

	p.log.Debug("probing %s at %s", inst.Name, inst.Address)

	timestepLine, err := p.run(ctx, client, inst.Address, TimestepCommand(inst.Name))
	if err != nil {
		return nil, err
	}

	csvOut, err := p.run(ctx, client, inst.Address, CSVCountCommand(inst.Name))
	if err != nil {
		return nil, err
	}
	// An empty directory still prints 0; anything unparseable reads as 0.
	csvCount, convErr := strconv.Atoi(strings.TrimSpace(csvOut))
	if convErr != nil {
		csvCount = 0
	}

	freeDisk, err := p.run(ctx, client, inst.Address, FreeDiskCommand())
	if err != nil {
		return nil, err
	}

	process, err := p.activeProcess(ctx, client, inst.Address)
	if err != nil {
		return nil, err
	}

	return &Raw{
		TimestepLine: timestepLine,
		CSVCount:     csvCount,
		FreeDisk:     freeDisk,
		Process:      process,
	}, nil
}

// activeProcess checks the pipeline stages in priority order and returns the
// first one with a live process, or ProcessIdle.
func (p *Prober) activeProcess(ctx context.Context, client sshutil.Executor, address string) (string, error) {
	for _, check := range processChecks {
		out, err := p.run(ctx, client, address, check.cmd)
		if err != nil {
			return "", err
		}
		if out != "" {
			return check.label, nil
		}
	}
	return ProcessIdle, nil
}

// run executes one command, trimming the output. A non-zero exit with
// non-empty stderr is a command failure; a non-zero exit with empty stderr is
// tolerated (grep finding nothing exits 1). Transport-level failures drop the
// pooled connection so the next cycle redials.
func (p *Prober) run(ctx context.Context, client sshutil.Executor, address, cmd string) (string, error) {
	select {
	case <-ctx.Done():
		return "", errors.WrapWithCode(ctx.Err(), errors.ErrSSH,
			"Probe cancelled",
			"")
	default:
	}

	stdout, stderr, exitCode, err := client.Exec(cmd)
	if err != nil {
		p.pool.CloseOne(address)
		return "", err
	}

	if exitCode != 0 && len(strings.TrimSpace(string(stderr))) > 0 {
		cmdErr := &CommandError{
			Cmd:      cmd,
			ExitCode: exitCode,
			Stderr:   string(stderr),
		}
		return "", errors.WrapWithCode(cmdErr, errors.ErrCmd,
			fmt.Sprintf("Remote command failed: %s", cmd),
			"Check the job directory and solver output on the instance")
	}

	return strings.TrimSpace(string(stdout)), nil
}
