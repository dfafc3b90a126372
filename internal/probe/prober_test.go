package probe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfdtools/solvewatch/internal/errors"
	"github.com/cfdtools/solvewatch/internal/inventory"
	"github.com/cfdtools/solvewatch/internal/logger"
	"github.com/cfdtools/solvewatch/pkg/sshutil"
	"github.com/cfdtools/solvewatch/pkg/sshutil/sshtest"
)

func newTestProber(mock *sshtest.MockClient) *Prober {
	p := NewProber(sshutil.Options{})
	p.SetLogger(logger.Noop())
	p.pool.dial = func(host string, opts sshutil.Options) (sshutil.Executor, error) {
		return mock, nil
	}
	return p
}

func testInstance() inventory.Identity {
	return inventory.Identity{
		ID:      "i-0abc",
		Name:    "run_42_7ms",
		Address: "10.0.0.1",
		Class:   "c5.18xlarge",
	}
}

func TestProbeCollectsAllFields(t *testing.T) {
	mock := sshtest.NewMockClient("10.0.0.1")
	mock.Respond(TimestepCommand("run_42_7ms"), sshtest.Response{
		Stdout: "TimeStep     901: Time  12.345\n",
	})
	mock.Respond(CSVCountCommand("run_42_7ms"), sshtest.Response{Stdout: "17\n"})
	mock.Respond(FreeDiskCommand(), sshtest.Response{Stdout: "312G\n"})
	mock.RespondPattern(`\[z\]csvs`, sshtest.Response{Stdout: "ubuntu 4242 zcsvs run_42_7ms\n"})

	p := newTestProber(mock)
	raw, err := p.Probe(context.Background(), testInstance())
	require.NoError(t, err)

	assert.Equal(t, "TimeStep     901: Time  12.345", raw.TimestepLine)
	assert.Equal(t, 17, raw.CSVCount)
	assert.Equal(t, "312G", raw.FreeDisk)
	assert.Equal(t, "zcsvs", raw.Process)
}

func TestProbeNoAddress(t *testing.T) {
	p := newTestProber(sshtest.NewMockClient(""))

	inst := testInstance()
	inst.Address = ""

	_, err := p.Probe(context.Background(), inst)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrAddr))
}

func TestProbeCommandFailure(t *testing.T) {
	mock := sshtest.NewMockClient("10.0.0.1")
	mock.Respond(TimestepCommand("run_42_7ms"), sshtest.Response{
		Stderr:   "grep: run_42_7ms/solve.out: No such file or directory\n",
		ExitCode: 2,
	})

	p := newTestProber(mock)
	_, err := p.Probe(context.Background(), testInstance())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCmd))

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, 2, cmdErr.ExitCode)
	assert.Contains(t, cmdErr.Stderr, "No such file")
}

func TestProbeToleratesGrepMiss(t *testing.T) {
	// grep exits 1 with empty stderr when the job has not started writing
	// output yet; that is an empty line, not a failure.
	mock := sshtest.NewMockClient("10.0.0.1")
	mock.Respond(TimestepCommand("run_42_7ms"), sshtest.Response{ExitCode: 1})
	mock.Respond(CSVCountCommand("run_42_7ms"), sshtest.Response{Stdout: "0\n"})
	mock.Respond(FreeDiskCommand(), sshtest.Response{Stdout: "500G\n"})

	p := newTestProber(mock)
	raw, err := p.Probe(context.Background(), testInstance())
	require.NoError(t, err)

	assert.Equal(t, "", raw.TimestepLine)
	assert.Equal(t, 0, raw.CSVCount)
	assert.Equal(t, ProcessIdle, raw.Process)
}

func TestProbeCSVCountFallsBackToZero(t *testing.T) {
	mock := sshtest.NewMockClient("10.0.0.1")
	mock.Respond(CSVCountCommand("run_42_7ms"), sshtest.Response{Stdout: "not-a-number\n"})

	p := newTestProber(mock)
	raw, err := p.Probe(context.Background(), testInstance())
	require.NoError(t, err)
	assert.Equal(t, 0, raw.CSVCount)
}

func TestProbeProcessPriority(t *testing.T) {
	// With both an upload and an extraction running, the upload wins.
	mock := sshtest.NewMockClient("10.0.0.1")
	mock.RespondPattern(`\[s\]3 sync`, sshtest.Response{Stdout: "ubuntu 100 aws s3 sync\n"})
	mock.RespondPattern(`\[z\]csvs`, sshtest.Response{Stdout: "ubuntu 200 zcsvs\n"})

	p := newTestProber(mock)
	raw, err := p.Probe(context.Background(), testInstance())
	require.NoError(t, err)
	assert.Equal(t, "s3 sync", raw.Process)
}

func TestProbeTransportErrorDropsConnection(t *testing.T) {
	mock := sshtest.NewMockClient("10.0.0.1")
	p := newTestProber(mock)

	// Prime the pool, then close the connection so Exec fails at the
	// transport level.
	_, err := p.pool.Get("10.0.0.1")
	require.NoError(t, err)
	require.NoError(t, mock.Close())

	_, err = p.run(context.Background(), mock, "10.0.0.1", "true")
	require.Error(t, err)
	assert.Equal(t, 0, p.pool.Size())
}

func TestProbeCancelledContext(t *testing.T) {
	mock := sshtest.NewMockClient("10.0.0.1")
	p := newTestProber(mock)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Probe(ctx, testInstance())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSSH))
}
