package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpulse/internal/config"
	"retailpulse/internal/exporter"
	"retailpulse/internal/ingest"
	"retailpulse/internal/pipeline"
)

func newTestApp(t *testing.T) *Application {
	t.Helper()
	application, err := New(Options{Version: "test", BaseDir: t.TempDir()})
	require.NoError(t, err)
	return application
}

func writeSampleDataset(t *testing.T, paths *config.Paths) {
	t.Helper()
	sample := ingest.GenerateSample(ingest.SampleConfig{
		Transactions: 300, Customers: 30, Seed: 7, StartYear: 2010, EndYear: 2011,
	})
	records := make([][]string, len(sample))
	for i, tx := range sample {
		records[i] = ingest.CSVRecord(tx)
	}
	writer := exporter.NewCSVWriter(nil)
	require.NoError(t, writer.WriteSimpleCSV(paths.SampleCSV, ingest.CleanedHeaders, records))
}

func TestNewWiresEverything(t *testing.T) {
	application := newTestApp(t)

	assert.NotNil(t, application.Config)
	assert.NotNil(t, application.Hub)
	assert.NotNil(t, application.Data)
	assert.NotNil(t, application.Pipeline)
	require.NotNil(t, application.Server)
	assert.Equal(t, fmt.Sprintf(":%d", application.Config.Server.Port), application.Server.Addr)
}

func TestNewCreatesDataDirectories(t *testing.T) {
	application := newTestApp(t)

	assert.DirExists(t, application.Paths.RawDir)
	assert.DirExists(t, application.Paths.ProcessedDir)
	assert.DirExists(t, application.Paths.SampleDir)
	assert.DirExists(t, application.Paths.ReportsDir)
}

func TestRunPipelineOnce(t *testing.T) {
	application := newTestApp(t)
	writeSampleDataset(t, application.Paths)

	state, err := application.RunPipelineOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, pipeline.RunStatusCompleted, state.Status)
	assert.FileExists(t, application.Paths.CleanedCSV)
	assert.FileExists(t, application.Paths.CustomerRFMCSV)

	// The run reloads the data service with the processed output.
	assert.True(t, application.Data.Loaded())
}

func TestRunPipelineOnceWithoutInputFails(t *testing.T) {
	application := newTestApp(t)

	_, err := application.RunPipelineOnce(context.Background())
	require.Error(t, err)
}

func TestRunServesAndShutsDown(t *testing.T) {
	application := newTestApp(t)
	writeSampleDataset(t, application.Paths)

	// Reserve a free local port for the server to reuse.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	application.Server.Addr = listener.Addr().String()
	require.NoError(t, listener.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- application.Run(ctx) }()

	require.Eventually(t, func() bool {
		res, err := http.Get("http://" + application.Server.Addr + "/api/health")
		if err != nil {
			return false
		}
		defer res.Body.Close()
		return res.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down in time")
	}
}
