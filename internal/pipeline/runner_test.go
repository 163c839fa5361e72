package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPipeline struct {
	name   string
	output string
	table  dataframe.DataFrame
	err    error
	calls  int
}

func (s *stubPipeline) Name() string        { return s.name }
func (s *stubPipeline) Description() string { return "stub " + s.name }
func (s *stubPipeline) Inputs() []string    { return nil }
func (s *stubPipeline) Output() string      { return s.output }

func (s *stubPipeline) Run(ctx context.Context) (dataframe.DataFrame, error) {
	s.calls++
	return s.table, s.err
}

func stubTable() dataframe.DataFrame {
	return dataframe.New(
		series.New([]int{2020, 2021}, series.Int, "Year"),
		series.New([]float64{1.5, 2}, series.Float, "value"),
	)
}

func TestRunner(t *testing.T) {
	dir := t.TempDir()
	boom := errors.New("boom")
	first := &stubPipeline{name: "first", output: filepath.Join(dir, "first.csv"), table: stubTable()}
	broken := &stubPipeline{name: "broken", output: filepath.Join(dir, "broken.csv"), err: boom}
	last := &stubPipeline{name: "last", output: filepath.Join(dir, "last.csv"), table: stubTable()}

	runner := NewRunner(testLogger(t), first, broken, last)
	results := runner.Run(context.Background())

	require.Len(t, results, 3)
	assert.Equal(t, []string{"first", "broken", "last"}, []string{results[0].Name, results[1].Name, results[2].Name})

	assert.True(t, results[0].OK())
	assert.Equal(t, 2, results[0].Rows)
	assert.FileExists(t, first.output)

	assert.False(t, results[1].OK())
	assert.ErrorIs(t, results[1].Err, boom)
	assert.NoFileExists(t, broken.output, "a failed pipeline writes nothing")

	assert.True(t, results[2].OK(), "a failure does not stop later pipelines")
	assert.FileExists(t, last.output)

	failed := Failed(results)
	require.Len(t, failed, 1)
	assert.Equal(t, "broken", failed[0].Name)

	content, err := os.ReadFile(first.output)
	require.NoError(t, err)
	assert.Equal(t, "Year,value\n2020,1.5\n2021,2\n", string(content))
}

func TestRunnerSelection(t *testing.T) {
	dir := t.TempDir()
	a := &stubPipeline{name: "a", output: filepath.Join(dir, "a.csv"), table: stubTable()}
	b := &stubPipeline{name: "b", output: filepath.Join(dir, "b.csv"), table: stubTable()}

	results := NewRunner(nil, a, b).Run(context.Background(), "b", "nope", "a")

	require.Len(t, results, 3)
	assert.Equal(t, "nope", results[0].Name)
	assert.ErrorIs(t, results[0].Err, ErrUnknownPipeline)
	assert.Equal(t, "a", results[1].Name, "registration order wins")
	assert.Equal(t, "b", results[2].Name)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestRunnerIdempotent(t *testing.T) {
	p := &stubPipeline{name: "p", output: filepath.Join(t.TempDir(), "p.csv"), table: stubTable()}
	runner := NewRunner(nil, p)

	require.Empty(t, Failed(runner.Run(context.Background())))
	first, err := os.ReadFile(p.output)
	require.NoError(t, err)

	require.Empty(t, Failed(runner.Run(context.Background())))
	second, err := os.ReadFile(p.output)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRunnerIdempotentPipeline(t *testing.T) {
	env := newTestEnv(t)
	env.writeEmissions("Alpha,AAA,2000,10", "Beta,BBB,2000,5", "Alpha,AAA,2001,20")
	env.writeFile(env.cfg.Inputs.Temperature, temperatureCSV)
	runner := NewRunner(nil, NewCO2Temp(env.cfg, nil))
	output := env.cfg.OutputPath(env.cfg.Outputs.CO2Temp)

	require.Empty(t, Failed(runner.Run(context.Background())))
	first, err := os.ReadFile(output)
	require.NoError(t, err)

	require.Empty(t, Failed(runner.Run(context.Background())))
	second, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
	assert.Equal(t, "Year,Annual CO₂ emissions,Annual Temperature Anomaly\n2000,15,0.4\n2001,20,0.54\n", string(first))
}

func TestRunnerDryRun(t *testing.T) {
	p := &stubPipeline{name: "p", output: filepath.Join(t.TempDir(), "p.csv"), table: stubTable()}
	runner := NewRunner(nil, p)
	runner.DryRun = true

	results := runner.Run(context.Background())
	require.Len(t, results, 1)
	assert.True(t, results[0].OK())
	assert.Equal(t, 2, results[0].Rows)
	assert.NoFileExists(t, p.output)
}

func TestRunnerCancelled(t *testing.T) {
	p := &stubPipeline{name: "p", output: filepath.Join(t.TempDir(), "p.csv"), table: stubTable()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := NewRunner(nil, p).Run(ctx)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
	assert.Equal(t, 0, p.calls)
}

func TestRunnerErroredTable(t *testing.T) {
	bad := stubTable().Select([]string{"missing"})
	p := &stubPipeline{name: "p", output: filepath.Join(t.TempDir(), "p.csv"), table: bad}

	results := NewRunner(nil, p).Run(context.Background())
	require.Len(t, results, 1)
	assert.False(t, results[0].OK())
	assert.NoFileExists(t, p.output)
}

func TestAllPipelines(t *testing.T) {
	env := newTestEnv(t)
	all := All(env.cfg, nil)

	names := make([]string, len(all))
	for i, p := range all {
		names[i] = p.Name()
		assert.NotEmpty(t, p.Description())
		assert.NotEmpty(t, p.Inputs())
		assert.Equal(t, env.cfg.OutputDir, filepath.Dir(p.Output()))
	}
	assert.Equal(t, Names, names)
}

func TestRunnerMissingInputs(t *testing.T) {
	env := newTestEnv(t)
	results := NewRunner(nil, All(env.cfg, nil)...).Run(context.Background())

	require.Len(t, results, len(Names))
	for _, res := range results {
		assert.ErrorIs(t, res.Err, os.ErrNotExist, res.Name)
		assert.NoFileExists(t, res.Output)
	}
}
