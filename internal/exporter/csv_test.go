package exporter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSimpleCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "report.csv")

	w := NewCSVWriter(nil)
	err := w.WriteSimpleCSV(path,
		[]string{"Country", "Revenue"},
		[][]string{
			{"United Kingdom", "1200.50"},
			{"France", "300.00"},
		})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Country,Revenue\nUnited Kingdom,1200.50\nFrance,300.00\n", string(data))
}

func TestWriteCSVTruncatesOnRewrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.csv")
	w := NewCSVWriter(nil)

	require.NoError(t, w.WriteSimpleCSV(path, []string{"A"}, [][]string{{"1"}, {"2"}}))
	require.NoError(t, w.WriteSimpleCSV(path, []string{"A"}, [][]string{{"1"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "A\n1\n", string(data))
}

func TestWriteCSVAppend(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.csv")
	w := NewCSVWriter(nil)

	require.NoError(t, w.WriteSimpleCSV(path, []string{"A"}, [][]string{{"1"}}))
	require.NoError(t, w.WriteCSV(path, WriteOptions{Records: [][]string{{"2"}}, Append: true}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "A\n1\n2\n", string(data))
}

func TestStreamWriter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stream.csv")
	w := NewCSVWriter(nil)

	sw, err := w.CreateStreamWriter(path, []string{"Invoice", "Revenue"})
	require.NoError(t, err)

	require.NoError(t, sw.WriteRecord([]string{"536365", "15.30"}))
	require.NoError(t, sw.WriteRecord([]string{"536366", "22.00"}))
	require.NoError(t, sw.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Invoice,Revenue\n536365,15.30\n536366,22.00\n", string(data))
}
