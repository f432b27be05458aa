package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains all the application paths. This is the single source of
// truth for file locations; stages never assemble data paths themselves.
type Paths struct {
	ExecutableDir string
	DataDir       string
	RawDir        string
	ProcessedDir  string
	SampleDir     string
	ReportsDir    string
	LogsDir       string
	WebDir        string

	// Well-known data files
	RawWorkbook    string
	CleanedCSV     string
	CustomerRFMCSV string
	SampleCSV      string
}

// Well-known file names within the data directories.
const (
	RawWorkbookName    = "online_retail_II.xlsx"
	CleanedCSVName     = "cleaned_transactions.csv"
	CustomerRFMCSVName = "customer_rfm.csv"
	SampleCSVName      = "sample_data.csv"
)

// GetPaths returns the application paths relative to the executable
// location. Paths are never resolved against the working directory so
// the binaries behave the same wherever they are launched from.
func GetPaths() (*Paths, error) {
	exeDir, err := executableDir()
	if err != nil {
		return nil, err
	}
	return PathsFrom(exeDir), nil
}

// PathsFrom builds the path set rooted at the given base directory.
// Used directly by tests and by CLI flag overrides.
func PathsFrom(baseDir string) *Paths {
	dataDir := filepath.Join(baseDir, "data")
	rawDir := filepath.Join(dataDir, "raw")
	processedDir := filepath.Join(dataDir, "processed")
	sampleDir := filepath.Join(dataDir, "sample")

	return &Paths{
		ExecutableDir: baseDir,
		DataDir:       dataDir,
		RawDir:        rawDir,
		ProcessedDir:  processedDir,
		SampleDir:     sampleDir,
		ReportsDir:    filepath.Join(dataDir, "reports"),
		LogsDir:       filepath.Join(baseDir, "logs"),
		WebDir:        filepath.Join(baseDir, "web"),

		RawWorkbook:    filepath.Join(rawDir, RawWorkbookName),
		CleanedCSV:     filepath.Join(processedDir, CleanedCSVName),
		CustomerRFMCSV: filepath.Join(processedDir, CustomerRFMCSVName),
		SampleCSV:      filepath.Join(sampleDir, SampleCSVName),
	}
}

// EnsureDirectories creates all required directories.
func (p *Paths) EnsureDirectories() error {
	dirs := []string{
		p.DataDir,
		p.RawDir,
		p.ProcessedDir,
		p.SampleDir,
		p.ReportsDir,
		p.LogsDir,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetReportPath returns the path of a report file under the reports dir.
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetLogPath returns the path of a log file under the logs dir.
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// FileExists reports whether the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// executableDir resolves the directory containing the running binary,
// following symlinks.
func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}
	return filepath.Dir(exe), nil
}
