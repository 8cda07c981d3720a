package behave

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// Fixed input file names inside the data folder.
const (
	DemographicsFile = "demographics.xlsx"
	VariablesFile    = "participants_dataset.xlsx"
)

// CheckFolders verifies the data and resources folders exist and that
// the data folder holds the two demographics files the conversion
// needs.
func CheckFolders(dataDir, resourcesDir string) error {
	for _, dir := range []string{dataDir, resourcesDir} {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("folder does not exist: %s", dir)
		}
		if !info.IsDir() {
			return fmt.Errorf("not a folder: %s", dir)
		}
	}
	for _, name := range []string{DemographicsFile, VariablesFile} {
		if _, err := os.Stat(filepath.Join(dataDir, name)); err != nil {
			return fmt.Errorf("%w: required file %s in data folder", ErrFileNotFound, name)
		}
	}
	return nil
}

// CheckOutputDir creates the output root and probes it with a
// throwaway write so permission problems surface before any
// conversion work.
func CheckOutputDir(outDir string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("cannot create output folder %s: %w", outDir, err)
	}
	probe := filepath.Join(outDir, ".behave_write_probe")
	if err := os.WriteFile(probe, []byte("probe"), 0644); err != nil {
		return fmt.Errorf("cannot write to output folder %s: %w", outDir, err)
	}
	return os.Remove(probe)
}

// FindSessionFiles lists the session spreadsheets in the data folder:
// every .xlsx except spreadsheet temp files and the demographics and
// variable dictionary files.
func FindSessionFiles(dataDir string) ([]string, error) {
	all, err := filepath.Glob(filepath.Join(dataDir, "*.xlsx"))
	if err != nil {
		return nil, err
	}
	var files []string
	for _, path := range all {
		name := filepath.Base(path)
		if strings.HasPrefix(name, "~$") || name == DemographicsFile || name == VariablesFile {
			continue
		}
		files = append(files, path)
	}
	log.Info("found session files", "folder", dataDir, "count", len(files))
	return files, nil
}

// FindTaskFiles lists the task definition spreadsheets in the
// resources folder.
func FindTaskFiles(resourcesDir string) ([]string, error) {
	all, err := filepath.Glob(filepath.Join(resourcesDir, "*.xlsx"))
	if err != nil {
		return nil, err
	}
	var files []string
	for _, path := range all {
		name := filepath.Base(path)
		if strings.HasPrefix(name, "~$") || name == VariablesFile {
			continue
		}
		files = append(files, path)
	}
	return files, nil
}
