package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/vitalink/vitalink-core/internal/registry"
	"gopkg.in/yaml.v3"
)

// FileSystemRepository implements registry.Repository over a directory of YAML files,
// one per patient: root/{patient_id}.yaml
//
//	display_name: Jane Doe
//	devices:
//	  - id: watch-7f3a
//	    model: pulse-band-2
//
// The directory is maintained by the registry service; this repository only reads it.
type FileSystemRepository struct {
	rootDir string
}

// NewFileSystemRepository creates a new file system backed repository.
func NewFileSystemRepository(rootDir string) *FileSystemRepository {
	return &FileSystemRepository{rootDir: rootDir}
}

// GetPatient reads root/{patientID}.yaml.
func (r *FileSystemRepository) GetPatient(ctx context.Context, patientID string) (*registry.Patient, error) {
	if patientID == "" || patientID != filepath.Base(patientID) || strings.HasPrefix(patientID, ".") {
		return nil, registry.ErrNotFound
	}

	content, err := os.ReadFile(filepath.Join(r.rootDir, patientID+".yaml"))
	if os.IsNotExist(err) {
		return nil, registry.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read patient file: %w", err)
	}
	return parsePatient(patientID, content)
}

func parsePatient(patientID string, content []byte) (*registry.Patient, error) {
	var p registry.Patient
	if err := yaml.Unmarshal(content, &p); err != nil {
		return nil, fmt.Errorf("failed to parse patient %s: %w", patientID, err)
	}
	// The file name is the identity; an id inside the file must agree with it.
	if p.ID != "" && p.ID != patientID {
		return nil, fmt.Errorf("patient file %s declares id %q", patientID, p.ID)
	}
	p.ID = patientID
	return &p, nil
}

// ListPatients scans the directory for patient files.
func (r *FileSystemRepository) ListPatients(ctx context.Context) ([]registry.Patient, error) {
	entries, err := os.ReadDir(r.rootDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []registry.Patient{}, nil
		}
		return nil, err
	}

	var result []registry.Patient
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".yaml")
		p, err := r.GetPatient(ctx, id)
		if err != nil {
			slog.Warn("[Registry] Skipping unreadable patient file", "file", entry.Name(), "error", err)
			continue
		}
		result = append(result, *p)
	}
	return result, nil
}
