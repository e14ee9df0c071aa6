package storage

import (
	"context"
	"sync"

	"github.com/vitalink/vitalink-core/internal/registry"
)

// MemoryRepository is an in-memory registry.Repository.
// Useful for testing and development.
type MemoryRepository struct {
	mu       sync.RWMutex
	patients map[string]registry.Patient
}

// NewMemoryRepository creates a repository holding the given patients.
func NewMemoryRepository(patients ...registry.Patient) *MemoryRepository {
	r := &MemoryRepository{patients: make(map[string]registry.Patient)}
	for _, p := range patients {
		r.Put(p)
	}
	return r
}

// Put adds or replaces a patient.
func (r *MemoryRepository) Put(p registry.Patient) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.Devices = append([]registry.Device(nil), p.Devices...)
	r.patients[p.ID] = p
}

func (r *MemoryRepository) GetPatient(ctx context.Context, patientID string) (*registry.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.patients[patientID]
	if !exists {
		return nil, registry.ErrNotFound
	}
	p.Devices = append([]registry.Device(nil), p.Devices...)
	return &p, nil
}

func (r *MemoryRepository) ListPatients(ctx context.Context) ([]registry.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]registry.Patient, 0, len(r.patients))
	for _, p := range r.patients {
		p.Devices = append([]registry.Device(nil), p.Devices...)
		result = append(result, p)
	}
	return result, nil
}
