// Package registry answers which patients exist and which devices belong to them.
// Registry CRUD lives outside this service; this package only reads.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	coreerrors "github.com/vitalink/vitalink-core/internal/core/errors"
)

// DefaultCacheCapacity is the default number of patients to cache.
const DefaultCacheCapacity = 1000

// ErrNotFound is returned by repositories for unknown patients.
var ErrNotFound = errors.New("patient not found")

// Device is a wearable registered to exactly one patient.
type Device struct {
	ID    string `yaml:"id" json:"id"`
	Model string `yaml:"model,omitempty" json:"model,omitempty"`
}

// Patient is a monitored patient and their registered devices.
type Patient struct {
	ID          string   `yaml:"id" json:"patient_id"`
	DisplayName string   `yaml:"display_name,omitempty" json:"display_name,omitempty"`
	Devices     []Device `yaml:"devices" json:"devices"`
}

// HasDevice reports whether deviceID is registered to the patient.
func (p *Patient) HasDevice(deviceID string) bool {
	for _, d := range p.Devices {
		if d.ID == deviceID {
			return true
		}
	}
	return false
}

// Repository is a read-only patient source.
type Repository interface {
	// GetPatient returns the patient with its devices, or ErrNotFound.
	GetPatient(ctx context.Context, patientID string) (*Patient, error)

	// ListPatients returns every registered patient.
	ListPatients(ctx context.Context) ([]Patient, error)
}

// Registry provides patient lookup with caching.
type Registry struct {
	repo  Repository
	cache *LRUCache
}

// NewRegistry creates a registry with the default cache capacity.
func NewRegistry(repo Repository) *Registry {
	return NewRegistryWithCache(repo, DefaultCacheCapacity)
}

// NewRegistryWithCache creates a registry with a custom cache capacity.
func NewRegistryWithCache(repo Repository, cacheCapacity int) *Registry {
	if cacheCapacity <= 0 {
		cacheCapacity = DefaultCacheCapacity
	}
	return &Registry{
		repo:  repo,
		cache: NewLRUCache(cacheCapacity),
	}
}

// GetPatient retrieves a patient from cache or repository. Misses are not cached,
// so a patient registered after startup becomes visible on the next call.
func (r *Registry) GetPatient(ctx context.Context, patientID string) (*Patient, error) {
	if p := r.cache.Get(patientID); p != nil {
		return p, nil
	}

	p, err := r.repo.GetPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	r.cache.Put(p)
	return p, nil
}

// ValidateSource checks that the patient exists and that the device is registered to them.
// Unknown identities are reported as ValidationErrors; repository failures are returned as-is.
func (r *Registry) ValidateSource(ctx context.Context, patientID, deviceID string) error {
	p, err := r.GetPatient(ctx, patientID)
	if errors.Is(err, ErrNotFound) {
		return coreerrors.Validationf(coreerrors.ReasonUnknownPatient, "patient %q is not registered", patientID)
	}
	if err != nil {
		return fmt.Errorf("lookup patient %s: %w", patientID, err)
	}

	if !p.HasDevice(deviceID) {
		// The cached entry may predate a device registration; check the source once.
		r.cache.Invalidate(patientID)
		p, err = r.GetPatient(ctx, patientID)
		if err != nil {
			return fmt.Errorf("lookup patient %s: %w", patientID, err)
		}
		if !p.HasDevice(deviceID) {
			slog.Debug("[Registry] Device not registered to patient",
				"patient_id", patientID,
				"device_id", deviceID)
			return coreerrors.Validationf(coreerrors.ReasonUnknownDevice,
				"device %q is not registered to patient %q", deviceID, patientID)
		}
	}
	return nil
}

// ListPatients returns all registered patients ordered by ID.
func (r *Registry) ListPatients(ctx context.Context) ([]Patient, error) {
	patients, err := r.repo.ListPatients(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(patients, func(i, j int) bool { return patients[i].ID < patients[j].ID })
	return patients, nil
}
