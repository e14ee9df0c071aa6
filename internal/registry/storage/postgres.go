package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vitalink/vitalink-core/internal/registry"
)

const (
	queryGetPatient = `
		SELECT patient_id, display_name
		FROM patients
		WHERE patient_id = $1
	`

	queryListPatients = `
		SELECT patient_id, display_name
		FROM patients
		ORDER BY patient_id ASC
	`

	queryListDevices = `
		SELECT device_id, patient_id, model
		FROM devices
		WHERE ($1 = '' OR patient_id = $1)
		ORDER BY patient_id ASC, device_id ASC
	`
)

// PostgresRepository reads the patients and devices tables.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a repository sharing the given connection.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetPatient(ctx context.Context, patientID string) (*registry.Patient, error) {
	var p registry.Patient
	err := r.db.QueryRowContext(ctx, queryGetPatient, patientID).Scan(&p.ID, &p.DisplayName)
	if err == sql.ErrNoRows {
		return nil, registry.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query patient: %w", err)
	}

	devices, err := r.devices(ctx, patientID)
	if err != nil {
		return nil, err
	}
	p.Devices = devices[patientID]
	return &p, nil
}

func (r *PostgresRepository) ListPatients(ctx context.Context) ([]registry.Patient, error) {
	rows, err := r.db.QueryContext(ctx, queryListPatients)
	if err != nil {
		return nil, fmt.Errorf("query patients: %w", err)
	}
	defer rows.Close()

	var result []registry.Patient
	for rows.Next() {
		var p registry.Patient
		if err := rows.Scan(&p.ID, &p.DisplayName); err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate patients: %w", err)
	}

	devices, err := r.devices(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range result {
		result[i].Devices = devices[result[i].ID]
	}
	return result, nil
}

// devices loads devices grouped by patient. An empty patientID loads all of them.
func (r *PostgresRepository) devices(ctx context.Context, patientID string) (map[string][]registry.Device, error) {
	rows, err := r.db.QueryContext(ctx, queryListDevices, patientID)
	if err != nil {
		return nil, fmt.Errorf("query devices: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]registry.Device)
	for rows.Next() {
		var (
			d     registry.Device
			owner string
		)
		if err := rows.Scan(&d.ID, &owner, &d.Model); err != nil {
			return nil, fmt.Errorf("scan device: %w", err)
		}
		out[owner] = append(out[owner], d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate devices: %w", err)
	}
	return out, nil
}
