package directory

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// Employee is one record of the employee directory. Field tags match the
// column names of the HR export the bureau maintains.
type Employee struct {
	Name            string `json:"Nama Pegawai"`
	ID              string `json:"NIP"`
	Title           string `json:"Jabatan"`
	Phone           string `json:"No. HP (WA) aktif"`
	SupervisorPhone string `json:"NO HP ATASAN"`
}

// directoryFile mirrors the layout of the exported JSON document
type directoryFile struct {
	Internal []Employee `json:"Internal"`
}

// Directory resolves phone numbers to employee records. The table is loaded
// once at startup and never mutated, so lookups need no locking.
type Directory struct {
	employees []Employee
	logger    *zap.Logger
}

// Load reads the employee directory from a JSON export
func Load(path string, logger *zap.Logger) (*Directory, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read employee directory: %w", err)
	}

	var file directoryFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse employee directory: %w", err)
	}

	if len(file.Internal) == 0 {
		return nil, fmt.Errorf("employee directory %s contains no records", path)
	}

	logger.Info("Employee directory loaded",
		zap.String("path", path),
		zap.Int("employees", len(file.Internal)))

	return &Directory{
		employees: file.Internal,
		logger:    logger,
	}, nil
}

// NewFromRecords builds a directory from an in-memory record set
func NewFromRecords(employees []Employee, logger *zap.Logger) *Directory {
	return &Directory{
		employees: employees,
		logger:    logger,
	}
}

// FindByPhone resolves a digits-only phone number to an employee record.
// Returns nil when the number is not in the directory, which classifies the
// sender as an external participant.
func (d *Directory) FindByPhone(digits string) *Employee {
	if digits == "" {
		return nil
	}
	for i := range d.employees {
		if d.employees[i].Phone == digits {
			emp := d.employees[i]
			return &emp
		}
	}
	return nil
}

// FindSupervisor resolves an employee's supervisor by re-resolving the stored
// supervisor phone against the same table. Returns nil when no record
// matches.
func (d *Directory) FindSupervisor(emp *Employee) *Employee {
	if emp == nil {
		return nil
	}
	return d.FindByPhone(emp.SupervisorPhone)
}

// Size returns the number of loaded records
func (d *Directory) Size() int {
	return len(d.employees)
}
