package repositories

import (
	"github.com/jackc/pgx/v5"

	"access-control/internal/authz"
)

const (
	EntityOrganizations = "organizations"
	EntityDepartments   = "departments"
	EntityEmployees     = "employees"
	EntityDevices       = "devices"
	EntityCheckpoints   = "checkpoints"
)

var (
	OrganizationDescriptor = &EntityDescriptor{
		Name:     EntityOrganizations,
		Table:    "organizations",
		Alias:    "o",
		Resource: authz.ResourceOrganization,
		Columns: []string{
			"o.id", "o.guid", "o.name", "o.address", "o.phone", "o.timezone",
			"o.timesheet_start", "o.timesheet_end", "o.created_at", "o.dropped_at",
		},
		Searchable: []string{"o.name"},
		OrgColumn:  "id",
		Scan:       func(row pgx.Row) (interface{}, error) { return scanOrganization(row) },
	}

	DepartmentDescriptor = &EntityDescriptor{
		Name:     EntityDepartments,
		Table:    "departments",
		Alias:    "d",
		Resource: authz.ResourceDepartment,
		Columns: []string{
			"d.id", "d.organization_id", "d.name", "d.rights", "d.address", "d.description",
			"d.show_in_report", "d.created_at", "d.dropped_at",
		},
		Searchable: []string{"d.name"},
		Filters: map[string]FilterFunc{
			"organization":   eqInt("d.organization_id"),
			"show_in_report": eqBool("d.show_in_report"),
			"employee":       linkedTo("d.id", "employee2department", "department_id", "employee_id"),
		},
		OrgColumn: "organization_id",
		Scan:      func(row pgx.Row) (interface{}, error) { return scanDepartment(row) },
	}

	EmployeeDescriptor = &EntityDescriptor{
		Name:     EntityEmployees,
		Table:    "employees",
		Alias:    "e",
		Resource: authz.ResourceEmployee,
		Columns: []string{
			"e.id", "e.guid", "e.last_name", "e.first_name", "e.patronymic", "e.created_at", "e.dropped_at",
		},
		Searchable: []string{
			"concat_ws(' ', e.last_name, e.first_name, e.patronymic)",
			"e.last_name", "e.first_name", "e.patronymic",
		},
		Filters: map[string]FilterFunc{
			"organization": linkedTo("e.id", "employee2organization", "employee_id", "organization_id"),
			"department":   linkedTo("e.id", "employee2department", "employee_id", "department_id"),
		},
		OrgLink: &OrgLink{Table: "employee2organization", Alias: "eo", EntityColumn: "employee_id"},
		Scan:    func(row pgx.Row) (interface{}, error) { return scanEmployee(row) },
	}

	DeviceDescriptor = &EntityDescriptor{
		Name:     EntityDevices,
		Table:    "devices",
		Alias:    "dv",
		Resource: authz.ResourceDevice,
		Columns: []string{
			"dv.id", "dv.mqtt", "dv.name", "dv.description", "dv.device_type", "dv.config",
			"dv.checkpoint_id", "dv.timezone", "dv.created_at", "dv.dropped_at",
		},
		Searchable: []string{"dv.name", "dv.mqtt"},
		Filters: map[string]FilterFunc{
			"organization": linkedTo("dv.id", "device2organization", "device_id", "organization_id"),
			"checkpoint":   eqInt("dv.checkpoint_id"),
			"device_type":  eqInt("dv.device_type"),
		},
		OrgLink: &OrgLink{Table: "device2organization", Alias: "dvo", EntityColumn: "device_id"},
		Scan:    func(row pgx.Row) (interface{}, error) { return scanDevice(row) },
	}

	CheckpointDescriptor = &EntityDescriptor{
		Name:     EntityCheckpoints,
		Table:    "checkpoints",
		Alias:    "c",
		Resource: authz.ResourceCheckpoint,
		Columns: []string{
			"c.id", "c.name", "c.rights", "c.description", "c.created_at", "c.dropped_at",
		},
		Searchable: []string{"c.name"},
		Filters: map[string]FilterFunc{
			"organization": linkedTo("c.id", "checkpoint2organization", "checkpoint_id", "organization_id"),
		},
		OrgLink: &OrgLink{Table: "checkpoint2organization", Alias: "co", EntityColumn: "checkpoint_id"},
		Scan:    func(row pgx.Row) (interface{}, error) { return scanCheckpoint(row) },
	}
)

// DefaultRegistry собирает все сущности и связи M:N, доступные по имени.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, d := range []*EntityDescriptor{
		OrganizationDescriptor, DepartmentDescriptor, EmployeeDescriptor, DeviceDescriptor, CheckpointDescriptor,
	} {
		r.RegisterEntity(d)
	}

	link := func(master, slave *EntityDescriptor, table, masterCol, slaveCol string, res authz.Resource) {
		r.RegisterRelation(&RelationDescriptor{
			Master: master, Slave: slave, LinkTable: table,
			MasterColumn: masterCol, SlaveColumn: slaveCol, Resource: res,
		})
	}
	link(OrganizationDescriptor, EmployeeDescriptor, "employee2organization", "organization_id", "employee_id", authz.ResourceEmployee)
	link(EmployeeDescriptor, OrganizationDescriptor, "employee2organization", "employee_id", "organization_id", authz.ResourceEmployee)
	link(OrganizationDescriptor, DeviceDescriptor, "device2organization", "organization_id", "device_id", authz.ResourceDevice)
	link(DeviceDescriptor, OrganizationDescriptor, "device2organization", "device_id", "organization_id", authz.ResourceDevice)
	link(OrganizationDescriptor, CheckpointDescriptor, "checkpoint2organization", "organization_id", "checkpoint_id", authz.ResourceCheckpoint)
	link(CheckpointDescriptor, OrganizationDescriptor, "checkpoint2organization", "checkpoint_id", "organization_id", authz.ResourceCheckpoint)
	link(DepartmentDescriptor, EmployeeDescriptor, "employee2department", "department_id", "employee_id", authz.ResourceDepartment)
	link(EmployeeDescriptor, DepartmentDescriptor, "employee2department", "employee_id", "department_id", authz.ResourceEmployee)
	return r
}
