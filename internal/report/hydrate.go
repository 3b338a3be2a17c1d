package report

import (
	"access-control/internal/entities"
)

// ScopedOrganization выбирает организацию, в контексте которой строится строка сотрудника:
// организация принципала, иначе организация из параметров отчёта,
// иначе первая по id живая связь сотрудника.
func ScopedOrganization(principalOrg int64, sel entities.ReportSelection, links []entities.EmployeeOrganization) int64 {
	if principalOrg != 0 {
		return principalOrg
	}
	if sel.EntityType == entities.ReportOrganization && sel.EntityID != 0 {
		return sel.EntityID
	}
	var first int64
	for _, l := range links {
		if !l.IsLive() {
			continue
		}
		if first == 0 || l.OrganizationID < first {
			first = l.OrganizationID
		}
	}
	return first
}

// ResolveSchedule выбирает личный график связи сотрудника с организацией, иначе график организации.
func ResolveSchedule(link *entities.EmployeeOrganization, org *entities.Organization) Schedule {
	var s Schedule
	if org != nil {
		s.Start, s.End = org.TimesheetStart, org.TimesheetEnd
	}
	if link != nil {
		if link.TimesheetStart.Valid {
			s.Start = link.TimesheetStart
		}
		if link.TimesheetEnd.Valid {
			s.End = link.TimesheetEnd
		}
	}
	return s
}

// PickDepartment выбирает первое по id живое подразделение организации org с show_in_report.
// Подразделения других организаций в отчёт не попадают.
func PickDepartment(deps []entities.Department, org int64) (entities.Department, bool) {
	var picked *entities.Department
	for i := range deps {
		d := &deps[i]
		if org == 0 || d.OrganizationID != org || !d.ShowInReport || !d.IsLive() {
			continue
		}
		if picked == nil || d.ID < picked.ID {
			picked = d
		}
	}
	if picked == nil {
		return entities.Department{}, false
	}
	return *picked, true
}

// BuildHydration готовит графики и подразделения сотрудников страницы.
func BuildHydration(
	principalOrg int64,
	sel entities.ReportSelection,
	employeeIDs []int64,
	links []entities.EmployeeOrganization,
	orgs []entities.Organization,
	deps []entities.ReportDepartmentLink,
) Hydration {
	linksByEmployee := make(map[int64][]entities.EmployeeOrganization)
	for _, l := range links {
		linksByEmployee[l.EmployeeID] = append(linksByEmployee[l.EmployeeID], l)
	}
	orgByID := make(map[int64]*entities.Organization, len(orgs))
	for i := range orgs {
		orgByID[orgs[i].ID] = &orgs[i]
	}
	depsByEmployee := make(map[int64][]entities.Department)
	for _, d := range deps {
		depsByEmployee[d.EmployeeID] = append(depsByEmployee[d.EmployeeID], d.Department)
	}

	h := Hydration{
		Schedules:   make(map[int64]Schedule, len(employeeIDs)),
		Departments: make(map[int64]entities.Department),
	}
	for _, id := range employeeIDs {
		empLinks := linksByEmployee[id]
		org := ScopedOrganization(principalOrg, sel, empLinks)

		var link *entities.EmployeeOrganization
		for i := range empLinks {
			if empLinks[i].OrganizationID == org && empLinks[i].IsLive() {
				link = &empLinks[i]
				break
			}
		}
		h.Schedules[id] = ResolveSchedule(link, orgByID[org])

		if dep, ok := PickDepartment(depsByEmployee[id], org); ok {
			h.Departments[id] = dep
		}
	}
	return h
}

// OrganizationIDs перечисляет организации, графики которых нужны для сотрудников страницы.
func OrganizationIDs(principalOrg int64, sel entities.ReportSelection, links []entities.EmployeeOrganization) []int64 {
	byEmployee := make(map[int64][]entities.EmployeeOrganization)
	for _, l := range links {
		byEmployee[l.EmployeeID] = append(byEmployee[l.EmployeeID], l)
	}
	seen := make(map[int64]bool)
	ids := make([]int64, 0)
	add := func(id int64) {
		if id != 0 && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	add(principalOrg)
	if sel.EntityType == entities.ReportOrganization {
		add(sel.EntityID)
	}
	for _, empLinks := range byEmployee {
		add(ScopedOrganization(principalOrg, sel, empLinks))
	}
	return ids
}
