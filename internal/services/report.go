package services

import (
	"context"
	"io"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"access-control/internal/authz"
	"access-control/internal/dto"
	"access-control/internal/entities"
	"access-control/internal/report"
	"access-control/internal/repositories"
	apperrors "access-control/pkg/errors"
	"access-control/pkg/utils"
)

// дескрипторы сущностей, по которым строится отчёт, для проверки области
var reportScope = map[entities.ReportEntityType]*repositories.EntityDescriptor{
	entities.ReportEmployee:     repositories.EmployeeDescriptor,
	entities.ReportDepartment:   repositories.DepartmentDescriptor,
	entities.ReportOrganization: repositories.OrganizationDescriptor,
	entities.ReportDevice:       repositories.DeviceDescriptor,
	entities.ReportCheckpoint:   repositories.CheckpointDescriptor,
}

// ReportResult: страница отчёта с данными для обоих форматов вывода.
type ReportResult struct {
	Lines       []report.Line
	Total       int
	Employees   map[int64]entities.Employee
	Departments map[int64]entities.Department
	Name        string
}

func (r *ReportResult) DTO() dto.ReportDTO {
	out := dto.ReportDTO{
		Data:  r.Lines,
		Count: r.Total,
		Extra: dto.ReportExtraDTO{
			Employees:   make(map[int64]dto.EmployeeDTO, len(r.Employees)),
			Departments: make(map[int64]dto.DepartmentDTO, len(r.Departments)),
		},
	}
	for id, e := range r.Employees {
		out.Extra.Employees[id] = dto.EmployeeFromEntity(e)
	}
	for id, d := range r.Departments {
		out.Extra.Departments[id] = dto.DepartmentFromEntity(d)
	}
	return out
}

// WriteXLSX пишет книгу отчёта в w.
func (r *ReportResult) WriteXLSX(w io.Writer) error {
	return report.WriteXLSX(w, r.Lines, r.Employees, r.Departments)
}

func (r *ReportResult) FileName(at time.Time) string {
	return report.FileName(r.Name, at)
}

type ReportService struct {
	txManager  repositories.TxManagerInterface
	reportRepo repositories.ReportRepositoryInterface
	entityRepo repositories.EntityRepositoryInterface
	logger     *zap.Logger
}

func NewReportService(
	txManager repositories.TxManagerInterface,
	reportRepo repositories.ReportRepositoryInterface,
	entityRepo repositories.EntityRepositoryInterface,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		txManager:  txManager,
		reportRepo: reportRepo,
		entityRepo: entityRepo,
		logger:     logger,
	}
}

// Selection переводит параметры запроса в выборку событий. Конец периода включает весь день end.
func Selection(p authz.Principal, q dto.ReportQueryDTO) (entities.ReportSelection, error) {
	t, err := entities.ParseReportEntityType(q.EntityType)
	if err != nil {
		return entities.ReportSelection{}, apperrors.NewValidationError("Entity type", err.Error())
	}
	sel := entities.ReportSelection{EntityType: t, EntityID: q.EntityID, OrganizationID: p.OrgID()}
	if t != entities.ReportAll && q.EntityID == 0 {
		return sel, apperrors.NewValidationError("Entity id", "обязательное поле")
	}
	if q.From < 0 {
		return sel, apperrors.NewValidationError("From", "должно быть не меньше 0")
	}
	if q.PerPage < 0 {
		return sel, apperrors.NewValidationError("Per page", "должно быть не меньше 0")
	}
	if q.Start != "" {
		from, err := utils.ParseCompactDate(q.Start)
		if err != nil {
			return sel, apperrors.NewValidationError("Start", err.Error())
		}
		sel.From = &from
	}
	if q.End != "" {
		end, err := utils.ParseCompactDate(q.End)
		if err != nil {
			return sel, apperrors.NewValidationError("End", err.Error())
		}
		to := end.AddDate(0, 0, 1).Add(-time.Microsecond)
		sel.To = &to
	}
	return sel, nil
}

// Build строит страницу отчёта из одного снимка базы.
func (s *ReportService) Build(ctx context.Context, p authz.Principal, q dto.ReportQueryDTO) (*ReportResult, error) {
	if err := authz.Require(p, authz.ResourceReport, authz.Read); err != nil {
		return nil, err
	}
	sel, err := Selection(p, q)
	if err != nil {
		return nil, err
	}

	res := &ReportResult{
		Lines:       []report.Line{},
		Employees:   make(map[int64]entities.Employee),
		Departments: make(map[int64]entities.Department),
	}
	err = s.txManager.RunInReadTx(ctx, func(tx pgx.Tx) error {
		if ok, err := s.inScope(ctx, tx, p, sel); err != nil || !ok {
			return err
		}
		if res.Name, err = s.reportRepo.EntityName(ctx, tx, sel.EntityType, sel.EntityID); err != nil {
			return err
		}
		return s.fill(ctx, tx, p, sel, q, res)
	})
	if err != nil {
		s.logger.Error("Ошибка построения отчёта",
			zap.String("entityType", string(sel.EntityType)), zap.Int64("entityID", sel.EntityID), zap.Error(err))
		return nil, err
	}
	s.logger.Debug("Отчёт построен", zap.Int("lines", len(res.Lines)), zap.Int("total", res.Total))
	return res, nil
}

// inScope проверяет область: сущность вне неё даёт пустой отчёт.
func (s *ReportService) inScope(ctx context.Context, tx pgx.Tx, p authz.Principal, sel entities.ReportSelection) (bool, error) {
	d, ok := reportScope[sel.EntityType]
	if !ok || !p.Scoped() {
		return true, nil
	}
	admissible, err := s.entityRepo.Admissible(ctx, tx, d, p, []int64{sel.EntityID})
	if err != nil {
		return false, err
	}
	return admissible[sel.EntityID], nil
}

func (s *ReportService) fill(ctx context.Context, tx pgx.Tx, p authz.Principal, sel entities.ReportSelection, q dto.ReportQueryDTO, res *ReportResult) error {
	counts, err := s.reportRepo.DayCounts(ctx, tx, sel)
	if err != nil {
		return err
	}
	days := report.DayLinesFromCounts(counts)
	res.Total = report.TotalLines(days)

	windows := report.Paginate(days, report.Page{From: q.From, PerPage: q.PerPage, Count: q.Count})
	from, to, ok := report.EventRange(windows)
	if !ok {
		return nil
	}
	events, err := s.reportRepo.Events(ctx, tx, sel, from, to)
	if err != nil {
		return err
	}
	pairs := report.PairByDay(events)

	employeeIDs := pageEmployees(windows, pairs)
	if len(employeeIDs) == 0 {
		return nil
	}
	employees, err := s.reportRepo.Employees(ctx, tx, employeeIDs)
	if err != nil {
		return err
	}
	links, err := s.reportRepo.EmployeeOrganizations(ctx, tx, employeeIDs)
	if err != nil {
		return err
	}
	orgs, err := s.reportRepo.Organizations(ctx, tx, report.OrganizationIDs(p.OrgID(), sel, links))
	if err != nil {
		return err
	}
	deps, err := s.reportRepo.ReportDepartments(ctx, tx, employeeIDs)
	if err != nil {
		return err
	}

	h := report.BuildHydration(p.OrgID(), sel, employeeIDs, links, orgs, deps)
	res.Lines = report.Assemble(windows, pairs, h)
	for _, e := range employees {
		res.Employees[e.ID] = e
	}
	for _, d := range h.Departments {
		res.Departments[d.ID] = d
	}
	return nil
}

// pageEmployees выбирает сотрудников, чьи строки попали в окна страницы.
func pageEmployees(windows []report.Window, pairs map[time.Time][]report.Pair) []int64 {
	seen := make(map[int64]bool)
	ids := make([]int64, 0)
	for _, w := range windows {
		dayPairs := pairs[w.Day]
		for i := w.From; i < min(w.To, len(dayPairs)); i++ {
			id := dayPairs[i].In.EmployeeID
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

