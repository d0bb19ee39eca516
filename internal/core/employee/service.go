package employee

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/codex-graphql-employee/internal/core/apperror"
	"github.com/ogurasousui/codex-graphql-employee/internal/core/validation"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// Service は社員に関するユースケースをまとめます。
type Service struct {
	repo   Repository
	media  MediaStore
	clock  Clock
	tx     TransactionManager
	logger *slog.Logger
}

// UseCase は社員ユースケースの公開インターフェースです。
type UseCase interface {
	CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error)
	GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error)
	ListEmployees(ctx context.Context) ([]*Employee, error)
	SearchEmployees(ctx context.Context, in SearchEmployeesInput) ([]*Employee, error)
	UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error)
	DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) (*Employee, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, media MediaStore, clock Clock, tx TransactionManager, logger *slog.Logger) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, media: media, clock: clock, tx: tx, logger: logger}
}

// CreateEmployeeInput は社員作成時の入力です。
type CreateEmployeeInput struct {
	FirstName     string
	LastName      string
	Email         string
	Gender        *string
	Designation   string
	Salary        *float64
	DateOfJoining string
	Department    string
	Photo         *string
}

// UpdateEmployeeInput は社員更新時の入力です。Set が false の項目は変更しません。
type UpdateEmployeeInput struct {
	ID            string
	FirstName     Optional[string]
	LastName      Optional[string]
	Email         Optional[string]
	Gender        Optional[string]
	Designation   Optional[string]
	Salary        Optional[float64]
	DateOfJoining Optional[string]
	Department    Optional[string]
	Photo         Optional[string]
}

// GetEmployeeInput は社員取得時の入力です。
type GetEmployeeInput struct {
	ID string
}

// DeleteEmployeeInput は社員削除時の入力です。
type DeleteEmployeeInput struct {
	ID string
}

// SearchEmployeesInput は社員検索時の入力です。
type SearchEmployeesInput struct {
	Designation *string
	Department  *string
}

// CreateEmployee は新しい社員を作成します。
// 写真のアップロードはトランザクション開始前に行い、保存に失敗した場合は破棄します。
func (s *Service) CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error) {
	if err := validateCreateInput(in); err != nil {
		return nil, err
	}

	joinedAt, err := ParseDate(in.DateOfJoining)
	if err != nil {
		return nil, apperror.Validation(msgInvalidDate)
	}

	email := normalizeEmail(in.Email)

	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		return s.ensureEmailNotExists(txCtx, email)
	}); err != nil {
		return nil, err
	}

	var photo *string
	if in.Photo != nil && !validation.IsBlank(*in.Photo) {
		url, err := s.upload(ctx, strings.TrimSpace(*in.Photo))
		if err != nil {
			return nil, err
		}
		photo = &url
	}

	var created *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.ensureEmailNotExists(txCtx, email); err != nil {
			return err
		}

		now := s.clock.Now()
		result, err := s.repo.Create(txCtx, &Employee{
			FirstName:     strings.TrimSpace(in.FirstName),
			LastName:      strings.TrimSpace(in.LastName),
			Email:         email,
			Gender:        toGender(in.Gender),
			Designation:   strings.TrimSpace(in.Designation),
			Salary:        *in.Salary,
			DateOfJoining: joinedAt,
			Department:    strings.TrimSpace(in.Department),
			Photo:         photo,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if err != nil {
			return err
		}

		created = result
		return nil
	}); err != nil {
		if photo != nil {
			s.discardPhoto(ctx, *photo)
		}
		return nil, err
	}

	return created, nil
}

// UpdateEmployee は指定された項目のみを社員情報に反映します。
// 対象行はトランザクション内でロックしてから読み直すため、同時更新で変更が失われません。
func (s *Service) UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error) {
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}

	if err := validateUpdateInput(in); err != nil {
		return nil, err
	}

	current, err := s.GetEmployee(ctx, GetEmployeeInput{ID: id})
	if err != nil {
		return nil, err
	}

	uploaded, err := s.preparePhoto(ctx, current.Photo, in.Photo)
	if err != nil {
		return nil, err
	}

	var (
		updated *Employee
		stale   *string
	)
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		locked, err := s.repo.FindByIDForUpdate(txCtx, id)
		if err != nil {
			return err
		}

		if in.Email.HasValue() {
			email := normalizeEmail(*in.Email.Value)
			if email != locked.Email {
				if err := s.ensureEmailNotExists(txCtx, email); err != nil {
					return err
				}
			}
		}

		var next *string
		next, stale = settlePhoto(locked.Photo, in.Photo, uploaded)

		applyUpdate(locked, in, next)
		locked.UpdatedAt = s.clock.Now()

		result, err := s.repo.Update(txCtx, locked)
		if err != nil {
			return err
		}

		updated = result
		return nil
	}); err != nil {
		if uploaded != nil {
			s.discardPhoto(ctx, *uploaded)
		}
		return nil, err
	}

	if stale != nil {
		s.discardPhoto(ctx, *stale)
	}

	return updated, nil
}

// DeleteEmployee は社員を削除し、削除前の状態を返します。
// 写真の削除に失敗しても社員の削除は継続します。
func (s *Service) DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) (*Employee, error) {
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}

	var deleted *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByIDForUpdate(txCtx, id)
		if err != nil {
			return err
		}

		if err := s.repo.Delete(txCtx, id); err != nil {
			return err
		}

		deleted = existing
		return nil
	}); err != nil {
		return nil, err
	}

	if deleted.Photo != nil {
		s.discardPhoto(ctx, *deleted.Photo)
	}

	return deleted, nil
}

// GetEmployee は社員を取得します。
func (s *Service) GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error) {
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}

	var result *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// ListEmployees は全社員を作成日時の新しい順に返します。
func (s *Service) ListEmployees(ctx context.Context) ([]*Employee, error) {
	return s.list(ctx, ListEmployeesFilter{})
}

// SearchEmployees は職位・部署の部分一致で社員を検索します。
func (s *Service) SearchEmployees(ctx context.Context, in SearchEmployeesInput) ([]*Employee, error) {
	filter := ListEmployeesFilter{
		Designation: nonBlank(in.Designation),
		Department:  nonBlank(in.Department),
	}
	if filter.Designation == nil && filter.Department == nil {
		return nil, ErrSearchCriteriaRequired
	}
	return s.list(ctx, filter)
}

func (s *Service) list(ctx context.Context, filter ListEmployeesFilter) ([]*Employee, error) {
	var employees []*Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.List(txCtx, filter)
		if err != nil {
			return err
		}
		employees = found
		return nil
	}); err != nil {
		return nil, err
	}
	if employees == nil {
		employees = []*Employee{}
	}
	return employees, nil
}

// preparePhoto は新しい画像が指定されていればアップロードし、その URL を返します。
// 未指定・クリア・現在と同じ URL の場合は何もしません。
func (s *Service) preparePhoto(ctx context.Context, current *string, in Optional[string]) (*string, error) {
	if !in.HasValue() || validation.IsBlank(*in.Value) {
		return nil, nil
	}

	next := strings.TrimSpace(*in.Value)
	if current != nil && *current == next {
		return nil, nil
	}

	url, err := s.upload(ctx, next)
	if err != nil {
		return nil, err
	}
	return &url, nil
}

// settlePhoto はロック済みの行に対して反映後の写真と、保存後に削除する旧写真を決定します。
func settlePhoto(current *string, in Optional[string], uploaded *string) (next, stale *string) {
	switch {
	case !in.Set:
		return current, nil
	case uploaded != nil:
		return uploaded, current
	case in.Value == nil || validation.IsBlank(*in.Value):
		return nil, current
	}

	kept := strings.TrimSpace(*in.Value)
	if current != nil && *current != kept {
		return &kept, current
	}
	return &kept, nil
}

func (s *Service) upload(ctx context.Context, data string) (string, error) {
	url, err := s.media.Upload(ctx, data)
	if err != nil {
		return "", apperror.Wrap(apperror.KindOf(err), err, "Failed to upload image: "+err.Error())
	}
	return url, nil
}

func (s *Service) discardPhoto(ctx context.Context, url string) {
	if err := s.media.Delete(ctx, url); err != nil {
		s.logger.WarnContext(ctx, "failed to delete employee photo", slog.String("url", url), slog.Any("error", err))
	}
}

func (s *Service) ensureEmailNotExists(ctx context.Context, email string) error {
	emp, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrEmployeeNotFound) {
		return err
	}
	if emp != nil {
		return ErrEmailAlreadyExists
	}
	return nil
}

func applyUpdate(e *Employee, in UpdateEmployeeInput, photo *string) {
	if in.FirstName.HasValue() {
		e.FirstName = strings.TrimSpace(*in.FirstName.Value)
	}
	if in.LastName.HasValue() {
		e.LastName = strings.TrimSpace(*in.LastName.Value)
	}
	if in.Email.HasValue() {
		e.Email = normalizeEmail(*in.Email.Value)
	}
	if in.Gender.Set {
		e.Gender = toGender(in.Gender.Value)
	}
	if in.Designation.HasValue() {
		e.Designation = strings.TrimSpace(*in.Designation.Value)
	}
	if in.Salary.HasValue() {
		e.Salary = *in.Salary.Value
	}
	if in.DateOfJoining.HasValue() {
		if t, err := ParseDate(*in.DateOfJoining.Value); err == nil {
			e.DateOfJoining = t
		}
	}
	if in.Department.HasValue() {
		e.Department = strings.TrimSpace(*in.Department.Value)
	}
	if in.Photo.Set {
		e.Photo = photo
	}
}

func normalizeID(raw string) (string, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", ErrEmployeeNotFound
	}
	return parsed.String(), nil
}

func normalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func toGender(raw *string) *Gender {
	if raw == nil {
		return nil
	}
	g := Gender(*raw)
	return &g
}

func nonBlank(raw *string) *string {
	if raw == nil || validation.IsBlank(*raw) {
		return nil
	}
	trimmed := strings.TrimSpace(*raw)
	return &trimmed
}
