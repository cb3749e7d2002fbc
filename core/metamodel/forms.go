package metamodel

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/rastreio/core"
	"github.com/trezcool/rastreio/core/history"
)

// Inline rows of the change forms.
// A row without id is new, and ignored while all its fields are blank.
// An existing row flagged with delete is removed; existing rows left out of a form are kept as they are.
type (
	EnvironmentalRow struct {
		ID             string `json:"id"`
		ExternalFactor string `json:"external_factor" validate:"notblank,max=255"`
		Impact         string `json:"impact" validate:"notblank"`
		Delete         bool   `json:"delete"`
	}

	OrganizationalRow struct {
		ID        string `json:"id"`
		Objective string `json:"objective" validate:"notblank,max=255"`
		Strategy  string `json:"strategy" validate:"notblank"`
		Delete    bool   `json:"delete"`
	}

	ManagerialRow struct {
		ID       string    `json:"id"`
		Resource string    `json:"resource" validate:"notblank,max=255"`
		Deadline core.Date `json:"deadline" validate:"required,notpast"`
		Delete   bool      `json:"delete"`
	}

	DevelopmentRow struct {
		ID             string   `json:"id"`
		RequirementIDs []string `json:"requirement_ids"`
		Delete         bool     `json:"delete"`
	}

	// LinkRow links the form's object to another record, named by ID.
	LinkRow struct {
		ID     string `json:"id"`
		Delete bool   `json:"delete"`
	}

	TaskRow struct {
		ID          string `json:"id"`
		Description string `json:"description" validate:"notblank"`
		Status      string `json:"status" validate:"required,oneof=pending done"`
		Delete      bool   `json:"delete"`
	}
)

func (r *EnvironmentalRow) clean() {
	r.ID = core.CleanString(r.ID)
	r.ExternalFactor = core.CleanString(r.ExternalFactor)
	r.Impact = core.CleanString(r.Impact)
}

func (r EnvironmentalRow) isBlank() bool {
	return r.ID == "" && r.ExternalFactor == "" && r.Impact == ""
}

func (r *OrganizationalRow) clean() {
	r.ID = core.CleanString(r.ID)
	r.Objective = core.CleanString(r.Objective)
	r.Strategy = core.CleanString(r.Strategy)
}

func (r OrganizationalRow) isBlank() bool {
	return r.ID == "" && r.Objective == "" && r.Strategy == ""
}

func (r *ManagerialRow) clean() {
	r.ID = core.CleanString(r.ID)
	r.Resource = core.CleanString(r.Resource)
}

func (r ManagerialRow) isBlank() bool {
	return r.ID == "" && r.Resource == "" && r.Deadline.IsZero()
}

func (r *DevelopmentRow) clean() {
	r.ID = core.CleanString(r.ID)
	r.RequirementIDs = core.CleanStrings(r.RequirementIDs)
}

func (r DevelopmentRow) isBlank() bool {
	return r.ID == "" && len(r.RequirementIDs) == 0
}

func (r *TaskRow) clean() {
	r.ID = core.CleanString(r.ID)
	r.Description = core.CleanString(r.Description)
	r.Status = core.CleanString(r.Status, true)
}

// a new task row only holding the default status is still blank.
func (r TaskRow) isBlank() bool {
	return r.ID == "" && r.Description == "" && (r.Status == "" || r.Status == TaskPending)
}

// MetaModelForm edits a meta-model together with its levels and its use case and user story links.
type MetaModelForm struct {
	Description          string              `json:"description"`
	IntermediateModelIDs []string            `json:"intermediate_model_ids"`
	Environmentals       []EnvironmentalRow  `json:"environmentals"`
	Organizationals      []OrganizationalRow `json:"organizationals"`
	Managerials          []ManagerialRow     `json:"managerials"`
	Developments         []DevelopmentRow    `json:"developments"`
	UseCases             []LinkRow           `json:"use_cases"`
	UserStories          []LinkRow           `json:"user_stories"`
}

// ManagerialForm edits a managerial level together with its tasks.
type ManagerialForm struct {
	MetaModelID string    `json:"meta_model_id"`
	Resource    string    `json:"resource"`
	Deadline    core.Date `json:"deadline"`
	Tasks       []TaskRow `json:"tasks"`
}

// formErrors collects the field errors of a whole form.
type formErrors []core.FieldError

func (fe *formErrors) add(prefix string, err error) error {
	if err == nil {
		return nil
	}
	flds, ok := core.NestedFieldErrors(prefix, err)
	if !ok {
		return err
	}
	*fe = append(*fe, flds...)
	return nil
}

func (fe formErrors) err() error {
	if len(fe) == 0 {
		return nil
	}
	return core.NewValidationError(nil, fe...)
}

func rowPrefix(inline string, i int) string {
	return fmt.Sprintf("%s[%d]", inline, i)
}

// MetaModelChangeForm returns the form of a meta-model (a blank one if id is empty),
// with `extra` blank rows appended to each inline.
func (svc *Service) MetaModelChangeForm(ctx context.Context, id string, extra int) (MetaModel, MetaModelForm, error) {
	var (
		mm   MetaModel
		form MetaModelForm
	)
	if id != "" {
		var err error
		if mm, err = svc.repo.GetMetaModel(ctx, id); err != nil {
			return MetaModel{}, MetaModelForm{}, err
		}
		if form, err = svc.loadMetaModelForm(ctx, mm); err != nil {
			return MetaModel{}, MetaModelForm{}, err
		}
	}
	for i := 0; i < extra; i++ {
		form.Environmentals = append(form.Environmentals, EnvironmentalRow{})
		form.Organizationals = append(form.Organizationals, OrganizationalRow{})
		form.Managerials = append(form.Managerials, ManagerialRow{})
		form.Developments = append(form.Developments, DevelopmentRow{})
		form.UseCases = append(form.UseCases, LinkRow{})
		form.UserStories = append(form.UserStories, LinkRow{})
	}
	return mm, form, nil
}

func (svc *Service) loadMetaModelForm(ctx context.Context, mm MetaModel) (MetaModelForm, error) {
	form := MetaModelForm{
		Description:          mm.Description,
		IntermediateModelIDs: mm.IntermediateModelIDs,
		Environmentals:       []EnvironmentalRow{},
		Organizationals:      []OrganizationalRow{},
		Managerials:          []ManagerialRow{},
		Developments:         []DevelopmentRow{},
		UseCases:             []LinkRow{},
		UserStories:          []LinkRow{},
	}

	envs, err := svc.repo.QueryEnvironmentals(ctx, mm.ID)
	if err != nil {
		return form, err
	}
	for _, env := range envs {
		form.Environmentals = append(form.Environmentals, EnvironmentalRow{ID: env.ID, ExternalFactor: env.ExternalFactor, Impact: env.Impact})
	}

	orgs, err := svc.repo.QueryOrganizationals(ctx, mm.ID)
	if err != nil {
		return form, err
	}
	for _, org := range orgs {
		form.Organizationals = append(form.Organizationals, OrganizationalRow{ID: org.ID, Objective: org.Objective, Strategy: org.Strategy})
	}

	mgrs, _, err := svc.repo.QueryManagerials(ctx, &ManagerialFilter{MetaModelID: mm.ID}, core.QueryOptions{Ordering: DefaultManagerialOrdering})
	if err != nil {
		return form, err
	}
	for _, mgr := range mgrs {
		form.Managerials = append(form.Managerials, ManagerialRow{ID: mgr.ID, Resource: mgr.Resource, Deadline: mgr.Deadline})
	}

	devs, err := svc.repo.QueryDevelopments(ctx, mm.ID)
	if err != nil {
		return form, err
	}
	for _, dev := range devs {
		form.Developments = append(form.Developments, DevelopmentRow{ID: dev.ID, RequirementIDs: dev.RequirementIDs})
	}

	for _, ucID := range mm.UseCaseIDs {
		form.UseCases = append(form.UseCases, LinkRow{ID: ucID})
	}
	for _, usID := range mm.UserStoryIDs {
		form.UserStories = append(form.UserStories, LinkRow{ID: usID})
	}
	return form, nil
}

// metaModelChildren holds the current level entities of a meta-model, by id.
type metaModelChildren struct {
	envs map[string]Environmental
	orgs map[string]Organizational
	mgrs map[string]Managerial
	devs map[string]Development
}

func (svc *Service) loadChildren(ctx context.Context, mmID string) (metaModelChildren, error) {
	children := metaModelChildren{
		envs: make(map[string]Environmental),
		orgs: make(map[string]Organizational),
		mgrs: make(map[string]Managerial),
		devs: make(map[string]Development),
	}
	if mmID == "" {
		return children, nil
	}

	envs, err := svc.repo.QueryEnvironmentals(ctx, mmID)
	if err != nil {
		return children, err
	}
	for _, env := range envs {
		children.envs[env.ID] = env
	}
	orgs, err := svc.repo.QueryOrganizationals(ctx, mmID)
	if err != nil {
		return children, err
	}
	for _, org := range orgs {
		children.orgs[org.ID] = org
	}
	mgrs, _, err := svc.repo.QueryManagerials(ctx, &ManagerialFilter{MetaModelID: mmID}, core.QueryOptions{})
	if err != nil {
		return children, err
	}
	for _, mgr := range mgrs {
		children.mgrs[mgr.ID] = mgr
	}
	devs, err := svc.repo.QueryDevelopments(ctx, mmID)
	if err != nil {
		return children, err
	}
	for _, dev := range devs {
		children.devs[dev.ID] = dev
	}
	return children, nil
}

func (form *MetaModelForm) clean() {
	form.Description = core.CleanString(form.Description)
	form.IntermediateModelIDs = core.CleanStrings(form.IntermediateModelIDs)
	for i := range form.Environmentals {
		form.Environmentals[i].clean()
	}
	for i := range form.Organizationals {
		form.Organizationals[i].clean()
	}
	for i := range form.Managerials {
		form.Managerials[i].clean()
	}
	for i := range form.Developments {
		form.Developments[i].clean()
	}
	for i := range form.UseCases {
		form.UseCases[i].ID = core.CleanString(form.UseCases[i].ID)
	}
	for i := range form.UserStories {
		form.UserStories[i].ID = core.CleanString(form.UserStories[i].ID)
	}
}

func (svc *Service) validateMetaModelForm(ctx context.Context, form *MetaModelForm, children metaModelChildren) error {
	var errs formErrors

	if err := errs.add("", core.Validate.Struct(MetaModelData{Description: form.Description})); err != nil {
		return err
	}
	if err := errs.add("", svc.checkIntermediateModels(ctx, "intermediate_model_ids", form.IntermediateModelIDs)); err != nil {
		return err
	}

	for i, row := range form.Environmentals {
		prefix := rowPrefix("environmentals", i)
		switch {
		case row.isBlank():
		case row.ID != "" && !hasKey(children.envs, row.ID):
			errs = append(errs, unknownRow(prefix))
		case !row.Delete:
			if err := errs.add(prefix, core.Validate.Struct(row)); err != nil {
				return err
			}
		}
	}
	for i, row := range form.Organizationals {
		prefix := rowPrefix("organizationals", i)
		switch {
		case row.isBlank():
		case row.ID != "" && !hasKey(children.orgs, row.ID):
			errs = append(errs, unknownRow(prefix))
		case !row.Delete:
			if err := errs.add(prefix, core.Validate.Struct(row)); err != nil {
				return err
			}
		}
	}
	for i, row := range form.Managerials {
		prefix := rowPrefix("managerials", i)
		orig, exists := children.mgrs[row.ID]
		switch {
		case row.isBlank():
		case row.ID != "" && !exists:
			errs = append(errs, unknownRow(prefix))
		case !row.Delete:
			var err error
			if exists && row.Deadline.Equal(orig.Deadline) {
				err = core.Validate.StructExcept(row, "Deadline")
			} else {
				err = core.Validate.Struct(row)
			}
			if err = errs.add(prefix, err); err != nil {
				return err
			}
		}
	}
	for i, row := range form.Developments {
		prefix := rowPrefix("developments", i)
		switch {
		case row.isBlank():
		case row.ID != "" && !hasKey(children.devs, row.ID):
			errs = append(errs, unknownRow(prefix))
		case !row.Delete:
			err := core.Validate.Struct(row)
			if err == nil {
				err = svc.tracer.CheckRequirements(ctx, "requirement_ids", row.RequirementIDs, true /* traceableOnly */)
			}
			if err = errs.add(prefix, err); err != nil {
				return err
			}
		}
	}
	for i, row := range form.UseCases {
		if row.ID == "" {
			continue
		}
		err := svc.tracer.CheckUseCases(ctx, "id", []string{row.ID})
		if err = errs.add(rowPrefix("use_cases", i), err); err != nil {
			return err
		}
	}
	for i, row := range form.UserStories {
		if row.ID == "" {
			continue
		}
		err := svc.tracer.CheckUserStories(ctx, "id", []string{row.ID})
		if err = errs.add(rowPrefix("user_stories", i), err); err != nil {
			return err
		}
	}
	return errs.err()
}

// SaveMetaModelForm saves a meta-model with all its inline rows in one transaction.
// An empty id adds a new meta-model.
func (svc *Service) SaveMetaModelForm(ctx context.Context, id string, form MetaModelForm) (MetaModel, error) {
	form.clean()

	var mm MetaModel
	err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if id != "" {
			if mm, err = svc.repo.GetMetaModel(ctx, id); err != nil {
				return err
			}
		}
		children, err := svc.loadChildren(ctx, mm.ID)
		if err != nil {
			return err
		}
		if err = svc.validateMetaModelForm(ctx, &form, children); err != nil {
			return err
		}

		mm.Description = form.Description
		mm.IntermediateModelIDs = form.IntermediateModelIDs
		mm.UseCaseIDs = mergeLinks(mm.UseCaseIDs, form.UseCases)
		mm.UserStoryIDs = mergeLinks(mm.UserStoryIDs, form.UserStories)

		if mm.ID == "" {
			if mm.ID, err = core.NewID(); err != nil {
				return err
			}
			now := core.NowFunc().UTC().Truncate(time.Microsecond)
			mm.CreatedAt, mm.UpdatedAt = now, now
			if mm, err = svc.repo.CreateMetaModel(ctx, mm); err != nil {
				return errors.Wrap(err, "creating meta-model")
			}
			if _, err = svc.history.Record(ctx, history.EntityMetaModel, mm.ID, history.Created, mm); err != nil {
				return err
			}
		} else if err = svc.saveMetaModel(ctx, &mm); err != nil {
			return err
		}
		return svc.saveLevelRows(ctx, mm.ID, form)
	})
	if err != nil {
		return MetaModel{}, err
	}
	return mm, nil
}

func (svc *Service) saveLevelRows(ctx context.Context, mmID string, form MetaModelForm) error {
	for _, row := range form.Environmentals {
		env := Environmental{ID: row.ID, MetaModelID: mmID, ExternalFactor: row.ExternalFactor, Impact: row.Impact}
		if err := saveRow(row.isBlank(), row.Delete, &env.ID,
			func() error { _, err := svc.repo.CreateEnvironmental(ctx, env); return err },
			func() error { _, err := svc.repo.UpdateEnvironmental(ctx, env); return err },
			func() error { return svc.repo.DeleteEnvironmental(ctx, env.ID) },
		); err != nil {
			return errors.Wrap(err, "saving environmental level")
		}
	}
	for _, row := range form.Organizationals {
		org := Organizational{ID: row.ID, MetaModelID: mmID, Objective: row.Objective, Strategy: row.Strategy}
		if err := saveRow(row.isBlank(), row.Delete, &org.ID,
			func() error { _, err := svc.repo.CreateOrganizational(ctx, org); return err },
			func() error { _, err := svc.repo.UpdateOrganizational(ctx, org); return err },
			func() error { return svc.repo.DeleteOrganizational(ctx, org.ID) },
		); err != nil {
			return errors.Wrap(err, "saving organizational level")
		}
	}
	for _, row := range form.Managerials {
		mgr := Managerial{ID: row.ID, MetaModelID: mmID, Resource: row.Resource, Deadline: row.Deadline}
		if err := saveRow(row.isBlank(), row.Delete, &mgr.ID,
			func() error { _, err := svc.repo.CreateManagerial(ctx, mgr); return err },
			func() error { _, err := svc.repo.UpdateManagerial(ctx, mgr); return err },
			func() error { return svc.repo.DeleteManagerial(ctx, mgr.ID) },
		); err != nil {
			return errors.Wrap(err, "saving managerial level")
		}
	}
	for _, row := range form.Developments {
		dev := Development{ID: row.ID, MetaModelID: mmID, RequirementIDs: row.RequirementIDs}
		if err := saveRow(row.isBlank(), row.Delete, &dev.ID,
			func() error { _, err := svc.repo.CreateDevelopment(ctx, dev); return err },
			func() error { _, err := svc.repo.UpdateDevelopment(ctx, dev); return err },
			func() error { return svc.repo.DeleteDevelopment(ctx, dev.ID) },
		); err != nil {
			return errors.Wrap(err, "saving development level")
		}
	}
	return nil
}

// saveRow runs the create, update or delete of an inline row. New rows get their id before create runs.
func saveRow(blank, del bool, id *string, create, update, remove func() error) error {
	switch {
	case blank:
		return nil
	case *id == "":
		if del {
			return nil
		}
		newID, err := core.NewID()
		if err != nil {
			return err
		}
		*id = newID
		return create()
	case del:
		return remove()
	default:
		return update()
	}
}

// mergeLinks applies link rows to the current linked ids.
func mergeLinks(current []string, rows []LinkRow) []string {
	removed := make(map[string]bool)
	for _, row := range rows {
		if row.ID != "" && row.Delete {
			removed[row.ID] = true
		}
	}
	ids := make([]string, 0, len(current)+len(rows))
	for _, id := range current {
		if !removed[id] {
			ids = append(ids, id)
		}
	}
	for _, row := range rows {
		if row.ID != "" && !row.Delete {
			ids = append(ids, row.ID)
		}
	}
	return core.CleanStrings(ids)
}

// ManagerialChangeForm returns the form of a managerial level (a blank one if id is empty),
// with `extra` blank task rows.
func (svc *Service) ManagerialChangeForm(ctx context.Context, id string, extra int) (Managerial, ManagerialForm, error) {
	var (
		mgr  Managerial
		form ManagerialForm
	)
	if id != "" {
		var err error
		if mgr, err = svc.repo.GetManagerial(ctx, id); err != nil {
			return Managerial{}, ManagerialForm{}, err
		}
		tasks, err := svc.repo.QueryTasks(ctx, mgr.ID)
		if err != nil {
			return Managerial{}, ManagerialForm{}, err
		}
		form = ManagerialForm{MetaModelID: mgr.MetaModelID, Resource: mgr.Resource, Deadline: mgr.Deadline, Tasks: []TaskRow{}}
		for _, task := range tasks {
			form.Tasks = append(form.Tasks, TaskRow{ID: task.ID, Description: task.Description, Status: task.Status})
		}
	}
	for i := 0; i < extra; i++ {
		form.Tasks = append(form.Tasks, TaskRow{Status: TaskPending})
	}
	return mgr, form, nil
}

// SaveManagerialForm saves a managerial level with its task rows in one transaction.
// An empty id adds a new managerial level.
func (svc *Service) SaveManagerialForm(ctx context.Context, id string, form ManagerialForm) (Managerial, error) {
	data := ManagerialData{MetaModelID: form.MetaModelID, Resource: form.Resource, Deadline: form.Deadline}
	for i := range form.Tasks {
		form.Tasks[i].clean()
	}

	var mgr Managerial
	err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var (
			orig  *Managerial
			tasks = make(map[string]Task)
			errs  formErrors
			err   error
		)
		if id != "" {
			if mgr, err = svc.repo.GetManagerial(ctx, id); err != nil {
				return err
			}
			orig = &mgr
			current, err := svc.repo.QueryTasks(ctx, mgr.ID)
			if err != nil {
				return err
			}
			for _, task := range current {
				tasks[task.ID] = task
			}
		}

		if err = errs.add("", data.Validate(ctx, svc, orig)); err != nil {
			return err
		}
		for i, row := range form.Tasks {
			prefix := rowPrefix("tasks", i)
			switch {
			case row.isBlank():
			case row.ID != "" && !hasKey(tasks, row.ID):
				errs = append(errs, unknownRow(prefix))
			case !row.Delete:
				if err = errs.add(prefix, core.Validate.Struct(row)); err != nil {
					return err
				}
			}
		}
		if err = errs.err(); err != nil {
			return err
		}

		mgr.MetaModelID = data.MetaModelID
		mgr.Resource = data.Resource
		mgr.Deadline = data.Deadline
		if mgr.ID == "" {
			if mgr.ID, err = core.NewID(); err != nil {
				return err
			}
			if mgr, err = svc.repo.CreateManagerial(ctx, mgr); err != nil {
				return errors.Wrap(err, "creating managerial level")
			}
		} else if mgr, err = svc.repo.UpdateManagerial(ctx, mgr); err != nil {
			return errors.Wrap(err, "updating managerial level")
		}

		for _, row := range form.Tasks {
			task := Task{ID: row.ID, ManagerialID: mgr.ID, Description: row.Description, Status: row.Status}
			if err = saveRow(row.isBlank(), row.Delete, &task.ID,
				func() error { _, err := svc.repo.CreateTask(ctx, task); return err },
				func() error { _, err := svc.repo.UpdateTask(ctx, task); return err },
				func() error { return svc.repo.DeleteTask(ctx, task.ID) },
			); err != nil {
				return errors.Wrap(err, "saving task")
			}
		}
		return nil
	})
	if err != nil {
		return Managerial{}, err
	}
	return mgr, nil
}

func unknownRow(prefix string) core.FieldError {
	return core.FieldError{Field: prefix + ".id", Error: "this row does not belong to the edited object"}
}

func hasKey[T any](m map[string]T, key string) bool {
	_, ok := m[key]
	return ok
}
