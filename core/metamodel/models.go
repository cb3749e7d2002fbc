package metamodel

import (
	"time"

	"github.com/trezcool/rastreio/core"
)

// Task statuses
const (
	TaskPending = "pending"
	TaskDone    = "done"
)

var TaskStatuses = []core.Choice{
	{Value: TaskPending, Label: "Pending"},
	{Value: TaskDone, Label: "Done"},
}

// MetaModel aggregates the four abstraction levels of a project.
type MetaModel struct {
	ID                   string    `json:"id" db:"id"`
	Description          string    `json:"description" db:"description"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"` // UTC
	UseCaseIDs           []string  `json:"use_case_ids" db:"-"`
	UserStoryIDs         []string  `json:"user_story_ids" db:"-"`
	IntermediateModelIDs []string  `json:"intermediate_model_ids" db:"-"`
}

func (mm MetaModel) String() string { return mm.Description }

type MetaModelData struct {
	Description          string   `json:"description" validate:"notblank"`
	UseCaseIDs           []string `json:"use_case_ids"`
	UserStoryIDs         []string `json:"user_story_ids"`
	IntermediateModelIDs []string `json:"intermediate_model_ids"`
}

func (md *MetaModelData) Clean() {
	md.Description = core.CleanString(md.Description)
	md.UseCaseIDs = core.CleanStrings(md.UseCaseIDs)
	md.UserStoryIDs = core.CleanStrings(md.UserStoryIDs)
	md.IntermediateModelIDs = core.CleanStrings(md.IntermediateModelIDs)
}

type MetaModelFilter struct {
	Search              string   `query:"q"`
	IntermediateModelID string   `query:"intermediate_model"`
	IDs                 []string `query:"id"`
}

type Environmental struct {
	ID             string `json:"id" db:"id"`
	MetaModelID    string `json:"meta_model_id" db:"meta_model_id"`
	ExternalFactor string `json:"external_factor" db:"external_factor"`
	Impact         string `json:"impact" db:"impact"`
}

type EnvironmentalData struct {
	MetaModelID    string `json:"meta_model_id" validate:"required"`
	ExternalFactor string `json:"external_factor" validate:"notblank,max=255"`
	Impact         string `json:"impact" validate:"notblank"`
}

func (ed *EnvironmentalData) Clean() {
	ed.MetaModelID = core.CleanString(ed.MetaModelID)
	ed.ExternalFactor = core.CleanString(ed.ExternalFactor)
	ed.Impact = core.CleanString(ed.Impact)
}

type Organizational struct {
	ID          string `json:"id" db:"id"`
	MetaModelID string `json:"meta_model_id" db:"meta_model_id"`
	Objective   string `json:"objective" db:"objective"`
	Strategy    string `json:"strategy" db:"strategy"`
}

type OrganizationalData struct {
	MetaModelID string `json:"meta_model_id" validate:"required"`
	Objective   string `json:"objective" validate:"notblank,max=255"`
	Strategy    string `json:"strategy" validate:"notblank"`
}

func (od *OrganizationalData) Clean() {
	od.MetaModelID = core.CleanString(od.MetaModelID)
	od.Objective = core.CleanString(od.Objective)
	od.Strategy = core.CleanString(od.Strategy)
}

// Managerial records are listed by deadline by default.
type Managerial struct {
	ID          string    `json:"id" db:"id"`
	MetaModelID string    `json:"meta_model_id" db:"meta_model_id"`
	Resource    string    `json:"resource" db:"resource"`
	Deadline    core.Date `json:"deadline" db:"deadline"`
}

func (m Managerial) String() string { return m.Resource }

type ManagerialData struct {
	MetaModelID string    `json:"meta_model_id" validate:"required"`
	Resource    string    `json:"resource" validate:"notblank,max=255"`
	Deadline    core.Date `json:"deadline" validate:"required,notpast"`
}

func (md *ManagerialData) Clean() {
	md.MetaModelID = core.CleanString(md.MetaModelID)
	md.Resource = core.CleanString(md.Resource)
}

type ManagerialFilter struct {
	Search      string `query:"q"`
	MetaModelID string `query:"meta_model"`
	Deadline    core.DateRange
}

type Development struct {
	ID             string   `json:"id" db:"id"`
	MetaModelID    string   `json:"meta_model_id" db:"meta_model_id"`
	RequirementIDs []string `json:"requirement_ids" db:"-"`
}

type DevelopmentData struct {
	MetaModelID    string   `json:"meta_model_id" validate:"required"`
	RequirementIDs []string `json:"requirement_ids"`
}

func (dd *DevelopmentData) Clean() {
	dd.MetaModelID = core.CleanString(dd.MetaModelID)
	dd.RequirementIDs = core.CleanStrings(dd.RequirementIDs)
}

type IntermediateModel struct {
	ID           string   `json:"id" db:"id"`
	SharedInfo   string   `json:"shared_info" db:"shared_info"`
	MetaModelIDs []string `json:"meta_model_ids" db:"-"`
}

func (im IntermediateModel) String() string { return im.SharedInfo }

type IntermediateModelData struct {
	SharedInfo   string   `json:"shared_info" validate:"notblank"`
	MetaModelIDs []string `json:"meta_model_ids"`
}

func (id *IntermediateModelData) Clean() {
	id.SharedInfo = core.CleanString(id.SharedInfo)
	id.MetaModelIDs = core.CleanStrings(id.MetaModelIDs)
}

type IntermediateModelFilter struct {
	Search      string `query:"q"`
	MetaModelID string `query:"meta_model"`
}

type Task struct {
	ID           string `json:"id" db:"id"`
	ManagerialID string `json:"managerial_id" db:"managerial_id"`
	Description  string `json:"description" db:"description"`
	Status       string `json:"status" db:"status"`
}

type TaskData struct {
	ManagerialID string `json:"managerial_id" validate:"required"`
	Description  string `json:"description" validate:"notblank"`
	Status       string `json:"status" validate:"required,oneof=pending done"`
}

func (td *TaskData) Clean() {
	td.ManagerialID = core.CleanString(td.ManagerialID)
	td.Description = core.CleanString(td.Description)
	td.Status = core.CleanString(td.Status, true)
}
