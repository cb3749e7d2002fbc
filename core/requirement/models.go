package requirement

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/rastreio/core"
)

// Requirement categories
const (
	CategoryFunctional    = "functional"
	CategoryNonFunctional = "non_functional"
)

// Requirement types
const (
	TypeBusiness = "business"
	TypeClient   = "client"
	TypeSystem   = "system"
	TypeUser     = "user"
)

// Requirement priorities
const (
	PriorityEssential = "essential"
	PriorityImportant = "important"
	PriorityDesirable = "desirable"
)

// Requirement statuses, in lifecycle order.
const (
	StatusProposed    = "proposed"
	StatusApproved    = "approved"
	StatusImplemented = "implemented"
	StatusTested      = "tested"
	StatusDone        = "done"
)

// User story statuses
const (
	StoryPending    = "pending"
	StoryInProgress = "in_progress"
	StoryDone       = "done"
)

// DocumentsDir is the media directory holding uploaded documents.
const DocumentsDir = "documents"

var (
	Categories = []core.Choice{
		{Value: CategoryFunctional, Label: "Functional"},
		{Value: CategoryNonFunctional, Label: "Non-functional"},
	}
	Types = []core.Choice{
		{Value: TypeBusiness, Label: "Business"},
		{Value: TypeClient, Label: "Client"},
		{Value: TypeSystem, Label: "System"},
		{Value: TypeUser, Label: "User"},
	}
	Priorities = []core.Choice{
		{Value: PriorityEssential, Label: "Essential"},
		{Value: PriorityImportant, Label: "Important"},
		{Value: PriorityDesirable, Label: "Desirable"},
	}
	Statuses = []core.Choice{
		{Value: StatusProposed, Label: "Proposed"},
		{Value: StatusApproved, Label: "Approved"},
		{Value: StatusImplemented, Label: "Implemented"},
		{Value: StatusTested, Label: "Tested"},
		{Value: StatusDone, Label: "Done"},
	}
	StoryStatuses = []core.Choice{
		{Value: StoryPending, Label: "Pending"},
		{Value: StoryInProgress, Label: "In progress"},
		{Value: StoryDone, Label: "Done"},
	}
)

// NextStatus returns the lifecycle status following `status`.
func NextStatus(status string) (string, bool) {
	for i, st := range Statuses {
		if st.Value == status && i+1 < len(Statuses) {
			return Statuses[i+1].Value, true
		}
	}
	return "", false
}

// IsTraceable reports whether a category allows linking the requirement to a Development level.
func IsTraceable(category null.String) bool {
	return category.Valid && (category.String == CategoryFunctional || category.String == CategoryNonFunctional)
}

type Requirement struct {
	ID          string      `json:"id" db:"id"`
	Category    null.String `json:"category" db:"category"`
	Type        string      `json:"type" db:"type"`
	Priority    string      `json:"priority" db:"priority"`
	Status      string      `json:"status" db:"status"`
	Description string      `json:"description" db:"description"`
}

// RequirementData contains the information needed to create or replace a Requirement.
type RequirementData struct {
	Category    null.String `json:"category" validate:"omitempty,oneof=functional non_functional"`
	Type        string      `json:"type" validate:"required,oneof=business client system user"`
	Priority    string      `json:"priority" validate:"required,oneof=essential important desirable"`
	Status      string      `json:"status" validate:"required,oneof=proposed approved implemented tested done"`
	Description string      `json:"description" validate:"notblank"`
}

func (rd *RequirementData) Clean() {
	rd.Category = cleanNullString(rd.Category, true)
	rd.Type = core.CleanString(rd.Type, true /* lower */)
	rd.Priority = core.CleanString(rd.Priority, true /* lower */)
	rd.Status = core.CleanString(rd.Status, true /* lower */)
	rd.Description = core.CleanString(rd.Description)
}

type RequirementFilter struct {
	Search   string `query:"q"`
	Category string `query:"category"`
	Type     string `query:"type"`
	Priority string `query:"priority"`
	Status   string `query:"status"`
	// Traceable keeps requirements whose category allows Development links.
	Traceable bool     `query:"traceable"`
	IDs       []string `query:"id"`
}

func (rf *RequirementFilter) Clean() {
	rf.Search = core.CleanString(rf.Search)
	rf.Category = core.CleanString(rf.Category, true)
	rf.Type = core.CleanString(rf.Type, true)
	rf.Priority = core.CleanString(rf.Priority, true)
	rf.Status = core.CleanString(rf.Status, true)
	rf.IDs = core.CleanStrings(rf.IDs)
}

type UseCase struct {
	ID              string   `json:"id" db:"id"`
	Identifier      string   `json:"identifier" db:"identifier"`
	Name            string   `json:"name" db:"name"`
	Description     string   `json:"description" db:"description"`
	PrimaryActor    string   `json:"primary_actor" db:"primary_actor"`
	SecondaryActors string   `json:"secondary_actors" db:"secondary_actors"`
	Preconditions   string   `json:"preconditions" db:"preconditions"`
	MainFlow        string   `json:"main_flow" db:"main_flow"`
	AlternateFlows  string   `json:"alternate_flows" db:"alternate_flows"`
	Postconditions  string   `json:"postconditions" db:"postconditions"`
	Priority        int      `json:"priority" db:"priority"`
	RequirementIDs  []string `json:"requirement_ids" db:"-"`
}

func (uc UseCase) String() string { return uc.Name }

type UseCaseData struct {
	Identifier      string   `json:"identifier" validate:"notblank,max=20"`
	Name            string   `json:"name" validate:"notblank,max=100"`
	Description     string   `json:"description" validate:"notblank"`
	PrimaryActor    string   `json:"primary_actor" validate:"notblank,max=100"`
	SecondaryActors string   `json:"secondary_actors" validate:"max=100"`
	Preconditions   string   `json:"preconditions"`
	MainFlow        string   `json:"main_flow" validate:"notblank"`
	AlternateFlows  string   `json:"alternate_flows"`
	Postconditions  string   `json:"postconditions"`
	Priority        int      `json:"priority"`
	RequirementIDs  []string `json:"requirement_ids" validate:"required,min=1"`
}

func (ud *UseCaseData) Clean() {
	ud.Identifier = core.CleanString(ud.Identifier)
	ud.Name = core.CleanString(ud.Name)
	ud.Description = core.CleanString(ud.Description)
	ud.PrimaryActor = core.CleanString(ud.PrimaryActor)
	ud.SecondaryActors = core.CleanString(ud.SecondaryActors)
	ud.Preconditions = core.CleanString(ud.Preconditions)
	ud.MainFlow = core.CleanString(ud.MainFlow)
	ud.AlternateFlows = core.CleanString(ud.AlternateFlows)
	ud.Postconditions = core.CleanString(ud.Postconditions)
	ud.RequirementIDs = core.CleanStrings(ud.RequirementIDs)
}

type UseCaseFilter struct {
	Search        string   `query:"q"`
	RequirementID string   `query:"requirement"`
	IDs           []string `query:"id"`
}

type Sprint struct {
	ID    string    `json:"id" db:"id"`
	Name  string    `json:"name" db:"name"`
	Start core.Date `json:"start" db:"start_date"`
	End   core.Date `json:"end" db:"end_date"`
}

func (s Sprint) String() string { return s.Name }

type SprintData struct {
	Name  string    `json:"name" validate:"notblank,max=100"`
	Start core.Date `json:"start" validate:"required"`
	End   core.Date `json:"end" validate:"required"`
}

type SprintFilter struct {
	Search string
	Start  core.DateRange
	End    core.DateRange
}

type UserStory struct {
	ID                 string      `json:"id" db:"id"`
	Identifier         string      `json:"identifier" db:"identifier"`
	Title              string      `json:"title" db:"title"`
	Description        string      `json:"description" db:"description"`
	AcceptanceCriteria string      `json:"acceptance_criteria" db:"acceptance_criteria"`
	Estimate           int         `json:"estimate" db:"estimate"` // effort or time needed
	Priority           int         `json:"priority" db:"priority"`
	Status             string      `json:"status" db:"status"`
	SprintID           null.String `json:"sprint_id" db:"sprint_id"`
	RequirementID      string      `json:"requirement_id" db:"requirement_id"`
}

func (us UserStory) String() string { return us.Title }

type UserStoryData struct {
	Identifier         string      `json:"identifier" validate:"notblank,max=20"`
	Title              string      `json:"title" validate:"notblank,max=100"`
	Description        string      `json:"description" validate:"notblank"`
	AcceptanceCriteria string      `json:"acceptance_criteria" validate:"notblank"`
	Estimate           int         `json:"estimate" validate:"min=0"`
	Priority           int         `json:"priority"`
	Status             string      `json:"status" validate:"required,oneof=pending in_progress done"`
	SprintID           null.String `json:"sprint_id"`
	RequirementID      string      `json:"requirement_id" validate:"required"`
}

func (ud *UserStoryData) Clean() {
	ud.Identifier = core.CleanString(ud.Identifier)
	ud.Title = core.CleanString(ud.Title)
	ud.Description = core.CleanString(ud.Description)
	ud.AcceptanceCriteria = core.CleanString(ud.AcceptanceCriteria)
	ud.Status = core.CleanString(ud.Status, true)
	ud.SprintID = cleanNullString(ud.SprintID, false)
	ud.RequirementID = core.CleanString(ud.RequirementID)
}

type UserStoryFilter struct {
	Search        string   `query:"q"`
	SprintID      string   `query:"sprint"`
	RequirementID string   `query:"requirement"`
	Status        string   `query:"status"`
	IDs           []string `query:"id"`
}

type Comment struct {
	ID            string    `json:"id" db:"id"`
	RequirementID string    `json:"requirement_id" db:"requirement_id"`
	AuthorID      string    `json:"author_id" db:"author_id"`
	Text          string    `json:"text" db:"text"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"` // UTC
}

type CommentData struct {
	AuthorID string `json:"author_id" validate:"required"`
	Text     string `json:"text" validate:"notblank"`
}

type Document struct {
	ID            string `json:"id" db:"id"`
	RequirementID string `json:"requirement_id" db:"requirement_id"`
	File          string `json:"file" db:"file"` // path relative to the media root
	Description   string `json:"description" db:"description"`
}

type DocumentData struct {
	Filename    string `json:"filename" validate:"notblank,max=100"`
	Description string `json:"description" validate:"notblank,max=255"`
}

func cleanNullString(s null.String, lower bool) null.String {
	if !s.Valid {
		return s
	}
	v := core.CleanString(s.String, lower)
	return null.NewString(v, v != "")
}
