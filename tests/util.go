package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/rastreio/core"
	"github.com/trezcool/rastreio/core/admin"
	"github.com/trezcool/rastreio/core/history"
	"github.com/trezcool/rastreio/core/metamodel"
	"github.com/trezcool/rastreio/core/requirement"
	"github.com/trezcool/rastreio/core/user"
	"github.com/trezcool/rastreio/services/filestore"
	"github.com/trezcool/rastreio/storage/database"
	inmemdb "github.com/trezcool/rastreio/storage/database/inmem"
)

// DiscardLogger drops every message.
type DiscardLogger struct{}

var _ core.Logger = DiscardLogger{}

func (DiscardLogger) Debug(string, ...interface{}) {}
func (DiscardLogger) Info(string, ...interface{})  {}
func (DiscardLogger) Warn(string, ...interface{})  {}
func (DiscardLogger) Error(string, ...interface{}) {}
func (DiscardLogger) Fatal(string, ...interface{}) {}

// Services wires every domain service over an in-memory DB.
type Services struct {
	DB           *inmemdb.DB
	UserRepo     user.Repository
	Files        *filestore.LocalStore
	History      *history.Service
	Users        *user.Service
	Requirements *requirement.Service
	MetaModels   *metamodel.Service
	Admin        *admin.Site
}

func NewServices(t *testing.T) Services {
	t.Helper()

	db := inmemdb.Open()
	files := filestore.NewLocalStore(t.TempDir())
	hist := history.NewService(inmemdb.NewHistoryRepository(db))
	usrRepo := inmemdb.NewUserRepository(db)
	usrSvc := user.NewService(usrRepo)
	reqSvc := requirement.NewService(inmemdb.NewRequirementRepository(db), db, hist, usrSvc, files, DiscardLogger{})
	mmSvc := metamodel.NewService(inmemdb.NewMetaModelRepository(db), db, hist, reqSvc)
	site, err := admin.NewDefaultSite(core.AdminConfig{}, mmSvc, reqSvc)
	if err != nil {
		t.Fatalf("NewDefaultSite(): %v", err)
	}
	return Services{
		DB:           db,
		UserRepo:     usrRepo,
		Files:        files,
		History:      hist,
		Users:        usrSvc,
		Requirements: reqSvc,
		MetaModels:   mmSvc,
		Admin:        site,
	}
}

// OpenSQLite opens a migrated SQLite database in a temporary directory.
func OpenSQLite(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite(): %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err = database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("Migrate(): %v", err)
	}
	return db
}

// FreezeTime makes core.NowFunc return now until the test ends.
func FreezeTime(t *testing.T, now time.Time) {
	t.Helper()
	orig := core.NowFunc
	core.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { core.NowFunc = orig })
}

func CreateUser(t *testing.T, repo user.Repository, name, uname, email string, createdAt ...time.Time) user.User {
	t.Helper()

	tstamp := time.Now().UTC().Truncate(time.Microsecond)
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	id, err := core.NewID()
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	usr, err := repo.CreateUser(context.Background(), user.User{
		ID:        id,
		Name:      name,
		Username:  uname,
		Email:     email,
		IsActive:  true,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

// CreateRequirement creates a proposed requirement; an empty category leaves it unset.
func CreateRequirement(t *testing.T, svc *requirement.Service, description, category string) requirement.Requirement {
	t.Helper()

	req, err := svc.CreateRequirement(context.Background(), requirement.RequirementData{
		Category:    null.NewString(category, category != ""),
		Type:        requirement.TypeSystem,
		Priority:    requirement.PriorityEssential,
		Status:      requirement.StatusProposed,
		Description: description,
	})
	if err != nil {
		t.Fatalf("CreateRequirement(): %v", err)
	}
	return req
}

func CreateUseCase(t *testing.T, svc *requirement.Service, identifier, name string, requirementIDs ...string) requirement.UseCase {
	t.Helper()

	uc, err := svc.CreateUseCase(context.Background(), requirement.UseCaseData{
		Identifier:     identifier,
		Name:           name,
		Description:    name + " description",
		PrimaryActor:   "Operator",
		MainFlow:       "1. Start\n2. Finish",
		RequirementIDs: requirementIDs,
	})
	if err != nil {
		t.Fatalf("CreateUseCase(): %v", err)
	}
	return uc
}

func CreateSprint(t *testing.T, svc *requirement.Service, name string, start, end core.Date) requirement.Sprint {
	t.Helper()

	sprint, err := svc.CreateSprint(context.Background(), requirement.SprintData{Name: name, Start: start, End: end})
	if err != nil {
		t.Fatalf("CreateSprint(): %v", err)
	}
	return sprint
}

func CreateUserStory(t *testing.T, svc *requirement.Service, identifier, requirementID, sprintID string) requirement.UserStory {
	t.Helper()

	story, err := svc.CreateUserStory(context.Background(), requirement.UserStoryData{
		Identifier:         identifier,
		Title:              "Story " + identifier,
		Description:        "As a user, I want " + identifier,
		AcceptanceCriteria: "It works",
		Status:             requirement.StoryPending,
		SprintID:           null.NewString(sprintID, sprintID != ""),
		RequirementID:      requirementID,
	})
	if err != nil {
		t.Fatalf("CreateUserStory(): %v", err)
	}
	return story
}

func CreateMetaModel(t *testing.T, svc *metamodel.Service, description string) metamodel.MetaModel {
	t.Helper()

	mm, err := svc.CreateMetaModel(context.Background(), metamodel.MetaModelData{Description: description})
	if err != nil {
		t.Fatalf("CreateMetaModel(): %v", err)
	}
	return mm
}

func CreateManagerial(t *testing.T, svc *metamodel.Service, metaModelID, resource string, deadline core.Date) metamodel.Managerial {
	t.Helper()

	m, err := svc.CreateManagerial(context.Background(), metamodel.ManagerialData{
		MetaModelID: metaModelID,
		Resource:    resource,
		Deadline:    deadline,
	})
	if err != nil {
		t.Fatalf("CreateManagerial(): %v", err)
	}
	return m
}
