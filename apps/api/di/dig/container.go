package dig_container

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/rastreio/apps/api/echo"
	"github.com/trezcool/rastreio/core"
	"github.com/trezcool/rastreio/core/admin"
	"github.com/trezcool/rastreio/core/history"
	"github.com/trezcool/rastreio/core/metamodel"
	"github.com/trezcool/rastreio/core/requirement"
	"github.com/trezcool/rastreio/core/user"
	"github.com/trezcool/rastreio/services/filestore"
	logsvc "github.com/trezcool/rastreio/services/logger"
	"github.com/trezcool/rastreio/storage/database"
	inmemdb "github.com/trezcool/rastreio/storage/database/inmem"
	sqlxrepos "github.com/trezcool/rastreio/storage/database/sqlx"
)

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// Storage provides the repositories of the configured database engine.
	Storage struct {
		dig.Out
		Tx           core.Transactor
		Users        user.Repository
		Requirements requirement.Repository
		MetaModels   metamodel.Repository
		History      history.Repository
		Closer       io.Closer `name:"storage"`
	}

	StorageParam struct {
		dig.In
		Closer io.Closer `name:"storage"`
	}
)

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newStorage(conf *core.Config, loggerParam DBLoggerParam) Storage {
	if conf.Database.Engine == core.EngineMemory {
		db := inmemdb.Open()
		return Storage{
			Tx:           db,
			Users:        inmemdb.NewUserRepository(db),
			Requirements: inmemdb.NewRequirementRepository(db),
			MetaModels:   inmemdb.NewMetaModelRepository(db),
			History:      inmemdb.NewHistoryRepository(db),
			Closer:       db,
		}
	}

	setUp := func() (*database.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(context.Background(), db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return Storage{
		Tx:           db,
		Users:        sqlxrepos.NewUserRepository(db),
		Requirements: sqlxrepos.NewRequirementRepository(db),
		MetaModels:   sqlxrepos.NewMetaModelRepository(db),
		History:      sqlxrepos.NewHistoryRepository(db),
		Closer:       db,
	}
}

func newFileStore(conf *core.Config) core.FileStore {
	return filestore.NewLocalStore(conf.MediaRoot)
}

func newRequirementService(
	repo requirement.Repository,
	tx core.Transactor,
	hist *history.Service,
	users *user.Service,
	files core.FileStore,
	logger core.Logger,
) *requirement.Service {
	return requirement.NewService(repo, tx, hist, users, files, logger)
}

func newMetaModelService(
	repo metamodel.Repository,
	tx core.Transactor,
	hist *history.Service,
	reqSvc *requirement.Service,
) *metamodel.Service {
	return metamodel.NewService(repo, tx, hist, reqSvc)
}

func newAdminSite(conf *core.Config, mmSvc *metamodel.Service, reqSvc *requirement.Service) (*admin.Site, error) {
	return admin.NewDefaultSite(conf.Admin, mmSvc, reqSvc)
}

type ServerParams struct {
	dig.In
	Conf           *core.Config
	Logger         core.Logger
	UserSvc        *user.Service
	RequirementSvc *requirement.Service
	MetaModelSvc   *metamodel.Service
	AdminSite      *admin.Site
}

func newServer(p ServerParams) *echoapi.Server {
	return echoapi.NewServer(&echoapi.Options{
		Conf:           p.Conf,
		Logger:         p.Logger,
		UserSvc:        p.UserSvc,
		RequirementSvc: p.RequirementSvc,
		MetaModelSvc:   p.MetaModelSvc,
		AdminSite:      p.AdminSite,
	})
}

// New returns a new dependency injection dig.Container.
// newConfig is core.NewConfig, unless overridden by tests.
func New(newConfig func() *core.Config) *dig.Container {
	c := dig.New()

	must(c.Provide(newConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStorage))
	must(c.Provide(newFileStore))
	must(c.Provide(history.NewService))
	must(c.Provide(user.NewService))
	must(c.Provide(newRequirementService))
	must(c.Provide(newMetaModelService))
	must(c.Provide(newAdminSite))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
