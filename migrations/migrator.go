package migrations

import (
	"reflect"
	"runtime"
	"strings"

	"github.com/Seklfreak/starlight/cache"
)

type migration func() error

var migrations = []migration{
	m0_create_board_indexes,
}

// Run executes all registered migrations, stops at the first failing one
func Run() error {
	log := cache.GetLogger().WithField("module", "migrations")
	log.Info("running migrations")
	for _, m := range migrations {
		name := runtime.FuncForPC(reflect.ValueOf(m).Pointer()).Name()
		name = name[strings.LastIndex(name, ".")+1:]

		log.WithField("migration", name).Debug("running migration")
		if err := m(); err != nil {
			log.WithField("migration", name).WithError(err).Error("migration failed")
			return err
		}
	}
	log.Info("migrations finished")
	return nil
}
