package migrations

import (
	"github.com/Seklfreak/starlight/helpers"
	"github.com/Seklfreak/starlight/modules/plugins/boards"
)

func m0_create_board_indexes() error {
	if !helpers.HasMDb() {
		return nil
	}

	return boards.EnsureIndexes()
}
