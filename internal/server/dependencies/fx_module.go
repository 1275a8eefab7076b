package dependencies

import (
	"go.uber.org/fx"

	"github.com/looplj/tenanthub/internal/log"
	"github.com/looplj/tenanthub/internal/server/db"
)

var Module = fx.Module("dependencies",
	fx.Provide(log.New),
	fx.Provide(db.Open),
)
