package blockbuilder

import (
	"github.com/ledgersim/ledgersim/infrastructure/logger"
)

var log, _ = logger.Get(logger.SubsystemTags.BLBD)
