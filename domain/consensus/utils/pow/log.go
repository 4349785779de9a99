package pow

import (
	"github.com/ledgersim/ledgersim/infrastructure/logger"
	"github.com/ledgersim/ledgersim/util/panics"
)

var log, _ = logger.Get(logger.SubsystemTags.POW)
var spawn = panics.GoroutineWrapperFunc(log)
