package runrepo

import "errors"

// ErrDuplicateRun indicates a run id was stored twice.
var ErrDuplicateRun = errors.New("run already stored")
