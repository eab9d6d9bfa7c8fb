package idgen

import "github.com/google/uuid"

// NewFunc produces a new globally unique identifier. Tests can stub it for
// deterministic ids.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new identifier using NewFunc.
func New() string { return NewFunc() }
