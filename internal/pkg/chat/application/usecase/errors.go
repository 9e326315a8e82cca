package usecase

import "fmt"

// ErrPersistence marks repository failures so controllers can map them to 500s.
var ErrPersistence = fmt.Errorf("chat use case persistence error")
