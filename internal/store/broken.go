package store

import (
	"context"
	"errors"
)

// ErrBroken is returned by every Broken call.
var ErrBroken = errors.New("store offline")

// Broken is a Store whose every call fails. It stands in for a degraded
// backend when exercising fallback paths.
type Broken struct{}

func (Broken) Get(context.Context, string, any) (bool, error) { return false, ErrBroken }
func (Broken) Set(context.Context, string, any) error         { return ErrBroken }
func (Broken) Delete(context.Context, string) error           { return ErrBroken }
