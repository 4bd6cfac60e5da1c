// Package roles answers who is acting and what day it is for them.
package roles

import (
	"context"
	"fmt"
	"time"

	"daybook/internal/core"
	"daybook/internal/ports"
)

var _ ports.RoleChecker = (*Static)(nil)

// Static is a RoleChecker backed by a fixed set of privileged user ids.
type Static struct {
	privileged map[int64]struct{}
}

func NewStatic(ids ...int64) *Static {
	s := &Static{privileged: make(map[int64]struct{}, len(ids))}
	for _, id := range ids {
		s.privileged[id] = struct{}{}
	}
	return s
}

func (s *Static) IsPrivileged(_ context.Context, userID int64) (bool, error) {
	_, ok := s.privileged[userID]
	return ok, nil
}

// Resolver builds the RequestContext handed to every daybook operation.
type Resolver struct {
	checker ports.RoleChecker
	loc     *time.Location
	now     func() time.Time
}

func NewResolver(checker ports.RoleChecker, loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	return &Resolver{checker: checker, loc: loc, now: time.Now}
}

// RequestContextFor asks the RoleChecker about userID and stamps "today"
// in the configured timezone.
func (r *Resolver) RequestContextFor(ctx context.Context, userID int64) (core.RequestContext, error) {
	privileged, err := r.checker.IsPrivileged(ctx, userID)
	if err != nil {
		return core.RequestContext{}, fmt.Errorf("check role of user %d: %w", userID, err)
	}
	return core.RequestContext{
		UserID:     userID,
		Privileged: privileged,
		Today:      core.DateOf(r.now().In(r.loc)),
	}, nil
}
