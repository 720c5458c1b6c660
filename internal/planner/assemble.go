package planner

import (
	"fmt"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/availability"
)

// Contribution is one attendee's share of a solver request: their
// descriptor, their free slots, and their event parts.
type Contribution struct {
	UserID     string
	User       UserPlannerRequestBody
	Timeslots  []availability.TimeSlot
	EventParts []EventPartPlannerRequestBody
}

// Assemble merges the host's and all attendees' contributions into one
// solver request. Contributions are sorted by attendee id so the output is
// deterministic regardless of the order parallel preparation finished in.
// Violations surface as apperr.ErrUnplannable before anything is dispatched.
func Assemble(singletonID, hostID, fileKey, callBackURL string, delay int64, contributions []Contribution) (*PlannerRequestBody, error) {
	sorted := make([]Contribution, len(contributions))
	copy(sorted, contributions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].UserID < sorted[j].UserID })

	req := &PlannerRequestBody{
		SingletonID: singletonID,
		HostID:      hostID,
		FileKey:     fileKey,
		Delay:       delay,
		CallBackURL: callBackURL,
	}

	users := make(map[string]bool, len(sorted))
	for _, c := range sorted {
		if users[c.UserID] {
			return nil, fmt.Errorf("duplicate contribution for user %s: %w", c.UserID, apperr.ErrUnplannable)
		}
		users[c.UserID] = true

		if len(c.Timeslots) == 0 {
			return nil, fmt.Errorf("user %s has no time slots in the window: %w", c.UserID, apperr.ErrUnplannable)
		}

		req.UserList = append(req.UserList, c.User)
		req.Timeslots = append(req.Timeslots, c.Timeslots...)
		req.EventParts = append(req.EventParts, c.EventParts...)
	}

	for _, part := range req.EventParts {
		if !users[part.UserID] {
			return nil, fmt.Errorf("event part %s (group %s) references user %s absent from user list: %w",
				part.EventID, part.GroupID, part.UserID, apperr.ErrUnplannable)
		}
	}

	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrUnplannable, err)
	}
	return req, nil
}

// Validate checks the request is structurally complete for dispatch.
func (r *PlannerRequestBody) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.SingletonID, validation.Required),
		validation.Field(&r.HostID, validation.Required),
		validation.Field(&r.FileKey, validation.Required),
		validation.Field(&r.CallBackURL, validation.Required),
		validation.Field(&r.Timeslots, validation.Required),
		validation.Field(&r.UserList, validation.Required),
		validation.Field(&r.EventParts, validation.Required),
		validation.Field(&r.Delay, validation.Min(0)),
	)
}
