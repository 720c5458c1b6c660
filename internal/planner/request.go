// Package planner carries the solver wire contract and the request
// assembler. Requests and responses are explicit tagged structs; unknown or
// missing fields are rejected at the boundary instead of propagated.
package planner

import (
	"github.com/starford/dagaz/internal/availability"
	"github.com/starford/dagaz/internal/models"
)

// External attendees have no stored preference record, so their solver
// descriptor gets permissive defaults.
const (
	ExternalMaxWorkLoadPercent  = 100
	ExternalMaxNumberOfMeetings = 99
	ExternalMinNumberOfBreaks   = 0
)

// UserPlannerRequestBody describes one attendee to the solver: identity,
// workload constraints and availability windows.
type UserPlannerRequestBody struct {
	ID                  string                  `json:"id"`
	HostID              string                  `json:"hostId"`
	MaxWorkLoadPercent  int                     `json:"maxWorkLoadPercent"`
	BackToBackMeetings  bool                    `json:"backToBackMeetings"`
	MaxNumberOfMeetings int                     `json:"maxNumberOfMeetings"`
	MinNumberOfBreaks   int                     `json:"minNumberOfBreaks"`
	WorkTimes           []availability.WorkTime `json:"workTimes"`
}

// NewUserRequest builds the descriptor for an internal attendee from their
// stored preference.
func NewUserRequest(userID, hostID string, pref *models.UserPreference, workTimes []availability.WorkTime) UserPlannerRequestBody {
	body := UserPlannerRequestBody{
		ID:                  userID,
		HostID:              hostID,
		MaxWorkLoadPercent:  ExternalMaxWorkLoadPercent,
		MaxNumberOfMeetings: ExternalMaxNumberOfMeetings,
		WorkTimes:           workTimes,
	}
	if pref != nil {
		if pref.MaxWorkLoadPercent > 0 {
			body.MaxWorkLoadPercent = pref.MaxWorkLoadPercent
		}
		if pref.MaxNumberOfMeetings > 0 {
			body.MaxNumberOfMeetings = pref.MaxNumberOfMeetings
		}
		body.MinNumberOfBreaks = pref.MinNumberOfBreaks
		body.BackToBackMeetings = pref.BackToBackMeetings
	}
	return body
}

// NewExternalUserRequest builds the descriptor for an external attendee,
// whose only availability signal is their own busy events.
func NewExternalUserRequest(userID, hostID string, workTimes []availability.WorkTime) UserPlannerRequestBody {
	return UserPlannerRequestBody{
		ID:                  userID,
		HostID:              hostID,
		MaxWorkLoadPercent:  ExternalMaxWorkLoadPercent,
		MaxNumberOfMeetings: ExternalMaxNumberOfMeetings,
		MinNumberOfBreaks:   ExternalMinNumberOfBreaks,
		WorkTimes:           workTimes,
	}
}

// PreferredTimeRangeRequest is a soft placement preference on the wire.
type PreferredTimeRangeRequest struct {
	DayOfWeek string `json:"dayOfWeek,omitempty"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	EventID   string `json:"eventId"`
	UserID    string `json:"userId"`
	HostID    string `json:"hostId"`
}

// EventPlannerRequestBody is the per-event envelope inside each part.
type EventPlannerRequestBody struct {
	ID                  string                      `json:"id"`
	UserID              string                      `json:"userId"`
	HostID              string                      `json:"hostId"`
	PreferredTimeRanges []PreferredTimeRangeRequest `json:"preferredTimeRanges,omitempty"`
}

// EventPartPlannerRequestBody is one schedulable fragment submitted to the
// solver. Dates are local datetimes in the host's timezone.
type EventPartPlannerRequestBody struct {
	GroupID  string `json:"groupId"`
	EventID  string `json:"eventId"`
	Part     int    `json:"part"`
	LastPart int    `json:"lastPart"`

	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`

	UserID    string `json:"userId"`
	HostID    string `json:"hostId"`
	MeetingID string `json:"meetingId,omitempty"`

	TaskID         string `json:"taskId,omitempty"`
	DailyTaskList  bool   `json:"dailyTaskList"`
	WeeklyTaskList bool   `json:"weeklyTaskList"`

	// Gap marks break parts; the solver treats them as fillers, not meetings.
	Gap bool `json:"gap"`

	Priority   int  `json:"priority"`
	Modifiable bool `json:"modifiable"`

	IsPreEvent  bool   `json:"isPreEvent"`
	IsPostEvent bool   `json:"isPostEvent"`
	ForEventID  string `json:"forEventId,omitempty"`

	PreferredDayOfWeek      string `json:"preferredDayOfWeek,omitempty"`
	PreferredTime           string `json:"preferredTime,omitempty"`
	PreferredStartTimeRange string `json:"preferredStartTimeRange,omitempty"`
	PreferredEndTimeRange   string `json:"preferredEndTimeRange,omitempty"`

	HardDeadline string `json:"hardDeadline,omitempty"`
	SoftDeadline string `json:"softDeadline,omitempty"`

	TotalWorkingHours float64 `json:"totalWorkingHours"`

	User  UserPlannerRequestBody  `json:"user"`
	Event EventPlannerRequestBody `json:"event"`
}

// PlannerRequestBody is the full solver request for one host run.
type PlannerRequestBody struct {
	SingletonID string                        `json:"singletonId"`
	HostID      string                        `json:"hostId"`
	Timeslots   []availability.TimeSlot       `json:"timeslots"`
	UserList    []UserPlannerRequestBody      `json:"userList"`
	EventParts  []EventPartPlannerRequestBody `json:"eventParts"`
	FileKey     string                        `json:"fileKey"`
	Delay       int64                         `json:"delay"`
	CallBackURL string                        `json:"callBackUrl"`
}

// SolveStatus is the solver's verdict in a callback.
type SolveStatus string

const (
	SolveFull       SolveStatus = "FULL"
	SolvePartial    SolveStatus = "PARTIAL"
	SolveInfeasible SolveStatus = "INFEASIBLE"
)

// PlannedPart is one placement in a solver callback. A nil Timeslot means
// the solver could not schedule this part.
type PlannedPart struct {
	GroupID  string                 `json:"groupId"`
	Part     int                    `json:"part"`
	LastPart int                    `json:"lastPart"`
	EventID  string                 `json:"eventId"`
	HostID   string                 `json:"hostId"`
	UserID   string                 `json:"userId"`
	Timeslot *availability.TimeSlot `json:"timeslot,omitempty"`
}

// PlannerCallbackBody is the payload the solver delivers to the callback
// URL once it has finished (or given up on) a run.
type PlannerCallbackBody struct {
	SingletonID   string        `json:"singletonId"`
	HostID        string        `json:"hostId"`
	FileKey       string        `json:"fileKey"`
	Status        SolveStatus   `json:"status"`
	EventPartList []PlannedPart `json:"eventPartList"`
}
