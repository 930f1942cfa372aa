package meeting

import "time"

// AttendeeRequest is one person on the submitted attendee list
type AttendeeRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=255"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

// CreateMeetingRequest represents the request to submit a transcript
type CreateMeetingRequest struct {
	ProjectID   string            `json:"project_id" validate:"required,uuid"`
	Title       string            `json:"title" validate:"required,min=1,max=500"`
	Category    string            `json:"category" validate:"required,oneof=standup planning review retrospective incident_review postmortem client_call general"`
	MeetingDate time.Time         `json:"meeting_date" validate:"required"`
	Attendees   []AttendeeRequest `json:"attendees" validate:"dive"`
	Transcript  string            `json:"transcript" validate:"required,min=1"`
}

// ListMeetingsRequest represents query parameters for listing meetings
type ListMeetingsRequest struct {
	Limit  int `query:"limit" validate:"omitempty,min=1,max=200"`
	Offset int `query:"offset" validate:"omitempty,min=0"`
}
