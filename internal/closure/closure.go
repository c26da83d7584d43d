// Package closure computes who may still see or write to a conversation
// after a participant has ended it.
//
// A closed conversation stays readable for its participants for a short
// grace window and for staff for a longer retention window. Once the
// retention window lapses the record is purged outright; there is no
// archived state.
package closure

import (
	"fmt"
	"time"

	"github.com/plazamkt/storefront-backend/internal/model"
)

// Windows holds the two visibility durations. AdminRetention must be
// longer than ParticipantGrace; config.Load enforces that.
type Windows struct {
	ParticipantGrace time.Duration
	AdminRetention   time.Duration
}

func DefaultWindows() Windows {
	return Windows{
		ParticipantGrace: 7 * 24 * time.Hour,
		AdminRetention:   30 * 24 * time.Hour,
	}
}

// Viewer identifies who is looking at the conversation.
type Viewer struct {
	UID     string
	IsAdmin bool
}

// State is the evaluated visibility of one conversation for one viewer
// at one instant.
type State struct {
	IsClosed                bool       `json:"isClosed"`
	CanView                 bool       `json:"canView"`
	CanSend                 bool       `json:"canSend"`
	ParticipantVisibleUntil *time.Time `json:"participantVisibleUntil,omitempty"`
	AdminRetentionUntil     *time.Time `json:"adminRetentionUntil,omitempty"`
	ParticipantNotice       string     `json:"participantNotice,omitempty"`
}

// Evaluate is pure: the same conversation, viewer, now and windows always
// produce the same State. Callers must pass a single consistent now for a
// request rather than re-reading the clock.
//
// A closed_at in the future (clock skew, bad import) counts as not closed
// so durations never go negative.
func Evaluate(conv *model.Conversation, viewer Viewer, now time.Time, w Windows) State {
	if conv.ClosedAt == nil || conv.ClosedAt.After(now) {
		return State{CanView: true, CanSend: true}
	}

	participantUntil := conv.ClosedAt.Add(w.ParticipantGrace)
	adminUntil := conv.ClosedAt.Add(w.AdminRetention)

	st := State{
		IsClosed:                true,
		ParticipantVisibleUntil: &participantUntil,
		AdminRetentionUntil:     &adminUntil,
	}
	if viewer.IsAdmin {
		st.CanView = now.Before(adminUntil)
		return st
	}
	st.CanView = now.Before(participantUntil)
	if st.CanView {
		st.ParticipantNotice = fmt.Sprintf(
			"This conversation has been closed. It will disappear from your view on %s.",
			participantUntil.Format("Jan 2, 2006"))
	}
	return st
}

// Expired reports whether the conversation is past the admin retention
// window and therefore eligible for purge.
func Expired(conv *model.Conversation, now time.Time, w Windows) bool {
	if conv.ClosedAt == nil || conv.ClosedAt.After(now) {
		return false
	}
	return !now.Before(conv.ClosedAt.Add(w.AdminRetention))
}
