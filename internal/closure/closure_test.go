package closure

import (
	"strings"
	"testing"
	"time"

	"github.com/plazamkt/storefront-backend/internal/model"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func closedConv(at time.Time) *model.Conversation {
	by := "buyer-1"
	return &model.Conversation{
		ID:           1,
		CustomerUID:  "buyer-1",
		VendorUID:    "vendor-1",
		ClosedAt:     &at,
		ClosedByUID:  &by,
		ClosedReason: "ended_by_user",
	}
}

func TestEvaluateOpenConversation(t *testing.T) {
	conv := &model.Conversation{ID: 1, CustomerUID: "buyer-1", VendorUID: "vendor-1"}
	for _, admin := range []bool{false, true} {
		st := Evaluate(conv, Viewer{UID: "buyer-1", IsAdmin: admin}, t0, DefaultWindows())
		if st.IsClosed || !st.CanView || !st.CanSend {
			t.Fatalf("admin=%v: got %+v, want open conversation fully usable", admin, st)
		}
		if st.ParticipantNotice != "" || st.ParticipantVisibleUntil != nil || st.AdminRetentionUntil != nil {
			t.Fatalf("admin=%v: open conversation must carry no closure metadata, got %+v", admin, st)
		}
	}
}

func TestEvaluateWindows(t *testing.T) {
	w := DefaultWindows()
	tests := []struct {
		name     string
		at       time.Time
		admin    bool
		wantView bool
	}{
		{"participant inside grace", t0.Add(3 * 24 * time.Hour), false, true},
		{"participant past grace", t0.Add(10 * 24 * time.Hour), false, false},
		{"participant at boundary", t0.Add(7 * 24 * time.Hour), false, false},
		{"admin inside retention", t0.Add(10 * 24 * time.Hour), true, true},
		{"admin past retention", t0.Add(31 * 24 * time.Hour), true, false},
		{"admin at boundary", t0.Add(30 * 24 * time.Hour), true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := Evaluate(closedConv(t0), Viewer{UID: "buyer-1", IsAdmin: tt.admin}, tt.at, w)
			if !st.IsClosed {
				t.Fatal("conversation must evaluate as closed")
			}
			if st.CanView != tt.wantView {
				t.Fatalf("canView=%v want=%v", st.CanView, tt.wantView)
			}
			if st.CanSend {
				t.Fatal("closed conversations are read-only for every role")
			}
		})
	}
}

func TestEvaluateNotice(t *testing.T) {
	w := DefaultWindows()
	st := Evaluate(closedConv(t0), Viewer{UID: "buyer-1"}, t0.Add(24*time.Hour), w)
	if st.ParticipantNotice == "" {
		t.Fatal("visible participant view of a closed conversation needs a notice")
	}
	if want := t0.Add(w.ParticipantGrace).Format("Jan 2, 2006"); !strings.Contains(st.ParticipantNotice, want) {
		t.Fatalf("notice %q missing disappearance date %q", st.ParticipantNotice, want)
	}

	// No notice for admins or once the window lapsed.
	if st := Evaluate(closedConv(t0), Viewer{UID: "staff", IsAdmin: true}, t0.Add(24*time.Hour), w); st.ParticipantNotice != "" {
		t.Fatalf("admin view must not carry a participant notice, got %q", st.ParticipantNotice)
	}
	if st := Evaluate(closedConv(t0), Viewer{UID: "buyer-1"}, t0.Add(8*24*time.Hour), w); st.ParticipantNotice != "" {
		t.Fatalf("lapsed view must not carry a notice, got %q", st.ParticipantNotice)
	}
}

func TestEvaluateFutureClosedAt(t *testing.T) {
	// Clock skew: a closed_at one hour ahead of now means not closed yet.
	st := Evaluate(closedConv(t0.Add(time.Hour)), Viewer{UID: "buyer-1"}, t0, DefaultWindows())
	if st.IsClosed {
		t.Fatal("future closed_at must evaluate as not closed")
	}
	if !st.CanView || !st.CanSend {
		t.Fatalf("got %+v, want fully usable", st)
	}
}

func TestExpired(t *testing.T) {
	w := DefaultWindows()
	tests := []struct {
		name string
		conv *model.Conversation
		now  time.Time
		want bool
	}{
		{"open", &model.Conversation{}, t0, false},
		{"inside retention", closedConv(t0), t0.Add(10 * 24 * time.Hour), false},
		{"at retention boundary", closedConv(t0), t0.Add(30 * 24 * time.Hour), true},
		{"past retention", closedConv(t0), t0.Add(31 * 24 * time.Hour), true},
		{"future closed_at", closedConv(t0.Add(time.Hour)), t0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Expired(tt.conv, tt.now, w); got != tt.want {
				t.Fatalf("got=%v want=%v", got, tt.want)
			}
		})
	}
}
