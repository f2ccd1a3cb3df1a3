package quoting

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQuote struct {
	status Status
	valid  time.Time
}

func (f fakeQuote) GetStatus() Status { return f.status }
func (f fakeQuote) GetValidUntil() time.Time { return f.valid }
func (f fakeQuote) GetTotal() decimal.Decimal { return decimal.Zero }
func (f fakeQuote) GetClientID() uint { return 0 }
func (f fakeQuote) GetUserID() uint { return 0 }

var (
	ownerActor    = Actor{UserID: 1}
	elevatedActor = Actor{UserID: 2, Elevated: true}
)

func TestSentToDraftRejectedForEveryone(t *testing.T) {
	for _, actor := range []Actor{ownerActor, elevatedActor} {
		err := CheckTransition(StatusSent, StatusDraft, actor)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTransitionNotAllowed)
	}
}

func TestUnsentToApprovedNeedsElevatedRole(t *testing.T) {
	err := CheckTransition(StatusUnsent, StatusApproved, ownerActor)
	require.ErrorIs(t, err, ErrElevatedRequired)

	var te *TransitionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, StatusUnsent, te.From)
	assert.Equal(t, StatusApproved, te.To)

	assert.NoError(t, CheckTransition(StatusUnsent, StatusApproved, elevatedActor))
}

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		from, to Status
		actor    Actor
		want     error
	}{
		{StatusUnsent, StatusDraft, ownerActor, nil},
		{StatusUnsent, StatusSent, ownerActor, nil},
		{StatusUnsent, StatusRejected, ownerActor, ErrElevatedRequired},
		{StatusUnsent, StatusExpired, ownerActor, nil},
		{StatusDraft, StatusUnsent, ownerActor, nil},
		{StatusDraft, StatusSent, ownerActor, nil},
		{StatusDraft, StatusApproved, elevatedActor, nil},
		{StatusSent, StatusApproved, ownerActor, nil},
		{StatusSent, StatusRejected, ownerActor, nil},
		{StatusSent, StatusExpired, ownerActor, nil},
		{StatusSent, StatusUnsent, elevatedActor, ErrTransitionNotAllowed},
		{StatusApproved, StatusDraft, elevatedActor, ErrTransitionNotAllowed},
		{StatusApproved, StatusSent, elevatedActor, ErrTransitionNotAllowed},
		{StatusRejected, StatusSent, ownerActor, nil},
		{StatusRejected, StatusDraft, elevatedActor, ErrDuplicateOnly},
		{StatusExpired, StatusDraft, ownerActor, ErrDuplicateOnly},
		{StatusExpired, StatusSent, elevatedActor, ErrTransitionNotAllowed},
		{StatusDraft, StatusDraft, ownerActor, ErrTransitionNotAllowed},
	}
	for _, tt := range tests {
		err := CheckTransition(tt.from, tt.to, tt.actor)
		if tt.want == nil {
			assert.NoError(t, err, "%s -> %s", tt.from, tt.to)
			continue
		}
		assert.ErrorIs(t, err, tt.want, "%s -> %s", tt.from, tt.to)
	}
}

func TestAllowedTransitions(t *testing.T) {
	assert.Equal(t, []Status{StatusApproved, StatusRejected, StatusExpired}, AllowedTransitions(StatusSent, ownerActor))
	assert.Empty(t, AllowedTransitions(StatusApproved, elevatedActor))
	assert.Equal(t, []Status{StatusDraft, StatusSent, StatusExpired}, AllowedTransitions(StatusUnsent, ownerActor))
}

func TestEffectiveStatus(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)

	assert.Equal(t, StatusExpired, EffectiveStatus(fakeQuote{StatusSent, yesterday}, now))
	assert.Equal(t, StatusExpired, EffectiveStatus(fakeQuote{StatusDraft, yesterday}, now))
	// the validity day itself is still valid
	assert.Equal(t, StatusSent, EffectiveStatus(fakeQuote{StatusSent, now.Add(-10 * time.Hour)}, now))
	assert.Equal(t, StatusApproved, EffectiveStatus(fakeQuote{StatusApproved, yesterday}, now))
	assert.Equal(t, StatusRejected, EffectiveStatus(fakeQuote{StatusRejected, yesterday}, now))
	assert.Equal(t, StatusUnsent, EffectiveStatus(fakeQuote{StatusUnsent, time.Time{}}, now))
}

func TestCheckEditable(t *testing.T) {
	now := time.Now()
	future := now.AddDate(0, 1, 0)
	assert.NoError(t, CheckEditable(fakeQuote{StatusUnsent, future}, now))
	assert.NoError(t, CheckEditable(fakeQuote{StatusDraft, future}, now))
	for _, st := range []Status{StatusSent, StatusApproved, StatusRejected, StatusExpired} {
		assert.ErrorIs(t, CheckEditable(fakeQuote{st, future}, now), ErrNotEditable, st)
	}
	assert.ErrorIs(t, CheckEditable(fakeQuote{StatusDraft, now.AddDate(0, 0, -2)}, now), ErrNotEditable)
}

func TestSendRequirements(t *testing.T) {
	assert.ErrorIs(t, SendRequirements{}.Check(), ErrClientContactMissing)
	assert.ErrorIs(t, SendRequirements{ClientEmail: "not an email"}.Check(), ErrClientContactMissing)
	assert.NoError(t, SendRequirements{ClientEmail: "ana@example.com"}.Check())
	assert.ErrorIs(t, SendRequirements{ClientEmail: "ana@example.com", RequireAssembly: true}.Check(), ErrAssemblyMissing)
	assert.NoError(t, SendRequirements{ClientEmail: "ana@example.com", RequireAssembly: true, HasAssembly: true}.Check())
}

func TestCopyStatusAndParse(t *testing.T) {
	assert.Equal(t, StatusUnsent, CopyStatus(StatusUnsent))
	assert.Equal(t, StatusDraft, CopyStatus(StatusRejected))
	assert.Equal(t, StatusDraft, CopyStatus(StatusApproved))

	st, err := ParseStatus(" Sent ")
	require.NoError(t, err)
	assert.Equal(t, StatusSent, st)
	_, err = ParseStatus("archived")
	assert.ErrorIs(t, err, ErrUnknownStatus)
	assert.True(t, IsPrecondition(CheckTransition(StatusSent, StatusDraft, ownerActor)))
}
