package session_test

import (
	"context"
	"testing"

	session "github.com/jobconnect/go-session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*session.Manager, *fakeProvider, *memRoleStore, *memProfileStore, *captureNotifier) {
	t.Helper()

	provider := newFakeProvider()
	roles := newMemRoleStore()
	profiles := newMemProfileStore()
	notifier := &captureNotifier{}

	manager := session.NewManager(provider, roles, profiles).
		WithNotifier(notifier)

	return manager, provider, roles, profiles, notifier
}

func TestRestoreWithoutRecordResolvesAnonymous(t *testing.T) {
	manager, _, _, _, notifier := newTestManager(t)

	assert.Equal(t, session.StateUnknown, manager.State())
	assert.True(t, manager.Loading())

	require.NoError(t, manager.Restore(context.Background()))

	assert.Equal(t, session.StateAnonymous, manager.State())
	assert.False(t, manager.Loading())
	assert.Nil(t, manager.CurrentSession())
	assert.Empty(t, notifier.all(), "restore is silent")
}

func TestRestoreIsOneShot(t *testing.T) {
	manager, provider, _, _, _ := newTestManager(t)

	require.NoError(t, manager.Restore(context.Background()))
	assert.Equal(t, session.StateAnonymous, manager.State())

	// A record appearing later must not be picked up by a second call.
	provider.record = fakeSession("u1", "late@example.com")
	require.NoError(t, manager.Restore(context.Background()))
	assert.Equal(t, session.StateAnonymous, manager.State())
}

func TestSignUpAuthenticatesAndMaterializes(t *testing.T) {
	manager, _, roles, _, notifier := newTestManager(t)
	require.NoError(t, manager.Restore(context.Background()))

	err := manager.SignUp(context.Background(), session.SignUpInput{
		Email:    "alice@example.com",
		Password: "Str0ng!pass",
		Role:     session.RoleWorker,
	})
	require.NoError(t, err)

	snap := manager.Snapshot()
	assert.Equal(t, session.StateAuthenticated, snap.State)
	require.NotNil(t, snap.Session)
	assert.Equal(t, "alice@example.com", snap.Session.User.Email)
	assert.Equal(t, session.RoleWorker, snap.Role)
	require.NotNil(t, snap.Profile)
	assert.Equal(t, "alice", snap.Profile.DisplayName())

	persisted, err := roles.Get(context.Background(), snap.Session.UserID())
	require.NoError(t, err)
	assert.Equal(t, session.RoleWorker, persisted)

	last, ok := notifier.last()
	require.True(t, ok)
	assert.Equal(t, session.NotificationSuccess, last.Kind)
}

func TestSignUpRejectionLeavesStateUntouched(t *testing.T) {
	manager, provider, _, _, notifier := newTestManager(t)
	require.NoError(t, manager.Restore(context.Background()))

	provider.signUpErr = session.ErrRegistrationRejected

	err := manager.SignUp(context.Background(), session.SignUpInput{
		Email:    "bob@example.com",
		Password: "Str0ng!pass",
	})
	require.Error(t, err)
	assert.True(t, session.IsRegistrationRejected(err))

	assert.Equal(t, session.StateAnonymous, manager.State())
	assert.Nil(t, manager.CurrentSession())

	last, ok := notifier.last()
	require.True(t, ok)
	assert.Equal(t, session.NotificationError, last.Kind)
}

func TestSignUpInvalidPasswordRejectedLocally(t *testing.T) {
	manager, _, _, _, _ := newTestManager(t)
	require.NoError(t, manager.Restore(context.Background()))

	err := manager.SignUp(context.Background(), session.SignUpInput{
		Email:    "carol@example.com",
		Password: "weak",
	})
	require.Error(t, err)
	assert.True(t, session.IsRegistrationRejected(err))
	assert.Equal(t, session.StateAnonymous, manager.State())
}

func TestSignInUnknownAccountStaysAnonymous(t *testing.T) {
	manager, _, _, _, notifier := newTestManager(t)
	require.NoError(t, manager.Restore(context.Background()))

	err := manager.SignIn(context.Background(), "ghost@example.com", "whatever1!A")
	require.Error(t, err)
	assert.True(t, session.IsNoAccount(err))

	assert.Equal(t, session.StateAnonymous, manager.State())
	assert.Nil(t, manager.CurrentSession())

	last, ok := notifier.last()
	require.True(t, ok)
	assert.Equal(t, session.NotificationError, last.Kind)
	assert.Contains(t, last.Message, "sign up")
}

func TestSignOutIsNonDestructive(t *testing.T) {
	manager, _, roles, profiles, _ := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, manager.Restore(ctx))

	require.NoError(t, manager.SignUp(ctx, session.SignUpInput{
		Email:    "alice@example.com",
		Password: "Str0ng!pass",
		Role:     session.RoleWorker,
	}))

	userID := manager.Snapshot().Session.UserID()

	require.NoError(t, manager.UpdateProfile(ctx, session.WorkerProfilePatch{
		City: strPtr("Porto"),
	}))

	require.NoError(t, manager.SignOut(ctx))

	snap := manager.Snapshot()
	assert.Equal(t, session.StateAnonymous, snap.State)
	assert.Nil(t, snap.Session)
	assert.Equal(t, session.RoleUnset, snap.Role)
	assert.Nil(t, snap.Profile)

	role, err := roles.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, session.RoleWorker, role, "role assignment survives sign-out")

	stored, err := profiles.Get(ctx, userID, session.RoleWorker)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Porto", stored.(*session.WorkerProfile).City)
}

func TestSignOutRequiresSession(t *testing.T) {
	manager, _, _, _, _ := newTestManager(t)
	require.NoError(t, manager.Restore(context.Background()))

	err := manager.SignOut(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, session.ErrNotAuthenticated)
}

func TestFullScenarioSignUpSignOutSignInRestoresRole(t *testing.T) {
	manager, _, _, _, _ := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, manager.Restore(ctx))

	require.NoError(t, manager.SignUp(ctx, session.SignUpInput{
		Email:    "alice@example.com",
		Password: "Str0ng!pass",
		Role:     session.RoleWorker,
	}))
	assert.Equal(t, session.RoleWorker, manager.CurrentRole())

	require.NoError(t, manager.SignOut(ctx))
	assert.Equal(t, session.StateAnonymous, manager.State())

	require.NoError(t, manager.SignIn(ctx, "alice@example.com", "Str0ng!pass"))

	snap := manager.Snapshot()
	assert.Equal(t, session.StateAuthenticated, snap.State)
	assert.Equal(t, session.RoleWorker, snap.Role, "role restored from persistence")
	require.NotNil(t, snap.Profile)
	assert.Equal(t, session.RoleWorker, snap.Profile.ProfileRole())
}

func TestSetRoleIsIdempotent(t *testing.T) {
	manager, _, _, _, _ := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, manager.Restore(ctx))

	require.NoError(t, manager.SignUp(ctx, session.SignUpInput{
		Email:    "dan@example.com",
		Password: "Str0ng!pass",
	}))
	assert.Equal(t, session.RoleUnset, manager.CurrentRole())

	require.NoError(t, manager.SetRole(ctx, session.RoleEmployer))
	first := manager.Snapshot()

	require.NoError(t, manager.SetRole(ctx, session.RoleEmployer))
	second := manager.Snapshot()

	assert.Equal(t, first.Role, second.Role)
	assert.Equal(t, first.State, second.State)
	assert.Equal(t, first.Profile.ProfileRole(), second.Profile.ProfileRole())
}

func TestSetRoleSwitchesProfileVariant(t *testing.T) {
	manager, _, _, _, _ := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, manager.Restore(ctx))

	require.NoError(t, manager.SignUp(ctx, session.SignUpInput{
		Email:    "erin@example.com",
		Password: "Str0ng!pass",
	}))

	require.NoError(t, manager.SetRole(ctx, session.RoleEmployer))

	profile := manager.CurrentProfile()
	require.NotNil(t, profile)
	assert.Equal(t, session.RoleEmployer, profile.ProfileRole())
	_, isEmployer := profile.(*session.EmployerProfile)
	assert.True(t, isEmployer)
}

func TestSetRoleRequiresAuthentication(t *testing.T) {
	manager, _, _, _, _ := newTestManager(t)
	require.NoError(t, manager.Restore(context.Background()))

	err := manager.SetRole(context.Background(), session.RoleWorker)
	assert.ErrorIs(t, err, session.ErrNotAuthenticated)
}

func TestSetRoleRejectsInvalidValue(t *testing.T) {
	manager, _, _, _, _ := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, manager.Restore(ctx))
	require.NoError(t, manager.SignUp(ctx, session.SignUpInput{
		Email:    "frank@example.com",
		Password: "Str0ng!pass",
	}))

	err := manager.SetRole(ctx, session.Role("admin"))
	require.Error(t, err)
	assert.Equal(t, session.StateAuthenticated, manager.State())
}

func TestUpdateProfileMergesPatch(t *testing.T) {
	manager, _, _, _, _ := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, manager.Restore(ctx))

	require.NoError(t, manager.SignUp(ctx, session.SignUpInput{
		Email:    "gina@example.com",
		Password: "Str0ng!pass",
		Role:     session.RoleWorker,
	}))

	require.NoError(t, manager.UpdateProfile(ctx, session.WorkerProfilePatch{
		City:   strPtr("Lisbon"),
		Skills: &[]string{"plumbing", "welding"},
	}))

	first := manager.CurrentProfile().(*session.WorkerProfile)
	assert.Equal(t, "Lisbon", first.City)
	assert.Equal(t, []string{"plumbing", "welding"}, first.Skills)

	// Nil fields keep their prior values.
	require.NoError(t, manager.UpdateProfile(ctx, session.WorkerProfilePatch{
		Description: strPtr("Ten years on commercial sites."),
	}))

	second := manager.CurrentProfile().(*session.WorkerProfile)
	assert.Equal(t, "Lisbon", second.City)
	assert.Equal(t, []string{"plumbing", "welding"}, second.Skills)
	assert.Equal(t, "Ten years on commercial sites.", second.Description)
}

func TestUpdateProfileWrongVariantFails(t *testing.T) {
	manager, _, _, _, _ := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, manager.Restore(ctx))

	require.NoError(t, manager.SignUp(ctx, session.SignUpInput{
		Email:    "hank@example.com",
		Password: "Str0ng!pass",
		Role:     session.RoleWorker,
	}))

	before := manager.CurrentProfile()

	err := manager.UpdateProfile(ctx, session.EmployerProfilePatch{
		CompanyName: strPtr("Acme"),
	})
	require.Error(t, err)

	after := manager.CurrentProfile()
	assert.Equal(t, before.DisplayName(), after.DisplayName())
}

func TestRestoreRoundTripAfterSignUp(t *testing.T) {
	provider := newFakeProvider()
	roles := newMemRoleStore()
	profiles := newMemProfileStore()
	ctx := context.Background()

	first := session.NewManager(provider, roles, profiles)
	require.NoError(t, first.Restore(ctx))
	require.NoError(t, first.SignUp(ctx, session.SignUpInput{
		Email:    "alice@example.com",
		Password: "Str0ng!pass",
		Role:     session.RoleWorker,
	}))

	// A fresh manager over the same provider simulates an app restart.
	second := session.NewManager(provider, roles, profiles)
	require.NoError(t, second.Restore(ctx))

	snap := second.Snapshot()
	assert.Equal(t, session.StateAuthenticated, snap.State)
	require.NotNil(t, snap.Session)
	assert.Equal(t, "alice@example.com", snap.Session.User.Email)
	assert.Equal(t, session.RoleWorker, snap.Role)
}

func TestOperationInFlightGuard(t *testing.T) {
	manager, provider, _, _, _ := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, manager.Restore(ctx))

	provider.signInStarted = make(chan struct{})
	provider.signInRelease = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		done <- manager.SignIn(ctx, "ghost@example.com", "whatever1!A")
	}()

	<-provider.signInStarted

	err := manager.SignUp(ctx, session.SignUpInput{
		Email:    "late@example.com",
		Password: "Str0ng!pass",
	})
	require.Error(t, err)
	assert.True(t, session.IsOperationInFlight(err))

	close(provider.signInRelease)
	<-done
}

func TestSocialSignInWithoutProviderNotifiesComingSoon(t *testing.T) {
	manager, _, _, _, notifier := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, manager.Restore(ctx))

	url, err := manager.SignInWithGoogle(ctx)
	require.NoError(t, err)
	assert.Empty(t, url)
	assert.Equal(t, session.StateAnonymous, manager.State())

	last, ok := notifier.last()
	require.True(t, ok)
	assert.Equal(t, session.NotificationInfo, last.Kind)
	assert.Equal(t, "Coming Soon", last.Title)
}

func TestSocialSignInRedirectsWhenConfigured(t *testing.T) {
	manager, provider, _, _, _ := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, manager.Restore(ctx))

	provider.oauthErr = nil
	provider.oauthURL = "https://github.com/login/oauth/authorize?state=x"

	url, err := manager.SignInWithGithub(ctx)
	require.NoError(t, err)
	assert.Equal(t, provider.oauthURL, url)
	assert.Equal(t, session.StateAnonymous, manager.State(), "redirect does not authenticate")
}

func TestSubscribersReceiveCommittedSnapshots(t *testing.T) {
	manager, _, _, _, _ := newTestManager(t)
	ctx := context.Background()

	var seen []session.Snapshot
	unsubscribe := manager.Subscribe(func(s session.Snapshot) {
		seen = append(seen, s)
	})

	require.NoError(t, manager.Restore(ctx))
	require.NoError(t, manager.SignUp(ctx, session.SignUpInput{
		Email:    "iris@example.com",
		Password: "Str0ng!pass",
	}))

	require.Len(t, seen, 2)
	assert.Equal(t, session.StateAnonymous, seen[0].State)
	assert.Equal(t, session.StateAuthenticated, seen[1].State)

	unsubscribe()
	require.NoError(t, manager.SignOut(ctx))
	assert.Len(t, seen, 2, "unsubscribed callbacks stay silent")
}

func TestProviderSignOutResolvesAnonymous(t *testing.T) {
	manager, provider, _, _, _ := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, manager.Restore(ctx))
	require.NoError(t, manager.SignUp(ctx, session.SignUpInput{
		Email:    "alice@example.com",
		Password: "Str0ng!pass",
		Role:     session.RoleWorker,
	}))
	require.Equal(t, session.StateAuthenticated, manager.State())

	var seen []session.Snapshot
	unsubscribe := manager.Subscribe(func(s session.Snapshot) {
		seen = append(seen, s)
	})
	defer unsubscribe()

	// Another process clears the shared session record; the provider
	// reports the sign-out through its subscription channel.
	provider.mu.Lock()
	provider.record = nil
	provider.mu.Unlock()
	provider.emit(session.AuthChange{Event: session.AuthChangeSignedOut})

	assert.Equal(t, session.StateAnonymous, manager.State())
	assert.Nil(t, manager.CurrentSession())
	assert.Equal(t, session.RoleUnset, manager.CurrentRole())

	require.Len(t, seen, 1)
	assert.Equal(t, session.StateAnonymous, seen[0].State)
}

func TestProviderSignOutIgnoredWhileAnonymous(t *testing.T) {
	manager, provider, _, _, _ := newTestManager(t)
	require.NoError(t, manager.Restore(context.Background()))
	require.Equal(t, session.StateAnonymous, manager.State())

	var seen []session.Snapshot
	unsubscribe := manager.Subscribe(func(s session.Snapshot) {
		seen = append(seen, s)
	})
	defer unsubscribe()

	provider.emit(session.AuthChange{Event: session.AuthChangeSignedOut})

	assert.Equal(t, session.StateAnonymous, manager.State())
	assert.Empty(t, seen)
}

func TestActivitySinkRecordsLifecycleEvents(t *testing.T) {
	manager, _, _, _, _ := newTestManager(t)
	sink := &captureSink{}
	manager.WithActivitySink(sink)
	ctx := context.Background()

	require.NoError(t, manager.Restore(ctx))
	require.NoError(t, manager.SignUp(ctx, session.SignUpInput{
		Email:    "alice@example.com",
		Password: "Str0ng!pass",
	}))
	require.NoError(t, manager.SetRole(ctx, session.RoleWorker))
	require.NoError(t, manager.SignOut(ctx))

	var types []session.ActivityEventType
	for _, event := range sink.all() {
		types = append(types, event.EventType)
	}
	assert.Equal(t, []session.ActivityEventType{
		session.ActivityEventRestored,
		session.ActivityEventSignUpSuccess,
		session.ActivityEventRoleSelected,
		session.ActivityEventSignOut,
	}, types)
}

func strPtr(s string) *string { return &s }
