package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode"
	"unicode/utf8"

	accountdomain "wiki-identity-bridge/internal/account/domain"
	bindingdomain "wiki-identity-bridge/internal/binding/domain"
	equivservice "wiki-identity-bridge/internal/equivalence/service"
	"wiki-identity-bridge/internal/provider"
)

const testHost = "https://id.example.org"

type memBindings struct {
	mu   sync.Mutex
	rows []*bindingdomain.Binding
}

func (r *memBindings) GetByIdentity(ctx context.Context, identityID, providerHost string) (*bindingdomain.Binding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.rows {
		if b.IdentityID == identityID && b.ProviderHost == providerHost {
			return b, nil
		}
	}
	return nil, nil
}

func (r *memBindings) GetByAccount(ctx context.Context, accountID int64, providerHost string) (*bindingdomain.Binding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.rows {
		if b.AccountID == accountID && b.ProviderHost == providerHost {
			return b, nil
		}
	}
	return nil, nil
}

// Bind mimics the unique indexes: a duplicate (account, host) or (identity, host)
// insert is silently dropped.
func (r *memBindings) Bind(ctx context.Context, b *bindingdomain.Binding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rows {
		if existing.ProviderHost != b.ProviderHost {
			continue
		}
		if existing.AccountID == b.AccountID || existing.IdentityID == b.IdentityID {
			return nil
		}
	}
	copied := *b
	r.rows = append(r.rows, &copied)
	return nil
}

type memAccounts struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*accountdomain.Account
}

func newMemAccounts() *memAccounts {
	return &memAccounts{byID: map[int64]*accountdomain.Account{}}
}

func (r *memAccounts) GetByID(ctx context.Context, id int64) (*accountdomain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[id], nil
}

func (r *memAccounts) GetByName(ctx context.Context, name string) (*accountdomain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.Name == name {
			return a, nil
		}
	}
	return nil, nil
}

func (r *memAccounts) Create(ctx context.Context, a *accountdomain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	a.ID = r.nextID
	r.byID[a.ID] = a
	return nil
}

func (r *memAccounts) Rename(ctx context.Context, id int64, newName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.byID[id]; ok {
		a.Name = newName
	}
	return nil
}

func (r *memAccounts) UpdateEmail(ctx context.Context, id int64, email string, confirmedAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.byID[id]; ok {
		a.Email = email
		a.EmailConfirmedAt = confirmedAt
	}
	return nil
}

func (r *memAccounts) ConfirmEmail(ctx context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.byID[id]; ok {
		a.EmailConfirmedAt = &at
	}
	return nil
}

func (r *memAccounts) UpdateRealName(ctx context.Context, id int64, realName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.byID[id]; ok {
		a.RealName = realName
	}
	return nil
}

func (r *memAccounts) add(a *accountdomain.Account) *accountdomain.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	a.ID = r.nextID
	r.byID[a.ID] = a
	return a
}

type fakeFrontend struct {
	session   *provider.Session
	err       error
	logoutErr error
	logoutCnt int
	whoamiCnt int
}

func (f *fakeFrontend) ToSession(ctx context.Context, cookieHeader string) (*provider.Session, error) {
	f.whoamiCnt++
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func (f *fakeFrontend) Logout(ctx context.Context, cookieHeader string) error {
	f.logoutCnt++
	return f.logoutErr
}

func (f *fakeFrontend) LoginURL(returnTo string) string {
	u := testHost + "/self-service/login/browser"
	if returnTo != "" {
		u += "?return_to=" + url.QueryEscape(returnTo)
	}
	return u
}

type fakeAdmin struct {
	identity    *provider.Identity
	getErr      error
	deleteErr   error
	patchErr    error
	deleteCalls int
	patchedID   string
	patchedName string
}

func (f *fakeAdmin) GetIdentity(ctx context.Context, id string) (*provider.Identity, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.identity, nil
}

func (f *fakeAdmin) DeleteSessions(ctx context.Context, id string) error {
	f.deleteCalls++
	return f.deleteErr
}

func (f *fakeAdmin) PatchUsername(ctx context.Context, id, username string) error {
	f.patchedID, f.patchedName = id, username
	return f.patchErr
}

type fakeChecker struct {
	usable   bool
	reason   string
	recorded map[int64]string
}

func (f *fakeChecker) CheckUsable(ctx context.Context, candidate string) (*equivservice.Usability, error) {
	canonical, _ := f.Canonical(candidate)
	return &equivservice.Usability{Usable: f.usable, Reason: f.reason, Canonical: canonical}, nil
}

func (f *fakeChecker) RecordUsername(ctx context.Context, accountID int64, username string) error {
	if f.recorded == nil {
		f.recorded = map[int64]string{}
	}
	f.recorded[accountID] = username
	return nil
}

// Canonical mirrors the host rule the real checker applies: uppercase the
// first letter.
func (f *fakeChecker) Canonical(username string) (string, bool) {
	if username == "" {
		return "", false
	}
	r, size := utf8.DecodeRuneInString(username)
	return string(unicode.ToUpper(r)) + username[size:], true
}

const (
	identityX = "11111111-1111-1111-1111-111111111111"
	identityY = "22222222-2222-2222-2222-222222222222"
)

func activeSession(identityID, username string) *provider.Session {
	return &provider.Session{
		ID:     "sess-1",
		Active: true,
		Identity: provider.Identity{
			ID:     identityID,
			Traits: provider.Traits{Username: username, Email: username + "@example.org"},
		},
	}
}

func newBridge(frontend *fakeFrontend, admin *fakeAdmin, autoCreate bool) (*Service, *memBindings, *memAccounts, *fakeChecker) {
	bindings := &memBindings{}
	accounts := newMemAccounts()
	checker := &fakeChecker{usable: true}
	svc := NewService(bindings, accounts, frontend, admin, checker, testHost, autoCreate, nil)
	return svc, bindings, accounts, checker
}

func TestAuthenticate_BindingPrecedesUsernameMatch(t *testing.T) {
	frontend := &fakeFrontend{session: activeSession(identityX, "Bob")}
	svc, bindings, accounts, _ := newBridge(frontend, &fakeAdmin{}, true)

	original := accounts.add(&accountdomain.Account{Name: "Alice"})
	accounts.add(&accountdomain.Account{Name: "Bob"})
	if err := bindings.Bind(context.Background(), &bindingdomain.Binding{
		AccountID: original.ID, IdentityID: identityX, ProviderHost: testHost,
	}); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	// Identity X renamed itself to "Bob" at the provider; the established
	// binding must still win over the exact-username match on account Bob.
	result, err := svc.Authenticate(context.Background(), "c=1", "")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if result.AccountID == nil || *result.AccountID != original.ID {
		t.Errorf("resolved account = %v, want originally bound %d", result.AccountID, original.ID)
	}
}

func TestAuthenticate_BoundLoginSyncsTraits(t *testing.T) {
	session := activeSession(identityX, "Alice")
	session.Identity.Traits.Email = "fresh@example.org"
	session.Identity.VerifiableAddresses = []provider.VerifiableAddress{
		{Value: "fresh@example.org", Verified: true},
	}
	frontend := &fakeFrontend{session: session}
	svc, bindings, accounts, _ := newBridge(frontend, &fakeAdmin{}, true)
	acct := accounts.add(&accountdomain.Account{Name: "Alice", Email: "stale@example.org"})
	_ = bindings.Bind(context.Background(), &bindingdomain.Binding{
		AccountID: acct.ID, IdentityID: identityX, ProviderHost: testHost,
	})

	if _, err := svc.Authenticate(context.Background(), "c=1", ""); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	got, _ := accounts.GetByID(context.Background(), acct.ID)
	if got.Email != "fresh@example.org" {
		t.Errorf("email = %q, want provider email after bound login", got.Email)
	}
	if !got.EmailConfirmed() {
		t.Error("verified provider address should confirm the email")
	}
}

func TestAuthenticate_FirstLoginMigratesByUsername(t *testing.T) {
	frontend := &fakeFrontend{session: activeSession(identityX, "Alice")}
	svc, bindings, accounts, _ := newBridge(frontend, &fakeAdmin{}, true)
	acct := accounts.add(&accountdomain.Account{Name: "Alice"})

	result, err := svc.Authenticate(context.Background(), "c=1", "")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if result.AccountID == nil || *result.AccountID != acct.ID {
		t.Fatalf("resolved account = %v, want %d", result.AccountID, acct.ID)
	}
	if len(bindings.rows) != 1 {
		t.Fatalf("bindings = %d, want exactly 1", len(bindings.rows))
	}

	// Second login resolves through the binding; still one row.
	if _, err := svc.Authenticate(context.Background(), "c=1", ""); err != nil {
		t.Fatalf("second Authenticate: %v", err)
	}
	if len(bindings.rows) != 1 {
		t.Errorf("bindings after second login = %d, want 1", len(bindings.rows))
	}
}

func TestAuthenticate_TemporaryAccountNotMigrated(t *testing.T) {
	frontend := &fakeFrontend{session: activeSession(identityX, "Temp1")}
	svc, bindings, accounts, _ := newBridge(frontend, &fakeAdmin{}, false)
	accounts.add(&accountdomain.Account{Name: "Temp1", Temporary: true})

	result, err := svc.Authenticate(context.Background(), "c=1", "")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if result.AccountID != nil {
		t.Errorf("temporary account must not be bound, got account %d", *result.AccountID)
	}
	if len(bindings.rows) != 0 {
		t.Errorf("bindings = %d, want 0", len(bindings.rows))
	}
}

func TestAuthenticate_UnauthenticatedRedirect(t *testing.T) {
	frontend := &fakeFrontend{err: provider.ErrUnauthenticated}
	svc, bindings, _, _ := newBridge(frontend, &fakeAdmin{}, true)

	returnTo := "https://wiki.example.org/wiki/Main_Page"
	_, err := svc.Authenticate(context.Background(), "", returnTo)
	var redirect *RedirectError
	if !errors.As(err, &redirect) {
		t.Fatalf("err = %v, want *RedirectError", err)
	}
	want := testHost + "/self-service/login/browser?return_to=" + url.QueryEscape(returnTo)
	if redirect.Location != want {
		t.Errorf("redirect = %q, want %q", redirect.Location, want)
	}
	if len(bindings.rows) != 0 {
		t.Error("no resolution may happen for unauthenticated requests")
	}
}

func TestAuthenticate_ProviderErrorDenies(t *testing.T) {
	frontend := &fakeFrontend{err: fmt.Errorf("provider: whoami returned status=500")}
	svc, _, _, _ := newBridge(frontend, &fakeAdmin{}, true)

	_, err := svc.Authenticate(context.Background(), "c=1", "")
	if err == nil {
		t.Fatal("provider error must deny the attempt")
	}
	var redirect *RedirectError
	if errors.As(err, &redirect) {
		t.Error("provider error must not turn into a login redirect")
	}
	if frontend.whoamiCnt != 1 {
		t.Errorf("whoami calls = %d, want exactly 1 (no retry)", frontend.whoamiCnt)
	}
}

func TestAuthenticate_AutoCreateProvisions(t *testing.T) {
	frontend := &fakeFrontend{session: activeSession(identityX, "Newcomer")}
	svc, bindings, accounts, checker := newBridge(frontend, &fakeAdmin{}, true)

	result, err := svc.Authenticate(context.Background(), "c=1", "")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if result.AccountID == nil {
		t.Fatal("auto-create enabled: result should carry the new account")
	}
	created, _ := accounts.GetByID(context.Background(), *result.AccountID)
	if created == nil || created.Name != "Newcomer" {
		t.Fatalf("created account = %+v", created)
	}
	if checker.recorded[created.ID] != "Newcomer" {
		t.Error("provisioning must record the equivalence row")
	}
	if len(bindings.rows) != 1 {
		t.Errorf("bindings = %d, want 1", len(bindings.rows))
	}
}

func TestAuthenticate_ProvisionStoresCanonicalName(t *testing.T) {
	frontend := &fakeFrontend{session: activeSession(identityX, "alice")}
	svc, _, accounts, checker := newBridge(frontend, &fakeAdmin{}, true)

	result, err := svc.Authenticate(context.Background(), "c=1", "")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if result.AccountID == nil {
		t.Fatal("expected a provisioned account")
	}
	created, _ := accounts.GetByID(context.Background(), *result.AccountID)
	if created.Name != "Alice" {
		t.Errorf("account name = %q, want canonical Alice", created.Name)
	}
	if checker.recorded[created.ID] != "Alice" {
		t.Errorf("equivalence recorded %q, want canonical Alice", checker.recorded[created.ID])
	}
}

func TestAuthenticate_MigratesLowercaseProviderUsername(t *testing.T) {
	frontend := &fakeFrontend{session: activeSession(identityX, "alice")}
	svc, bindings, accounts, _ := newBridge(frontend, &fakeAdmin{}, false)
	acct := accounts.add(&accountdomain.Account{Name: "Alice"})

	result, err := svc.Authenticate(context.Background(), "c=1", "")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if result.AccountID == nil || *result.AccountID != acct.ID {
		t.Fatalf("resolved account = %v, want %d via canonical match", result.AccountID, acct.ID)
	}
	if len(bindings.rows) != 1 {
		t.Errorf("bindings = %d, want 1", len(bindings.rows))
	}
}

func TestProvision_UnusableUsername(t *testing.T) {
	svc, bindings, _, checker := newBridge(&fakeFrontend{}, &fakeAdmin{}, true)
	checker.usable = false
	checker.reason = "Username is too similar to a taken username: Paul"

	identity := &provider.Identity{ID: identityX, Traits: provider.Traits{Username: "Pаul"}}
	_, err := svc.Provision(context.Background(), identity)
	if !errors.Is(err, ErrUsernameNotUsable) {
		t.Fatalf("err = %v, want ErrUsernameNotUsable", err)
	}
	if !strings.Contains(err.Error(), "Paul") {
		t.Errorf("err = %v, should carry the collision reason", err)
	}
	if len(bindings.rows) != 0 {
		t.Error("failed provisioning must not write a binding")
	}
}

func TestSaveExtraAttributes_Idempotent(t *testing.T) {
	svc, bindings, accounts, _ := newBridge(&fakeFrontend{}, &fakeAdmin{}, true)
	acct := accounts.add(&accountdomain.Account{Name: "Alice"})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := svc.SaveExtraAttributes(ctx, acct.ID, identityX); err != nil {
				t.Errorf("SaveExtraAttributes: %v", err)
			}
		}()
	}
	wg.Wait()

	if len(bindings.rows) != 1 {
		t.Errorf("bindings = %d, want exactly 1 after concurrent binds", len(bindings.rows))
	}
}

func TestSaveExtraAttributes_InvalidIdentityID(t *testing.T) {
	svc, _, accounts, _ := newBridge(&fakeFrontend{}, &fakeAdmin{}, true)
	acct := accounts.add(&accountdomain.Account{Name: "Alice"})

	err := svc.SaveExtraAttributes(context.Background(), acct.ID, "not-a-uuid")
	if !errors.Is(err, ErrInvalidIdentityID) {
		t.Fatalf("err = %v, want ErrInvalidIdentityID", err)
	}
}

func TestInvalidateAllSessions_NoBinding(t *testing.T) {
	admin := &fakeAdmin{}
	svc, _, accounts, _ := newBridge(&fakeFrontend{}, admin, true)
	acct := accounts.add(&accountdomain.Account{Name: "Alice"})

	if err := svc.InvalidateAllSessions(context.Background(), acct.ID); err != nil {
		t.Fatalf("InvalidateAllSessions: %v", err)
	}
	if admin.deleteCalls != 0 {
		t.Errorf("provider calls = %d, want 0 for unbound account", admin.deleteCalls)
	}
}

func TestInvalidateAllSessions_FailureSwallowed(t *testing.T) {
	admin := &fakeAdmin{deleteErr: errors.New("admin endpoint down")}
	svc, bindings, accounts, _ := newBridge(&fakeFrontend{}, admin, true)
	acct := accounts.add(&accountdomain.Account{Name: "Alice"})
	_ = bindings.Bind(context.Background(), &bindingdomain.Binding{
		AccountID: acct.ID, IdentityID: identityX, ProviderHost: testHost,
	})

	if err := svc.InvalidateAllSessions(context.Background(), acct.ID); err != nil {
		t.Fatalf("revocation failure must be swallowed, got %v", err)
	}
	if admin.deleteCalls != 1 {
		t.Errorf("provider calls = %d, want 1 (no retry)", admin.deleteCalls)
	}
}

func TestDeauthenticate_FailureSwallowed(t *testing.T) {
	frontend := &fakeFrontend{logoutErr: errors.New("flow expired")}
	svc, _, _, _ := newBridge(frontend, &fakeAdmin{}, true)

	svc.Deauthenticate(context.Background(), "c=1")
	if frontend.logoutCnt != 1 {
		t.Errorf("logout calls = %d, want 1", frontend.logoutCnt)
	}
}

func TestSyncTraits_EmailAndRealName(t *testing.T) {
	admin := &fakeAdmin{identity: &provider.Identity{
		ID:     identityX,
		Traits: provider.Traits{Username: "Alice", Email: "new@example.org", Name: "Alice Ann"},
		VerifiableAddresses: []provider.VerifiableAddress{
			{Value: "new@example.org", Verified: true},
		},
	}}
	svc, bindings, accounts, _ := newBridge(&fakeFrontend{}, admin, true)
	acct := accounts.add(&accountdomain.Account{Name: "Alice", Email: "old@example.org", RealName: "Alice"})
	_ = bindings.Bind(context.Background(), &bindingdomain.Binding{
		AccountID: acct.ID, IdentityID: identityX, ProviderHost: testHost,
	})

	if err := svc.SyncTraits(context.Background(), acct.ID); err != nil {
		t.Fatalf("SyncTraits: %v", err)
	}
	got, _ := accounts.GetByID(context.Background(), acct.ID)
	if got.Email != "new@example.org" {
		t.Errorf("email = %q, want provider email", got.Email)
	}
	if !got.EmailConfirmed() {
		t.Error("verified provider address should confirm the email")
	}
	if got.RealName != "Alice Ann" {
		t.Errorf("real name = %q, want Alice Ann", got.RealName)
	}
}

func TestSyncTraits_ConfirmsPreviouslyUnverified(t *testing.T) {
	admin := &fakeAdmin{identity: &provider.Identity{
		ID:     identityX,
		Traits: provider.Traits{Username: "Alice", Email: "same@example.org"},
		VerifiableAddresses: []provider.VerifiableAddress{
			{Value: "same@example.org", Verified: true},
		},
	}}
	svc, bindings, accounts, _ := newBridge(&fakeFrontend{}, admin, true)
	acct := accounts.add(&accountdomain.Account{Name: "Alice", Email: "same@example.org"})
	_ = bindings.Bind(context.Background(), &bindingdomain.Binding{
		AccountID: acct.ID, IdentityID: identityX, ProviderHost: testHost,
	})

	if err := svc.SyncTraits(context.Background(), acct.ID); err != nil {
		t.Fatalf("SyncTraits: %v", err)
	}
	got, _ := accounts.GetByID(context.Background(), acct.ID)
	if !got.EmailConfirmed() {
		t.Error("newly verified address should confirm the stored email")
	}
}

func TestSyncTraits_NoBindingNoop(t *testing.T) {
	admin := &fakeAdmin{getErr: errors.New("must not be called")}
	svc, _, accounts, _ := newBridge(&fakeFrontend{}, admin, true)
	acct := accounts.add(&accountdomain.Account{Name: "Alice"})

	if err := svc.SyncTraits(context.Background(), acct.ID); err != nil {
		t.Fatalf("SyncTraits without binding should be a no-op, got %v", err)
	}
}

func TestAccountCreated_RecordsEquivalence(t *testing.T) {
	svc, _, accounts, checker := newBridge(&fakeFrontend{}, &fakeAdmin{}, true)
	acct := accounts.add(&accountdomain.Account{Name: "Alice"})

	if err := svc.AccountCreated(context.Background(), acct); err != nil {
		t.Fatalf("AccountCreated: %v", err)
	}
	if checker.recorded[acct.ID] != "Alice" {
		t.Errorf("recorded = %v, want Alice for account %d", checker.recorded, acct.ID)
	}
}

func TestAccountCreated_SkipsTemporary(t *testing.T) {
	svc, _, accounts, checker := newBridge(&fakeFrontend{}, &fakeAdmin{}, true)
	acct := accounts.add(&accountdomain.Account{Name: "~2024-1", Temporary: true})

	if err := svc.AccountCreated(context.Background(), acct); err != nil {
		t.Fatalf("AccountCreated: %v", err)
	}
	if len(checker.recorded) != 0 {
		t.Errorf("recorded = %v, want none for a temporary account", checker.recorded)
	}
}

func TestRename_PropagatesToProvider(t *testing.T) {
	admin := &fakeAdmin{}
	svc, bindings, accounts, checker := newBridge(&fakeFrontend{}, admin, true)
	acct := accounts.add(&accountdomain.Account{Name: "Before"})
	_ = bindings.Bind(context.Background(), &bindingdomain.Binding{
		AccountID: acct.ID, IdentityID: identityX, ProviderHost: testHost,
	})

	if err := svc.Rename(context.Background(), acct.ID, "After"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	got, _ := accounts.GetByID(context.Background(), acct.ID)
	if got.Name != "After" {
		t.Errorf("account name = %q, want After", got.Name)
	}
	if checker.recorded[acct.ID] != "After" {
		t.Error("rename must refresh the equivalence row")
	}
	if admin.patchedID != identityX || admin.patchedName != "After" {
		t.Errorf("patched identity = (%q, %q), want (%q, After)", admin.patchedID, admin.patchedName, identityX)
	}
}

func TestRename_PatchFailureSwallowed(t *testing.T) {
	admin := &fakeAdmin{patchErr: errors.New("conflict")}
	svc, bindings, accounts, _ := newBridge(&fakeFrontend{}, admin, true)
	acct := accounts.add(&accountdomain.Account{Name: "Before"})
	_ = bindings.Bind(context.Background(), &bindingdomain.Binding{
		AccountID: acct.ID, IdentityID: identityX, ProviderHost: testHost,
	})

	if err := svc.Rename(context.Background(), acct.ID, "After"); err != nil {
		t.Fatalf("patch failure must not fail the rename, got %v", err)
	}
}

func TestRename_TemporaryAccountSkipsEquivalence(t *testing.T) {
	admin := &fakeAdmin{}
	svc, _, accounts, checker := newBridge(&fakeFrontend{}, admin, true)
	acct := accounts.add(&accountdomain.Account{Name: "~2024-5", Temporary: true})

	if err := svc.Rename(context.Background(), acct.ID, "~2024-6"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	got, _ := accounts.GetByID(context.Background(), acct.ID)
	if got.Name != "~2024-6" {
		t.Errorf("account name = %q, want local rename to stand", got.Name)
	}
	if len(checker.recorded) != 0 {
		t.Errorf("recorded = %v, temporary accounts must not gain equivalence rows", checker.recorded)
	}
	if admin.patchedID != "" {
		t.Error("temporary account rename must not call the provider")
	}
}

func TestRename_NoBindingSkipsProvider(t *testing.T) {
	admin := &fakeAdmin{patchErr: errors.New("must not be called")}
	svc, _, accounts, _ := newBridge(&fakeFrontend{}, admin, true)
	acct := accounts.add(&accountdomain.Account{Name: "Before"})

	if err := svc.Rename(context.Background(), acct.ID, "After"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if admin.patchedID != "" {
		t.Error("unbound account rename must not call the provider")
	}
}
