package setup

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/kubestro/core/pkg/user"
)

// AdminUsername is the account the boot probe looks for.
const AdminUsername = "admin"

// Status is the install state of the instance.
type Status int

const (
	// StatusNotReady means Initialize has not finished yet.
	StatusNotReady Status = iota
	// StatusNotInstalled means no admin account exists and none could be
	// auto-provisioned.
	StatusNotInstalled
	// StatusInstalled means the admin account exists.
	StatusInstalled
)

// String implements fmt.Stringer for logs and the status endpoint.
func (s Status) String() string {
	switch s {
	case StatusNotInstalled:
		return "NotInstalled"
	case StatusInstalled:
		return "Installed"
	default:
		return "NotReady"
	}
}

// ErrAlreadyInstalled is returned by Complete once an admin account exists.
var ErrAlreadyInstalled = errors.New("setup: already installed")

// Registrar creates local accounts. Satisfied by *auth.Service.
type Registrar interface {
	Register(ctx context.Context, username, email, password string) (*user.User, error)
}

// Manager holds the install status and runs the boot probe.
//
// The status lives behind a mutex in process memory only. It is read on
// every gated request, so readers must not block behind the boot probe;
// the lock is never held across I/O.
type Manager struct {
	repo      user.Repository
	registrar Registrar

	adminEmail    string
	adminPassword string

	log *logrus.Logger

	status atomicStatus
}

// NewManager creates a Manager in the NotReady state. adminEmail and
// adminPassword feed the auto-provisioning path of Initialize; an empty
// password disables it.
func NewManager(repo user.Repository, registrar Registrar, adminEmail, adminPassword string, log *logrus.Logger) *Manager {
	if log == nil {
		log = logrus.New()
	}
	return &Manager{
		repo:          repo,
		registrar:     registrar,
		adminEmail:    adminEmail,
		adminPassword: adminPassword,
		log:           log,
	}
}

// Status reports the current install state.
func (m *Manager) Status() Status {
	return m.status.load()
}

// Initialize decides the install state at boot.
//
// An existing admin account means Installed. Without one, a configured
// admin password provisions the account and the instance comes up
// Installed; otherwise it stays NotInstalled until the setup wizard runs.
func (m *Manager) Initialize(ctx context.Context) error {
	existing, err := m.repo.FindByUsername(ctx, AdminUsername)
	if err != nil {
		return fmt.Errorf("probing admin account: %w", err)
	}
	if existing != nil {
		m.status.store(StatusInstalled)
		m.log.Debug("admin account present, instance installed")
		return nil
	}

	if m.adminPassword == "" {
		m.status.store(StatusNotInstalled)
		m.log.Info("no admin account, waiting for setup")
		return nil
	}

	if _, err := m.registrar.Register(ctx, AdminUsername, m.adminEmail, m.adminPassword); err != nil {
		return fmt.Errorf("provisioning admin account: %w", err)
	}
	m.status.store(StatusInstalled)
	m.log.WithField("email", m.adminEmail).Info("admin account provisioned")
	return nil
}

// Complete finishes the setup wizard: it registers the reserved admin
// account with the wizard's email and password and flips the status to
// Installed. The username is always AdminUsername, so the boot probe
// finds the account on the next start. Returns ErrAlreadyInstalled
// unless the instance is NotInstalled.
func (m *Manager) Complete(ctx context.Context, email, password string) (*user.User, error) {
	if m.status.load() != StatusNotInstalled {
		return nil, ErrAlreadyInstalled
	}
	u, err := m.registrar.Register(ctx, AdminUsername, email, password)
	if err != nil {
		return nil, err
	}
	m.status.store(StatusInstalled)
	m.log.WithField("email", email).Info("setup completed")
	return u, nil
}

type atomicStatus struct {
	mu sync.RWMutex
	s  Status
}

func (a *atomicStatus) load() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.s
}

func (a *atomicStatus) store(s Status) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.s = s
}
