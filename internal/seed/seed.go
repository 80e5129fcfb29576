// Package seed installs the default permissions, system roles and first admin.
package seed

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/lms-admin-api/internal/models"
)

var resources = []string{"admin", "role", "student", "permission", "course", "module", "auditlog", "userlog"}

var actions = []string{"create", "read", "update", "delete"}

type roleSeed struct {
	Name        string
	Description string
	Permissions []string
}

// SuperAdminRole is granted every seeded permission.
const SuperAdminRole = "Super Admin"

var roleSeeds = []roleSeed{
	{Name: SuperAdminRole, Description: "Full system access with all permissions"},
	{
		Name:        "Admin",
		Description: "Administrative access with limited permissions",
		Permissions: []string{
			"admin.read", "role.read", "permission.read",
			"student.create", "student.read", "student.update", "student.delete",
			"course.create", "course.read", "course.update", "course.delete",
			"module.create", "module.read", "module.update", "module.delete",
			"auditlog.read", "userlog.read",
		},
	},
	{
		Name:        "Manager",
		Description: "Can manage students and view system data",
		Permissions: []string{
			"student.create", "student.read", "student.update",
			"role.read", "permission.read", "course.read", "module.read",
		},
	},
	{
		Name:        "Viewer",
		Description: "Read-only access to system data",
		Permissions: []string{"admin.read", "role.read", "student.read", "permission.read", "course.read", "module.read"},
	},
}

type permissionStore interface {
	List(ctx context.Context, filter models.PermissionFilter) ([]models.Permission, int, error)
	Create(ctx context.Context, perm *models.Permission) error
}

type roleStore interface {
	List(ctx context.Context, filter models.RoleFilter) ([]models.Role, int, error)
	Create(ctx context.Context, role *models.Role) error
}

type adminStore interface {
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	Create(ctx context.Context, admin *models.Admin) error
}

// AdminAccount describes the bootstrap admin.
type AdminAccount struct {
	Name     string
	Email    string
	Password string
}

// Report counts what a run created.
type Report struct {
	Permissions int
	Roles       int
	Admin       bool
}

// Seeder creates missing seed records and leaves existing ones untouched.
type Seeder struct {
	permissions permissionStore
	roles       roleStore
	admins      adminStore
	saltRounds  int
	logger      *zap.Logger
}

// New constructs a Seeder.
func New(permissions permissionStore, roles roleStore, admins adminStore, saltRounds int, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{permissions: permissions, roles: roles, admins: admins, saltRounds: saltRounds, logger: logger}
}

// Run seeds permissions, then roles, then the admin account when account.Email is set.
func (s *Seeder) Run(ctx context.Context, account AdminAccount) (Report, error) {
	var report Report

	permIDs, created, err := s.seedPermissions(ctx)
	if err != nil {
		return report, err
	}
	report.Permissions = created

	roleIDs, created, err := s.seedRoles(ctx, permIDs)
	if err != nil {
		return report, err
	}
	report.Roles = created

	if strings.TrimSpace(account.Email) == "" {
		return report, nil
	}
	superAdmin := roleIDs[SuperAdminRole]
	report.Admin, err = s.seedAdmin(ctx, account, superAdmin)
	return report, err
}

func (s *Seeder) seedPermissions(ctx context.Context) (map[string]string, int, error) {
	existing, err := s.existingPermissions(ctx)
	if err != nil {
		return nil, 0, err
	}
	created := 0
	for _, resource := range resources {
		for _, action := range actions {
			name := resource + "." + action
			if _, ok := existing[name]; ok {
				continue
			}
			description := fmt.Sprintf("%s %s records", strings.ToUpper(action[:1])+action[1:], resource)
			perm := &models.Permission{Name: name, Resource: resource, Action: action, Description: &description}
			if err := s.permissions.Create(ctx, perm); err != nil {
				return nil, created, fmt.Errorf("seed permission %s: %w", name, err)
			}
			existing[name] = perm.ID
			created++
		}
	}
	s.logger.Info("permissions seeded", zap.Int("created", created), zap.Int("total", len(existing)))
	return existing, created, nil
}

func (s *Seeder) seedRoles(ctx context.Context, permIDs map[string]string) (map[string]string, int, error) {
	existing, err := s.existingRoles(ctx)
	if err != nil {
		return nil, 0, err
	}
	created := 0
	for _, seed := range roleSeeds {
		if _, ok := existing[seed.Name]; ok {
			continue
		}
		names := seed.Permissions
		if seed.Name == SuperAdminRole {
			names = allPermissionNames()
		}
		ids := make([]string, 0, len(names))
		for _, name := range names {
			if id, ok := permIDs[name]; ok {
				ids = append(ids, id)
			}
		}
		description := seed.Description
		role := &models.Role{Name: seed.Name, Description: &description, PermissionIDs: ids, Kind: models.RoleKindSystem}
		if err := s.roles.Create(ctx, role); err != nil {
			return nil, created, fmt.Errorf("seed role %s: %w", seed.Name, err)
		}
		existing[seed.Name] = role.ID
		created++
	}
	s.logger.Info("roles seeded", zap.Int("created", created))
	return existing, created, nil
}

func (s *Seeder) seedAdmin(ctx context.Context, account AdminAccount, roleID string) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(account.Email))
	taken, err := s.admins.ExistsByEmail(ctx, email, "")
	if err != nil {
		return false, fmt.Errorf("check admin: %w", err)
	}
	if taken {
		s.logger.Info("admin already present", zap.String("email", email))
		return false, nil
	}
	if len(account.Password) < 6 {
		return false, fmt.Errorf("admin password must be at least 6 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(account.Password), s.saltRounds)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}
	name := account.Name
	if name == "" {
		name = SuperAdminRole
	}
	admin := &models.Admin{Name: name, Email: email, PasswordHash: string(hash), IsActive: true}
	if roleID != "" {
		admin.RoleID = &roleID
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	s.logger.Info("admin seeded", zap.String("email", email))
	return true, nil
}

func (s *Seeder) existingPermissions(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string)
	for page := 1; ; page++ {
		q := models.ListQuery{Page: page, Limit: models.MaxLimit, SortBy: "name", SortOrder: "asc"}
		items, total, err := s.permissions.List(ctx, models.PermissionFilter{ListQuery: q})
		if err != nil {
			return nil, fmt.Errorf("list permissions: %w", err)
		}
		for _, p := range items {
			out[p.Name] = p.ID
		}
		if len(items) == 0 || page*models.MaxLimit >= total {
			return out, nil
		}
	}
}

func (s *Seeder) existingRoles(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string)
	for page := 1; ; page++ {
		q := models.ListQuery{Page: page, Limit: models.MaxLimit, SortBy: "name", SortOrder: "asc"}
		items, total, err := s.roles.List(ctx, models.RoleFilter{ListQuery: q})
		if err != nil {
			return nil, fmt.Errorf("list roles: %w", err)
		}
		for _, r := range items {
			out[r.Name] = r.ID
		}
		if len(items) == 0 || page*models.MaxLimit >= total {
			return out, nil
		}
	}
}

func allPermissionNames() []string {
	names := make([]string, 0, len(resources)*len(actions))
	for _, resource := range resources {
		for _, action := range actions {
			names = append(names, resource+"."+action)
		}
	}
	return names
}
