package service

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/lms-admin-api/internal/models"
)

type memAdmins struct {
	items map[string]*models.Admin
}

func newMemAdmins(admins ...*models.Admin) *memAdmins {
	m := &memAdmins{items: make(map[string]*models.Admin)}
	for _, a := range admins {
		m.items[a.ID] = a
	}
	return m
}

func (m *memAdmins) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	for _, a := range m.items {
		if strings.EqualFold(a.Email, email) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memAdmins) FindByID(ctx context.Context, id string) (*models.Admin, error) {
	if a, ok := m.items[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memAdmins) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	for id, a := range m.items {
		if strings.EqualFold(a.Email, email) && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memAdmins) List(ctx context.Context, filter models.AdminFilter) ([]models.Admin, int, error) {
	out := make([]models.Admin, 0, len(m.items))
	for _, a := range m.items {
		out = append(out, *a)
	}
	return out, len(out), nil
}

func (m *memAdmins) Create(ctx context.Context, admin *models.Admin) error {
	if admin.ID == "" {
		admin.ID = uuid.NewString()
	}
	admin.Email = strings.ToLower(admin.Email)
	cp := *admin
	m.items[admin.ID] = &cp
	return nil
}

func (m *memAdmins) Update(ctx context.Context, admin *models.Admin) error {
	if _, ok := m.items[admin.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *admin
	m.items[admin.ID] = &cp
	return nil
}

func (m *memAdmins) UpdatePassword(ctx context.Context, id, hash string) error {
	a, ok := m.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	a.PasswordHash = hash
	return nil
}

func (m *memAdmins) Delete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

type memStudents struct {
	items map[string]*models.Student
}

func newMemStudents(students ...*models.Student) *memStudents {
	m := &memStudents{items: make(map[string]*models.Student)}
	for _, s := range students {
		m.items[s.ID] = s
	}
	return m
}

func (m *memStudents) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	for _, s := range m.items {
		if strings.EqualFold(s.Email, email) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memStudents) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.items[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memStudents) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	for id, s := range m.items {
		if strings.EqualFold(s.Email, email) && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStudents) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	out := make([]models.Student, 0, len(m.items))
	for _, s := range m.items {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (m *memStudents) ListByEnrollmentYear(ctx context.Context, year int, q models.ListQuery) ([]models.Student, int, error) {
	out := make([]models.Student, 0)
	for _, s := range m.items {
		if s.EnrollmentYear == year {
			out = append(out, *s)
		}
	}
	return out, len(out), nil
}

func (m *memStudents) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	cp := *student
	m.items[student.ID] = &cp
	return nil
}

func (m *memStudents) Update(ctx context.Context, student *models.Student) error {
	if _, ok := m.items[student.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *student
	m.items[student.ID] = &cp
	return nil
}

func (m *memStudents) UpdatePassword(ctx context.Context, id, hash string) error {
	s, ok := m.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	s.PasswordHash = hash
	return nil
}

func (m *memStudents) Delete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

type memRoles struct {
	items map[string]*models.Role
}

func newMemRoles(roles ...*models.Role) *memRoles {
	m := &memRoles{items: make(map[string]*models.Role)}
	for _, r := range roles {
		m.items[r.ID] = r
	}
	return m
}

func (m *memRoles) FindByID(ctx context.Context, id string) (*models.Role, error) {
	if r, ok := m.items[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memRoles) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	for id, r := range m.items {
		if r.Name == name && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRoles) List(ctx context.Context, filter models.RoleFilter) ([]models.Role, int, error) {
	out := make([]models.Role, 0, len(m.items))
	for _, r := range m.items {
		out = append(out, *r)
	}
	return out, len(out), nil
}

func (m *memRoles) ListNames(ctx context.Context) ([]models.RoleName, error) {
	out := make([]models.RoleName, 0, len(m.items))
	for _, r := range m.items {
		out = append(out, models.RoleName{ID: r.ID, Name: r.Name})
	}
	return out, nil
}

func (m *memRoles) Create(ctx context.Context, role *models.Role) error {
	if role.ID == "" {
		role.ID = uuid.NewString()
	}
	cp := *role
	m.items[role.ID] = &cp
	return nil
}

func (m *memRoles) Update(ctx context.Context, role *models.Role) error {
	if _, ok := m.items[role.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *role
	m.items[role.ID] = &cp
	return nil
}

func (m *memRoles) Delete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

type memPermissions struct {
	items map[string]*models.Permission
}

func newMemPermissions(perms ...*models.Permission) *memPermissions {
	m := &memPermissions{items: make(map[string]*models.Permission)}
	for _, p := range perms {
		m.items[p.ID] = p
	}
	return m
}

func (m *memPermissions) FindByID(ctx context.Context, id string) (*models.Permission, error) {
	if p, ok := m.items[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memPermissions) FindByIDs(ctx context.Context, ids []string) ([]models.Permission, error) {
	out := make([]models.Permission, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.items[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memPermissions) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	for id, p := range m.items {
		if p.Name == name && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memPermissions) List(ctx context.Context, filter models.PermissionFilter) ([]models.Permission, int, error) {
	out := make([]models.Permission, 0, len(m.items))
	for _, p := range m.items {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (m *memPermissions) Create(ctx context.Context, perm *models.Permission) error {
	if perm.ID == "" {
		perm.ID = uuid.NewString()
	}
	cp := *perm
	m.items[perm.ID] = &cp
	return nil
}

func (m *memPermissions) Update(ctx context.Context, perm *models.Permission) error {
	if _, ok := m.items[perm.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *perm
	m.items[perm.ID] = &cp
	return nil
}

func (m *memPermissions) Delete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

type captureRecorder struct {
	mu     sync.Mutex
	audits []models.AuditLog
	logins []models.UserLog
}

func (c *captureRecorder) RecordAudit(entry models.AuditLog) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.audits = append(c.audits, entry)
}

func (c *captureRecorder) RecordLogin(entry models.UserLog) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logins = append(c.logins, entry)
}

type sentCode struct {
	email string
	code  string
	ttl   time.Duration
}

type captureNotifier struct {
	sent []sentCode
}

func (c *captureNotifier) SendOTP(email, code string, ttl time.Duration) {
	c.sent = append(c.sent, sentCode{email: email, code: code, ttl: ttl})
}
