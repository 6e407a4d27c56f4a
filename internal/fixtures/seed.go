package fixtures

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cmlabs-hris/attendance-client/internal/backend"
	"github.com/cmlabs-hris/attendance-client/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-client/internal/domain/user"
)

//go:embed seed.yaml
var defaultSeed []byte

// ==========================================
// SEED FILE FORMAT
// ==========================================

type Seed struct {
	DefaultPassword string           `yaml:"defaultPassword"`
	Users           []SeedUser       `yaml:"users"`
	Attendance      []SeedAttendance `yaml:"attendance"`
}

type SeedUser struct {
	ID         string `yaml:"id"`
	EmployeeID string `yaml:"employeeId"`
	Name       string `yaml:"name"`
	Email      string `yaml:"email"`
	Department string `yaml:"department"`
	Role       string `yaml:"role"`
	Password   string `yaml:"password"`
	Active     *bool  `yaml:"active"`
}

// SeedAttendance is a past day for one employee. Empty times are left unset.
type SeedAttendance struct {
	EmployeeID string `yaml:"employeeId"`
	DaysAgo    int    `yaml:"daysAgo"`
	ClockIn    string `yaml:"clockIn"`
	ClockOut   string `yaml:"clockOut"`
	BreakStart string `yaml:"breakStart"`
	BreakEnd   string `yaml:"breakEnd"`
}

// Load reads a seed file. An empty path loads the built-in seed.
func Load(path string) (*Seed, error) {
	raw := defaultSeed
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read fixtures %s: %w", path, err)
		}
		raw = b
	}
	return Parse(raw)
}

// Parse decodes and validates seed YAML. Unknown keys are rejected.
func Parse(raw []byte) (*Seed, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var seed Seed
	if err := dec.Decode(&seed); err != nil {
		return nil, fmt.Errorf("failed to decode fixtures: %w", err)
	}
	if err := seed.Validate(); err != nil {
		return nil, err
	}
	return &seed, nil
}

func (s *Seed) Validate() error {
	seen := make(map[string]bool, len(s.Users))
	for i, u := range s.Users {
		if u.EmployeeID == "" || u.Name == "" {
			return fmt.Errorf("fixtures: user %d needs employeeId and name", i)
		}
		if seen[u.EmployeeID] {
			return fmt.Errorf("fixtures: duplicate employeeId %s", u.EmployeeID)
		}
		seen[u.EmployeeID] = true
		if !user.Role(u.Role).Valid() {
			return fmt.Errorf("fixtures: user %s has invalid role %q", u.EmployeeID, u.Role)
		}
		if u.Password == "" && s.DefaultPassword == "" {
			return fmt.Errorf("fixtures: user %s has no password and no defaultPassword is set", u.EmployeeID)
		}
	}
	for i, a := range s.Attendance {
		if !seen[a.EmployeeID] {
			return fmt.Errorf("fixtures: attendance %d references unknown employee %s", i, a.EmployeeID)
		}
		if a.DaysAgo < 1 {
			return fmt.Errorf("fixtures: attendance %d must be in the past (daysAgo >= 1)", i)
		}
	}
	return nil
}

// ==========================================
// APPLY
// ==========================================

// Apply creates the seeded accounts and attendance days. today anchors daysAgo.
func (s *Seed) Apply(ctx context.Context, users user.Repository, records attendance.Repository, workday attendance.Workday, today time.Time) error {
	ids := make(map[string]user.User, len(s.Users))
	for _, su := range s.Users {
		password := su.Password
		if password == "" {
			password = s.DefaultPassword
		}
		hash, err := backend.HashPassword(password)
		if err != nil {
			return err
		}

		u := user.User{
			ID:         su.ID,
			EmployeeID: su.EmployeeID,
			Name:       su.Name,
			Email:      su.Email,
			Department: su.Department,
			Role:       user.Role(su.Role),
			IsActive:   su.Active == nil || *su.Active,
		}
		if err := users.Create(ctx, user.Account{User: u, PasswordHash: hash}); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", su.EmployeeID, err)
		}

		created, err := users.GetByEmployeeID(ctx, su.EmployeeID)
		if err != nil {
			return err
		}
		ids[su.EmployeeID] = created.User
	}

	for _, sa := range s.Attendance {
		u := ids[sa.EmployeeID]
		day := today.AddDate(0, 0, -sa.DaysAgo)
		rec, err := sa.record(u, day, workday)
		if err != nil {
			return err
		}
		if _, err := records.Save(ctx, rec); err != nil {
			return fmt.Errorf("failed to seed attendance for %s: %w", sa.EmployeeID, err)
		}
	}

	slog.Info("Fixtures loaded", "users", len(s.Users), "attendance", len(s.Attendance))
	return nil
}

func (sa SeedAttendance) record(u user.User, day time.Time, workday attendance.Workday) (attendance.Record, error) {
	rec := attendance.Record{UserID: u.ID, UserName: u.Name, Date: workday.Date(day), Status: attendance.StatusAbsent}

	var err error
	if rec.ClockIn, err = clockOn(workday, day, sa.ClockIn); err != nil {
		return rec, err
	}
	if rec.ClockOut, err = clockOn(workday, day, sa.ClockOut); err != nil {
		return rec, err
	}
	if rec.BreakStart, err = clockOn(workday, day, sa.BreakStart); err != nil {
		return rec, err
	}
	if rec.BreakEnd, err = clockOn(workday, day, sa.BreakEnd); err != nil {
		return rec, err
	}

	if rec.ClockIn != nil {
		rec.Status = workday.ClassifyClockIn(*rec.ClockIn)
	}
	if rec.Closed() {
		if rec.Status == attendance.StatusPresent && workday.LeftEarly(*rec.ClockOut) {
			rec.Status = attendance.StatusEarlyLeave
		}
		hours := backend.RoundHours(attendance.ComputeWorkingTime(&rec, *rec.ClockOut).Hours())
		rec.TotalHours = &hours
	}
	return rec, nil
}

func clockOn(workday attendance.Workday, day time.Time, hhmm string) (*time.Time, error) {
	if hhmm == "" {
		return nil, nil
	}
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return nil, fmt.Errorf("fixtures: invalid time %q: %w", hhmm, err)
	}
	local := day.In(workday.Location)
	v := time.Date(local.Year(), local.Month(), local.Day(), t.Hour(), t.Minute(), 0, 0, workday.Location)
	return &v, nil
}
