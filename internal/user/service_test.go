package user_test

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/auth"
	"github.com/frahmantamala/leave-management/internal/leave"
	"github.com/frahmantamala/leave-management/internal/user"
)

func TestUserService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Service Suite")
}

// Mock repository for testing
type mockUserRepository struct {
	users     map[int64]*user.User
	listError error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[int64]*user.User)}
}

func (m *mockUserRepository) add(u *user.User) {
	m.users[u.ID] = u
}

func (m *mockUserRepository) GetByID(id int64) (*user.User, error) {
	u, exists := m.users[id]
	if !exists {
		return nil, errors.New("user not found")
	}
	return u, nil
}

func subordinateOf(u *user.User) *user.Subordinate {
	return &user.Subordinate{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          u.Role,
		Department:    u.Department,
		VacationTotal: u.VacationTotal,
		VacationUsed:  u.VacationUsed,
	}
}

func (m *mockUserRepository) ListByDepartment(department string, excludeID int64, search string) ([]*user.Subordinate, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	out := []*user.Subordinate{}
	for _, u := range m.users {
		if u.Department != department || u.ID == excludeID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(u.Name), strings.ToLower(search)) {
			continue
		}
		out = append(out, subordinateOf(u))
	}
	return out, nil
}

func (m *mockUserRepository) ListAll(excludeID int64, search string) ([]*user.Subordinate, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	out := []*user.Subordinate{}
	for _, u := range m.users {
		if u.ID == excludeID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(u.Name), strings.ToLower(search)) {
			continue
		}
		out = append(out, subordinateOf(u))
	}
	return out, nil
}

func (m *mockUserRepository) UpdateBalances(id int64, balances map[leave.Type]user.Balance) error {
	u, exists := m.users[id]
	if !exists {
		return internal.ErrUserNotFound
	}
	for leaveType, balance := range balances {
		switch leaveType {
		case leave.TypeVacation:
			u.VacationTotal, u.VacationUsed = balance.Total, balance.Used
		case leave.TypeSick:
			u.SickTotal, u.SickUsed = balance.Total, balance.Used
		}
	}
	return nil
}

var _ = Describe("UserService", func() {
	var (
		userService *user.Service
		mockRepo    *mockUserRepository
		logger      *slog.Logger
		manager     *auth.SessionUser
		admin       *auth.SessionUser
		employee    *auth.SessionUser
	)

	names := func(subs []*user.Subordinate) []string {
		out := make([]string, len(subs))
		for i, s := range subs {
			out[i] = s.Name
		}
		return out
	}

	BeforeEach(func() {
		mockRepo = newMockUserRepository()
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		userService = user.NewService(mockRepo, logger)

		manager = &auth.SessionUser{ID: 10, Name: "Mika Manager", Role: auth.RoleManager, Department: "Engineering"}
		admin = &auth.SessionUser{ID: 100, Name: "Alice Admin", Role: auth.RoleSuperAdmin, Department: "Executive"}
		employee = &auth.SessionUser{ID: 1, Name: "Devi Developer", Role: auth.RoleEmployee, Department: "Engineering"}

		mockRepo.add(&user.User{ID: 1, Name: "Devi Developer", Department: "Engineering", Role: "Employee", VacationTotal: 15})
		mockRepo.add(&user.User{ID: 2, Name: "Qiana Tester", Department: "Engineering", Role: "Employee", VacationTotal: 15})
		mockRepo.add(&user.User{ID: 3, Name: "Andi Accountant", Department: "Finance", Role: "Employee", VacationTotal: 15})
		mockRepo.add(&user.User{ID: 10, Name: "Mika Manager", Department: "Engineering", Role: "Manager", VacationTotal: 15})
		mockRepo.add(&user.User{ID: 100, Name: "Alice Admin", Department: "Executive", Role: "Super Admin", VacationTotal: 15})
	})

	Describe("GetProfile", func() {
		It("should return the account with its ledger", func() {
			profile, err := userService.GetProfile(1)

			Expect(err).ToNot(HaveOccurred())
			Expect(profile.Name).To(Equal("Devi Developer"))
			Expect(profile.Ledger()[leave.TypeVacation].Remaining()).To(Equal(15))
		})

		It("should return not found for a missing user", func() {
			_, err := userService.GetProfile(999)

			Expect(err).To(Equal(internal.ErrUserNotFound))
		})

		It("should project the full typed ledger with remaining counts", func() {
			profile, err := userService.GetProfile(1)
			Expect(err).ToNot(HaveOccurred())

			profile.VacationUsed = 6
			dto := user.NewProfileDTO(profile)

			Expect(dto.Balances).To(HaveLen(len(leave.Types())))
			Expect(dto.Balances[leave.TypeVacation]).To(Equal(user.BalanceView{Total: 15, Used: 6, Remaining: 9}))
			Expect(dto.Balances[leave.TypeMaternity].Remaining).To(Equal(dto.Balances[leave.TypeMaternity].Total))
		})
	})

	Describe("Subordinates", func() {
		It("should scope a manager to their own department, excluding themselves", func() {
			subs, err := userService.Subordinates(manager, "")

			Expect(err).ToNot(HaveOccurred())
			Expect(names(subs)).To(ConsistOf("Devi Developer", "Qiana Tester"))
		})

		It("should never leak other departments through the search filter", func() {
			subs, err := userService.Subordinates(manager, "Andi")

			Expect(err).ToNot(HaveOccurred())
			Expect(subs).To(BeEmpty())
		})

		It("should narrow within the department with the search filter", func() {
			subs, err := userService.Subordinates(manager, "devi")

			Expect(err).ToNot(HaveOccurred())
			Expect(names(subs)).To(ConsistOf("Devi Developer"))
		})

		It("should give a manager without a department nobody", func() {
			lost := &auth.SessionUser{ID: 11, Role: auth.RoleManager, Department: ""}

			subs, err := userService.Subordinates(lost, "")

			Expect(err).ToNot(HaveOccurred())
			Expect(subs).To(BeEmpty())
		})

		It("should give a super admin everyone but themselves", func() {
			subs, err := userService.Subordinates(admin, "")

			Expect(err).ToNot(HaveOccurred())
			Expect(names(subs)).To(ConsistOf("Devi Developer", "Qiana Tester", "Andi Accountant", "Mika Manager"))
		})

		It("should refuse an employee", func() {
			_, err := userService.Subordinates(employee, "")

			Expect(err).To(Equal(internal.ErrUnauthorizedAccess))
		})
	})

	Describe("UpdateBalances", func() {
		It("should rewrite counter pairs for a super admin", func() {
			updated, err := userService.UpdateBalances(admin, 1, user.UpdateBalancesDTO{
				Balances: map[string]user.Balance{
					string(leave.TypeVacation): {Total: 20, Used: 3},
				},
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.VacationTotal).To(Equal(20))
			Expect(updated.VacationUsed).To(Equal(3))
		})

		It("should refuse a manager", func() {
			_, err := userService.UpdateBalances(manager, 1, user.UpdateBalancesDTO{
				Balances: map[string]user.Balance{
					string(leave.TypeVacation): {Total: 20, Used: 0},
				},
			})

			Expect(err).To(Equal(internal.ErrUnauthorizedAccess))
		})

		It("should reject an unknown leave type label", func() {
			_, err := userService.UpdateBalances(admin, 1, user.UpdateBalancesDTO{
				Balances: map[string]user.Balance{"Sabbatical": {Total: 5, Used: 0}},
			})

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("unknown leave type"))
		})

		It("should reject used greater than total", func() {
			_, err := userService.UpdateBalances(admin, 1, user.UpdateBalancesDTO{
				Balances: map[string]user.Balance{
					string(leave.TypeVacation): {Total: 5, Used: 6},
				},
			})

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("must not exceed total"))
		})

		It("should return not found for a missing target", func() {
			_, err := userService.UpdateBalances(admin, 999, user.UpdateBalancesDTO{
				Balances: map[string]user.Balance{
					string(leave.TypeVacation): {Total: 20, Used: 0},
				},
			})

			Expect(err).To(Equal(internal.ErrUserNotFound))
		})
	})
})
