package leave_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/auth"
	"github.com/frahmantamala/leave-management/internal/leave"
)

func TestLeaveService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Leave Service Suite")
}

// Mock repository for testing
type mockBalance struct {
	Total int
	Used  int
}

type mockLeaveRepository struct {
	leaves      map[int64]*leave.LeaveRequest
	balances    map[leave.Type]*mockBalance
	nextID      int64
	createError error
	getError    error
	updateError error
	txError     error
}

func newMockLeaveRepository() *mockLeaveRepository {
	return &mockLeaveRepository{
		leaves: make(map[int64]*leave.LeaveRequest),
		balances: map[leave.Type]*mockBalance{
			leave.TypeVacation: {Total: 15, Used: 0},
			leave.TypeSick:     {Total: 15, Used: 0},
		},
		nextID: 1,
	}
}

func (m *mockLeaveRepository) Create(lr *leave.LeaveRequest) error {
	if m.createError != nil {
		return m.createError
	}
	lr.ID = m.nextID
	m.nextID++
	lr.CreatedAt = time.Now()
	lr.UpdatedAt = time.Now()
	m.leaves[lr.ID] = lr
	return nil
}

func (m *mockLeaveRepository) GetByID(id int64) (*leave.LeaveRequest, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	lr, exists := m.leaves[id]
	if !exists {
		return nil, errors.New("leave request not found")
	}
	copied := *lr
	return &copied, nil
}

func (m *mockLeaveRepository) GetByUserID(userID int64, limit, offset int) ([]*leave.LeaveRequest, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	var out []*leave.LeaveRequest
	for _, lr := range m.leaves {
		if lr.UserID == userID {
			out = append(out, lr)
		}
	}
	return out, nil
}

func (m *mockLeaveRepository) GetByStatus(status leave.Status, limit, offset int) ([]*leave.LeaveRequest, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	var out []*leave.LeaveRequest
	for _, lr := range m.leaves {
		if lr.Status == status {
			out = append(out, lr)
		}
	}
	return out, nil
}

func (m *mockLeaveRepository) Update(lr *leave.LeaveRequest) error {
	if m.updateError != nil {
		return m.updateError
	}
	lr.UpdatedAt = time.Now()
	m.leaves[lr.ID] = lr
	return nil
}

func (m *mockLeaveRepository) UpdateAction(id int64, from, to leave.Status, comments *string, approverID *int64) error {
	if m.updateError != nil {
		return m.updateError
	}
	lr, exists := m.leaves[id]
	if !exists || lr.Status != from {
		return internal.ErrInvalidLeaveStatus
	}
	lr.Status = to
	lr.ManagerComments = comments
	lr.ApproverID = approverID
	lr.UpdatedAt = time.Now()
	return nil
}

// ApproveWithDeduction mirrors the real transaction: either the status
// flip and the counter increment both land, or neither does.
func (m *mockLeaveRepository) ApproveWithDeduction(id, userID int64, leaveType leave.Type, days int, comments *string, approverID *int64) error {
	if m.txError != nil {
		return m.txError
	}
	lr, exists := m.leaves[id]
	if !exists || lr.Status != leave.StatusEndorsed {
		return internal.ErrInvalidLeaveStatus
	}
	bal, ok := m.balances[leaveType]
	if !ok {
		return internal.ErrUnknownLeaveType
	}
	if bal.Total-bal.Used < days {
		return internal.NewInsufficientBalanceError(string(leaveType), bal.Total-bal.Used, days)
	}
	bal.Used += days
	lr.Status = leave.StatusTMApproved
	lr.ManagerComments = comments
	lr.ApproverID = approverID
	lr.UpdatedAt = time.Now()
	return nil
}

// Mock publisher for testing
type mockPublisher struct {
	notifications []leave.Status
}

func (m *mockPublisher) LeaveStatusChanged(requestID, userID int64, status leave.Status, comments string) {
	m.notifications = append(m.notifications, status)
}

var _ = Describe("LeaveService", func() {
	var (
		leaveService  *leave.Service
		mockRepo      *mockLeaveRepository
		mockPub       *mockPublisher
		logger        *slog.Logger
		employee      *auth.SessionUser
		otherEmployee *auth.SessionUser
		manager       *auth.SessionUser
		superAdmin    *auth.SessionUser
	)

	validDTO := func() leave.CreateLeaveDTO {
		return leave.CreateLeaveDTO{
			LeaveType: string(leave.TypeVacation),
			StartDate: time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC),
			Reason:    "family trip out of town",
		}
	}

	fileRequest := func(userID int64) *leave.LeaveRequest {
		lr, err := leaveService.CreateLeave(userID, validDTO())
		Expect(err).ToNot(HaveOccurred())
		return lr
	}

	endorse := func(id int64) *leave.LeaveRequest {
		lr, err := leaveService.ApplyAction(id, leave.ActionDTO{Action: string(leave.ActionEndorse)}, manager)
		Expect(err).ToNot(HaveOccurred())
		return lr
	}

	BeforeEach(func() {
		mockRepo = newMockLeaveRepository()
		mockPub = &mockPublisher{}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		leaveService = leave.NewService(mockRepo, mockPub, logger)

		employee = &auth.SessionUser{ID: 1, Role: auth.RoleEmployee, Department: "Engineering"}
		otherEmployee = &auth.SessionUser{ID: 2, Role: auth.RoleEmployee, Department: "Engineering"}
		manager = &auth.SessionUser{ID: 10, Role: auth.RoleManager, Department: "Engineering"}
		superAdmin = &auth.SessionUser{ID: 100, Role: auth.RoleSuperAdmin, Department: "Executive"}
	})

	Describe("CreateLeave", func() {
		It("should file the request in pending status", func() {
			lr, err := leaveService.CreateLeave(employee.ID, validDTO())

			Expect(err).ToNot(HaveOccurred())
			Expect(lr.Status).To(Equal(leave.StatusPending))
			Expect(lr.UserID).To(Equal(employee.ID))
			Expect(lr.ID).To(BeNumerically(">", 0))
		})

		It("should reject an unknown leave type", func() {
			dto := validDTO()
			dto.LeaveType = "Sabbatical"

			_, err := leaveService.CreateLeave(employee.ID, dto)

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("should reject a reason shorter than 10 characters", func() {
			dto := validDTO()
			dto.Reason = "too short"

			_, err := leaveService.CreateLeave(employee.ID, dto)

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("reason"))
		})

		It("should reject an end date before the start date", func() {
			dto := validDTO()
			dto.EndDate = dto.StartDate.AddDate(0, 0, -1)

			_, err := leaveService.CreateLeave(employee.ID, dto)

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("end date"))
		})

		It("should not check the remaining balance when filing", func() {
			mockRepo.balances[leave.TypeVacation].Used = 15

			lr, err := leaveService.CreateLeave(employee.ID, validDTO())

			Expect(err).ToNot(HaveOccurred())
			Expect(lr.Status).To(Equal(leave.StatusPending))
		})
	})

	Describe("Duration", func() {
		It("should count a same-day request as one day", func() {
			day := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
			Expect(leave.Duration(day, day)).To(Equal(1))
		})

		It("should count both endpoints as leave days", func() {
			start := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
			end := time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC)
			Expect(leave.Duration(start, end)).To(Equal(6))
		})

		It("should tolerate swapped endpoints", func() {
			start := time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC)
			end := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
			Expect(leave.Duration(start, end)).To(Equal(6))
		})
	})

	Describe("GetLeaveByID", func() {
		It("should let the owner read their own request", func() {
			lr := fileRequest(employee.ID)

			got, err := leaveService.GetLeaveByID(lr.ID, employee)

			Expect(err).ToNot(HaveOccurred())
			Expect(got.ID).To(Equal(lr.ID))
		})

		It("should refuse another employee", func() {
			lr := fileRequest(employee.ID)

			_, err := leaveService.GetLeaveByID(lr.ID, otherEmployee)

			Expect(err).To(Equal(internal.ErrUnauthorizedAccess))
		})

		It("should let a manager read any request", func() {
			lr := fileRequest(employee.ID)

			got, err := leaveService.GetLeaveByID(lr.ID, manager)

			Expect(err).ToNot(HaveOccurred())
			Expect(got.ID).To(Equal(lr.ID))
		})
	})

	Describe("ApplyAction", func() {
		Context("first stage", func() {
			It("should let a manager endorse a pending request", func() {
				lr := fileRequest(employee.ID)

				got, err := leaveService.ApplyAction(lr.ID, leave.ActionDTO{Action: string(leave.ActionEndorse)}, manager)

				Expect(err).ToNot(HaveOccurred())
				Expect(got.Status).To(Equal(leave.StatusEndorsed))
				Expect(*got.ApproverID).To(Equal(manager.ID))
			})

			It("should refuse an employee", func() {
				lr := fileRequest(employee.ID)

				_, err := leaveService.ApplyAction(lr.ID, leave.ActionDTO{Action: string(leave.ActionEndorse)}, employee)

				Expect(err).To(Equal(internal.ErrUnauthorizedAccess))
			})

			It("should refuse endorsing an already endorsed request", func() {
				lr := fileRequest(employee.ID)
				endorse(lr.ID)

				_, err := leaveService.ApplyAction(lr.ID, leave.ActionDTO{Action: string(leave.ActionEndorse)}, manager)

				Expect(err).To(Equal(internal.ErrInvalidLeaveStatus))
			})

			It("should require comments of at least 10 characters when rejecting", func() {
				lr := fileRequest(employee.ID)

				_, err := leaveService.ApplyAction(lr.ID, leave.ActionDTO{
					Action:   string(leave.ActionReject),
					Comments: "no",
				}, manager)

				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("comments"))

				kept, _ := mockRepo.GetByID(lr.ID)
				Expect(kept.Status).To(Equal(leave.StatusPending))
			})

			It("should reject with adequate comments", func() {
				lr := fileRequest(employee.ID)

				got, err := leaveService.ApplyAction(lr.ID, leave.ActionDTO{
					Action:   string(leave.ActionReject),
					Comments: "overlaps with the release freeze window",
				}, manager)

				Expect(err).ToNot(HaveOccurred())
				Expect(got.Status).To(Equal(leave.StatusRejected))
				Expect(*got.ManagerComments).To(ContainSubstring("release freeze"))
			})

			It("should require comments when returning", func() {
				lr := fileRequest(employee.ID)

				_, err := leaveService.ApplyAction(lr.ID, leave.ActionDTO{Action: string(leave.ActionReturn)}, manager)

				Expect(err).To(HaveOccurred())
			})

			It("should notify the owner after a transition", func() {
				lr := fileRequest(employee.ID)

				endorse(lr.ID)

				Expect(mockPub.notifications).To(ContainElement(leave.StatusEndorsed))
			})
		})

		Context("final stage", func() {
			It("should refuse a manager applying top management actions", func() {
				lr := fileRequest(employee.ID)
				endorse(lr.ID)

				_, err := leaveService.ApplyAction(lr.ID, leave.ActionDTO{Action: string(leave.ActionTMApprove)}, manager)

				Expect(err).To(Equal(internal.ErrUnauthorizedAccess))
			})

			It("should refuse approving a request that is still pending", func() {
				lr := fileRequest(employee.ID)

				_, err := leaveService.ApplyAction(lr.ID, leave.ActionDTO{Action: string(leave.ActionTMApprove)}, superAdmin)

				Expect(err).To(Equal(internal.ErrInvalidLeaveStatus))
			})

			It("should approve and deduct the balance together", func() {
				lr := fileRequest(employee.ID)
				endorse(lr.ID)

				got, err := leaveService.ApplyAction(lr.ID, leave.ActionDTO{Action: string(leave.ActionTMApprove)}, superAdmin)

				Expect(err).ToNot(HaveOccurred())
				Expect(got.Status).To(Equal(leave.StatusTMApproved))
				Expect(mockRepo.balances[leave.TypeVacation].Used).To(Equal(6))
				Expect(mockPub.notifications).To(ContainElement(leave.StatusTMApproved))
			})

			It("should leave status and counters untouched when the balance is insufficient", func() {
				mockRepo.balances[leave.TypeVacation].Used = 12 // 3 days remaining, 6 requested
				lr := fileRequest(employee.ID)
				endorse(lr.ID)
				notified := len(mockPub.notifications)

				_, err := leaveService.ApplyAction(lr.ID, leave.ActionDTO{Action: string(leave.ActionTMApprove)}, superAdmin)

				Expect(err).To(HaveOccurred())
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(internal.ErrCodeInsufficientBalance))
				Expect(appErr.StatusCode).To(Equal(422))

				kept, _ := mockRepo.GetByID(lr.ID)
				Expect(kept.Status).To(Equal(leave.StatusEndorsed))
				Expect(mockRepo.balances[leave.TypeVacation].Used).To(Equal(12))
				Expect(mockPub.notifications).To(HaveLen(notified))
			})

			It("should surface a storage failure as a transaction failure", func() {
				lr := fileRequest(employee.ID)
				endorse(lr.ID)
				mockRepo.txError = errors.New("connection reset")

				_, err := leaveService.ApplyAction(lr.ID, leave.ActionDTO{Action: string(leave.ActionTMApprove)}, superAdmin)

				Expect(err).To(HaveOccurred())
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(internal.ErrCodeTransactionFailure))
			})

			It("should reject at the final stage with comments", func() {
				lr := fileRequest(employee.ID)
				endorse(lr.ID)

				got, err := leaveService.ApplyAction(lr.ID, leave.ActionDTO{
					Action:   string(leave.ActionTMReject),
					Comments: "headcount coverage is too thin that week",
				}, superAdmin)

				Expect(err).ToNot(HaveOccurred())
				Expect(got.Status).To(Equal(leave.StatusTMRejected))
				Expect(mockRepo.balances[leave.TypeVacation].Used).To(Equal(0))
			})
		})
	})

	Describe("EditLeave", func() {
		returnRequest := func(id int64) {
			_, err := leaveService.ApplyAction(id, leave.ActionDTO{
				Action:   string(leave.ActionReturn),
				Comments: "please attach the travel itinerary",
			}, manager)
			Expect(err).ToNot(HaveOccurred())
		}

		It("should let the owner revise a returned request back to pending", func() {
			lr := fileRequest(employee.ID)
			returnRequest(lr.ID)

			dto := leave.UpdateLeaveDTO(validDTO())
			dto.Reason = "family trip, itinerary attached"

			got, err := leaveService.EditLeave(lr.ID, employee.ID, dto)

			Expect(err).ToNot(HaveOccurred())
			Expect(got.Status).To(Equal(leave.StatusPending))
			Expect(got.Reason).To(Equal(dto.Reason))
		})

		It("should refuse a caller who is not the owner", func() {
			lr := fileRequest(employee.ID)
			returnRequest(lr.ID)

			_, err := leaveService.EditLeave(lr.ID, otherEmployee.ID, leave.UpdateLeaveDTO(validDTO()))

			Expect(err).To(Equal(internal.ErrUnauthorizedAccess))
		})

		It("should refuse editing a pending request", func() {
			lr := fileRequest(employee.ID)

			_, err := leaveService.EditLeave(lr.ID, employee.ID, leave.UpdateLeaveDTO(validDTO()))

			Expect(err).To(Equal(internal.ErrCannotModifyLeave))
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
		})

		It("should refuse editing an approved request", func() {
			lr := fileRequest(employee.ID)
			endorse(lr.ID)
			_, err := leaveService.ApplyAction(lr.ID, leave.ActionDTO{Action: string(leave.ActionTMApprove)}, superAdmin)
			Expect(err).ToNot(HaveOccurred())

			_, err = leaveService.EditLeave(lr.ID, employee.ID, leave.UpdateLeaveDTO(validDTO()))

			Expect(err).To(Equal(internal.ErrCannotModifyLeave))
		})
	})

	Describe("full lifecycle", func() {
		It("should walk a request from filing to approval with the ledger updated once", func() {
			lr := fileRequest(employee.ID)
			Expect(lr.DurationDays()).To(Equal(6))

			endorsed := endorse(lr.ID)
			Expect(endorsed.Status).To(Equal(leave.StatusEndorsed))

			approved, err := leaveService.ApplyAction(lr.ID, leave.ActionDTO{Action: string(leave.ActionTMApprove)}, superAdmin)
			Expect(err).ToNot(HaveOccurred())
			Expect(approved.Status).To(Equal(leave.StatusTMApproved))

			Expect(mockRepo.balances[leave.TypeVacation].Used).To(Equal(6))
			Expect(mockPub.notifications).To(Equal([]leave.Status{leave.StatusEndorsed, leave.StatusTMApproved}))
		})
	})
})
