package plan_test

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internal "github.com/thanhhle/salesops-management/internal"
	"github.com/thanhhle/salesops-management/internal/auth"
	"github.com/thanhhle/salesops-management/internal/core/events"
	"github.com/thanhhle/salesops-management/internal/plan"
)

func TestPlanService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Plan Service Suite")
}

// Mock repository for testing
type mockPlanRepository struct {
	mu          sync.Mutex
	plans       map[string]*plan.Plan
	createError error
	getError    error
	updateError error
}

func newMockPlanRepository() *mockPlanRepository {
	return &mockPlanRepository{plans: make(map[string]*plan.Plan)}
}

func (m *mockPlanRepository) Create(p *plan.Plan) error {
	if m.createError != nil {
		return m.createError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *p
	m.plans[p.ID] = &copied
	return nil
}

func (m *mockPlanRepository) GetByID(id string) (*plan.Plan, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.plans[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, internal.ErrPlanNotFound
}

func (m *mockPlanRepository) GetAll(filter plan.ListFilter) ([]plan.Plan, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []plan.Plan
	for _, p := range m.plans {
		if filter.EmployeeID != "" && p.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.WeekNumber != "" && p.WeekNumber != filter.WeekNumber {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockPlanRepository) GetByEmployeeID(employeeID string) ([]plan.Plan, error) {
	return m.GetAll(plan.ListFilter{EmployeeID: employeeID})
}

func (m *mockPlanRepository) ExistsForEmployeeDate(employeeID, date string) (bool, error) {
	if m.getError != nil {
		return false, m.getError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.plans {
		if p.EmployeeID == employeeID && p.Date == date {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockPlanRepository) Update(p *plan.Plan) error {
	if m.updateError != nil {
		return m.updateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.plans[p.ID]; !ok {
		return internal.ErrPlanNotFound
	}
	copied := *p
	m.plans[p.ID] = &copied
	return nil
}

func (m *mockPlanRepository) DeleteByEmployeeID(employeeID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted int64
	for id, p := range m.plans {
		if p.EmployeeID == employeeID {
			delete(m.plans, id)
			deleted++
		}
	}
	return deleted, nil
}

type mockOwnerDirectory struct {
	profiles    map[string]plan.OwnerProfile
	lookupError error
}

func (m *mockOwnerDirectory) OwnerProfile(employeeID string) (plan.OwnerProfile, error) {
	if m.lookupError != nil {
		return plan.OwnerProfile{}, m.lookupError
	}
	return m.profiles[employeeID], nil
}

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
	return nil
}

func (b *recordingBus) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.events))
	for i, e := range b.events {
		out[i] = e.EventType()
	}
	return out
}

var _ = Describe("PlanService", func() {
	var (
		service  *plan.Service
		repo     *mockPlanRepository
		owners   *mockOwnerDirectory
		bus      *recordingBus
		employee *auth.Claims
		manager  *auth.Claims
		admin    *auth.Claims
	)

	submitPlan := func(actor *auth.Claims, date string) *plan.Plan {
		created, err := service.Submit(actor, plan.CreatePlanDTO{
			WeekNumber:  "Tuần 35",
			Date:        date,
			Area:        "Phường 1",
			WorkContent: "Phát triển thuê bao khu dân cư",
			Targets:     plan.ProductFigures{Sim: 10, Fiber: 20, MyTV: 30},
		})
		Expect(err).NotTo(HaveOccurred())
		return created
	}

	BeforeEach(func() {
		repo = newMockPlanRepository()
		owners = &mockOwnerDirectory{profiles: map[string]plan.OwnerProfile{
			"EMP_1": {Position: "Nhân viên kinh doanh", ManagementArea: "Phường 1"},
		}}
		bus = &recordingBus{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = plan.NewService(repo, owners, bus, logger)

		employee = &auth.Claims{UserID: "u-1", EmployeeID: "EMP_1", EmployeeName: "Lê Văn Hùng", Role: auth.RoleEmployee}
		manager = &auth.Claims{UserID: "u-2", EmployeeID: "EMP_2", EmployeeName: "Trần Thị Lan", Role: auth.RoleManager}
		admin = &auth.Claims{UserID: "u-3", EmployeeID: "EMP_3", EmployeeName: "Nguyễn Văn Quản", Role: auth.RoleAdmin}
	})

	Describe("Submit", func() {
		It("creates a pending plan owned by the actor", func() {
			created := submitPlan(employee, "2025-09-01")
			Expect(created.Status).To(Equal(plan.StatusPending))
			Expect(created.EmployeeID).To(Equal("EMP_1"))
			Expect(created.EmployeeName).To(Equal("Lê Văn Hùng"))
			Expect(created.SubmittedAt).NotTo(BeZero())
		})

		It("snapshots the owner's position and area", func() {
			created := submitPlan(employee, "2025-09-01")
			Expect(created.Position).To(Equal("Nhân viên kinh doanh"))
			Expect(created.ManagementArea).To(Equal("Phường 1"))
		})

		It("submits anyway when the directory lookup fails", func() {
			owners.lookupError = internal.NewConnectivityError("down", nil)
			created := submitPlan(employee, "2025-09-01")
			Expect(created.Position).To(BeEmpty())
			Expect(created.Status).To(Equal(plan.StatusPending))
		})

		It("refuses a second plan on the same date without touching the first", func() {
			first := submitPlan(employee, "2025-09-01")

			_, err := service.Submit(employee, plan.CreatePlanDTO{
				WeekNumber:  "Tuần 35",
				Date:        "2025-09-01",
				Area:        "Phường 2",
				WorkContent: "Khác",
			})
			Expect(err).To(Equal(internal.ErrDuplicatePlanDate))

			stored, err := repo.GetByID(first.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Area).To(Equal("Phường 1"))
		})

		It("allows the same date for different employees", func() {
			submitPlan(employee, "2025-09-01")
			created, err := service.Submit(manager, plan.CreatePlanDTO{
				WeekNumber:  "Tuần 35",
				Date:        "2025-09-01",
				Area:        "Toàn chi nhánh",
				WorkContent: "Giám sát địa bàn",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.EmployeeID).To(Equal("EMP_2"))
		})

		It("rejects an invalid date format", func() {
			_, err := service.Submit(employee, plan.CreatePlanDTO{
				WeekNumber:  "Tuần 35",
				Date:        "01/09/2025",
				Area:        "Phường 1",
				WorkContent: "Nội dung",
			})
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("publishes a submitted event", func() {
			submitPlan(employee, "2025-09-01")
			Expect(bus.types()).To(ContainElement(events.PlanSubmittedEvent))
		})
	})

	Describe("Approve", func() {
		It("moves a pending plan to approved and stamps the approver", func() {
			created := submitPlan(employee, "2025-09-01")

			approved, err := service.Approve(manager, created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(approved.Status).To(Equal(plan.StatusApproved))
			Expect(approved.ApprovedBy).To(Equal("Trần Thị Lan"))
			Expect(approved.ApprovedAt).NotTo(BeNil())
		})

		It("refuses to approve a plan twice", func() {
			created := submitPlan(employee, "2025-09-01")
			_, err := service.Approve(manager, created.ID)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Approve(manager, created.ID)
			Expect(err).To(Equal(internal.ErrInvalidPlanStatus))
		})

		It("denies a manager approving their own plan", func() {
			created := submitPlan(manager, "2025-09-01")
			_, err := service.Approve(manager, created.ID)
			Expect(err).To(Equal(internal.ErrSelfActionDenied))
		})

		It("denies an employee", func() {
			created := submitPlan(employee, "2025-09-01")
			_, err := service.Approve(employee, created.ID)
			Expect(err).To(Equal(internal.ErrSelfActionDenied))

			other := &auth.Claims{UserID: "u-9", EmployeeID: "EMP_9", Role: auth.RoleEmployee}
			_, err = service.Approve(other, created.ID)
			Expect(err).To(Equal(internal.ErrForbiddenAction))
		})
	})

	Describe("Reject", func() {
		It("records the reason and the decider", func() {
			created := submitPlan(employee, "2025-09-01")

			rejected, err := service.Reject(manager, created.ID, plan.RejectPlanDTO{Reason: "thiếu nhân sự"})
			Expect(err).NotTo(HaveOccurred())
			Expect(rejected.Status).To(Equal(plan.StatusRejected))
			Expect(rejected.ReturnedReason).To(Equal("thiếu nhân sự"))
			Expect(rejected.ApprovedBy).To(Equal("Trần Thị Lan"))
		})

		It("refuses a whitespace-only reason and leaves the plan pending", func() {
			created := submitPlan(employee, "2025-09-01")

			_, err := service.Reject(manager, created.ID, plan.RejectPlanDTO{Reason: "   "})
			Expect(err).To(Equal(internal.ErrMissingReason))

			stored, err := repo.GetByID(created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Status).To(Equal(plan.StatusPending))
			Expect(stored.ReturnedReason).To(BeEmpty())
		})

		It("trims the reason before storing it", func() {
			created := submitPlan(employee, "2025-09-01")

			rejected, err := service.Reject(manager, created.ID, plan.RejectPlanDTO{Reason: "  lý do  "})
			Expect(err).NotTo(HaveOccurred())
			Expect(rejected.ReturnedReason).To(Equal("lý do"))
		})
	})

	Describe("ReportResults", func() {
		It("completes an approved plan with the reported figures", func() {
			created := submitPlan(employee, "2025-09-01")
			_, err := service.Approve(manager, created.ID)
			Expect(err).NotTo(HaveOccurred())

			completed, err := service.ReportResults(employee, created.ID, plan.ResultsDTO{
				Results:            plan.ProductFigures{Sim: 5, Fiber: 20},
				CustomersContacted: 12,
				ContractsSigned:    3,
				Challenges:         "Khách hàng vắng nhà",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(completed.Status).To(Equal(plan.StatusCompleted))
			Expect(completed.Results.Sim).To(Equal(5))
			Expect(completed.CustomersContacted).To(Equal(12))
		})

		It("refuses results on a pending plan", func() {
			created := submitPlan(employee, "2025-09-01")
			_, err := service.ReportResults(employee, created.ID, plan.ResultsDTO{})
			Expect(err).To(Equal(internal.ErrInvalidPlanStatus))
		})

		It("refuses results on a rejected plan", func() {
			created := submitPlan(employee, "2025-09-01")
			_, err := service.Reject(manager, created.ID, plan.RejectPlanDTO{Reason: "không phù hợp"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ReportResults(employee, created.ID, plan.ResultsDTO{})
			Expect(err).To(Equal(internal.ErrInvalidPlanStatus))
		})

		It("denies reporting someone else's plan", func() {
			created := submitPlan(employee, "2025-09-01")
			_, err := service.Approve(manager, created.ID)
			Expect(err).NotTo(HaveOccurred())

			other := &auth.Claims{UserID: "u-9", EmployeeID: "EMP_9", Role: auth.RoleEmployee}
			_, err = service.ReportResults(other, created.ID, plan.ResultsDTO{})
			Expect(err).To(Equal(internal.ErrForbiddenAction))
		})
	})

	Describe("Rate", func() {
		completedPlan := func() *plan.Plan {
			created := submitPlan(employee, "2025-09-01")
			_, err := service.Approve(manager, created.ID)
			Expect(err).NotTo(HaveOccurred())
			completed, err := service.ReportResults(employee, created.ID, plan.ResultsDTO{
				Results: plan.ProductFigures{Sim: 8},
			})
			Expect(err).NotTo(HaveOccurred())
			return completed
		}

		It("stores the evaluation and marks the plan rated", func() {
			p := completedPlan()

			rated, err := service.Rate(manager, p.ID, plan.RatingDTO{
				AttitudeScore:      "Tốt",
				DisciplineScore:    "Xuất sắc",
				EffectivenessScore: "Khá",
				BonusScore:         5,
				ManagerComment:     "Vượt chỉ tiêu fiber",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(rated.Rating).To(Equal(plan.RatingRated))
			Expect(rated.AttitudeScore).To(Equal("Tốt"))
			Expect(rated.DisciplineScore).To(Equal("Xuất sắc"))
			Expect(rated.BonusScore).To(Equal(5))
			Expect(rated.RatedBy).To(Equal("Trần Thị Lan"))
			Expect(rated.RatedAt).NotTo(BeNil())
		})

		It("overwrites a previous rating in place", func() {
			p := completedPlan()

			_, err := service.Rate(manager, p.ID, plan.RatingDTO{
				AttitudeScore: "Yếu", DisciplineScore: "Yếu", EffectivenessScore: "Yếu", PenaltyScore: 3,
			})
			Expect(err).NotTo(HaveOccurred())

			rerated, err := service.Rate(admin, p.ID, plan.RatingDTO{
				AttitudeScore: "Tốt", DisciplineScore: "Tốt", EffectivenessScore: "Tốt", BonusScore: 2,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(rerated.AttitudeScore).To(Equal("Tốt"))
			Expect(rerated.BonusScore).To(Equal(2))
			Expect(rerated.PenaltyScore).To(BeZero())
			Expect(rerated.RatedBy).To(Equal("Nguyễn Văn Quản"))
		})

		It("refuses to rate an approved but unreported plan", func() {
			created := submitPlan(employee, "2025-09-01")
			_, err := service.Approve(manager, created.ID)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Rate(manager, created.ID, plan.RatingDTO{
				AttitudeScore: "Tốt", DisciplineScore: "Tốt", EffectivenessScore: "Tốt",
			})
			Expect(err).To(Equal(internal.ErrInvalidPlanStatus))
		})

		It("rejects an unknown score label", func() {
			p := completedPlan()
			_, err := service.Rate(manager, p.ID, plan.RatingDTO{
				AttitudeScore: "Tuyệt vời", DisciplineScore: "Tốt", EffectivenessScore: "Tốt",
			})
			Expect(err).To(HaveOccurred())
		})

		It("rejects a negative penalty", func() {
			p := completedPlan()
			_, err := service.Rate(manager, p.ID, plan.RatingDTO{
				AttitudeScore: "Tốt", DisciplineScore: "Tốt", EffectivenessScore: "Tốt", PenaltyScore: -1,
			})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("List", func() {
		It("pins employees to their own plans even when they ask for more", func() {
			submitPlan(employee, "2025-09-01")
			submitPlan(manager, "2025-09-01")

			plans, err := service.List(employee, plan.ListFilter{EmployeeID: "EMP_2"})
			Expect(err).NotTo(HaveOccurred())
			Expect(plans).To(HaveLen(1))
			Expect(plans[0].EmployeeID).To(Equal("EMP_1"))
		})

		It("lets managers see everything", func() {
			submitPlan(employee, "2025-09-01")
			submitPlan(manager, "2025-09-01")

			plans, err := service.List(manager, plan.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(plans).To(HaveLen(2))
		})

		It("denies the approval queue to employees", func() {
			_, err := service.ListPending(employee)
			Expect(err).To(Equal(internal.ErrForbiddenAction))
		})
	})

	Describe("event publishing", func() {
		It("emits one event per lifecycle transition", func() {
			created := submitPlan(employee, "2025-09-01")
			_, err := service.Approve(manager, created.ID)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.ReportResults(employee, created.ID, plan.ResultsDTO{})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Rate(manager, created.ID, plan.RatingDTO{
				AttitudeScore: "Tốt", DisciplineScore: "Tốt", EffectivenessScore: "Tốt",
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(bus.types()).To(Equal([]string{
				events.PlanSubmittedEvent,
				events.PlanApprovedEvent,
				events.PlanCompletedEvent,
				events.PlanRatedEvent,
			}))
		})
	})

	It("does not panic when no event bus is wired", func() {
		silent := plan.NewService(repo, nil, nil, slog.New(slog.NewTextHandler(os.Stdout, nil)))
		_, err := silent.Submit(employee, plan.CreatePlanDTO{
			WeekNumber:  "Tuần 36",
			Date:        "2025-09-08",
			Area:        "Phường 1",
			WorkContent: "Nội dung",
		})
		Expect(err).NotTo(HaveOccurred())
	})

	It("keeps timestamps ordered across a full lifecycle", func() {
		created := submitPlan(employee, "2025-09-01")
		time.Sleep(time.Millisecond)
		approved, err := service.Approve(manager, created.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(approved.ApprovedAt.After(created.SubmittedAt)).To(BeTrue())
	})
})
