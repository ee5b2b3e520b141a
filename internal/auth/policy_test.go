package auth

import (
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("CanPerform", func() {
	ginkgo.Context("self-targeting destructive actions", func() {
		ginkgo.It("denies deactivating your own account regardless of role", func() {
			gomega.Expect(CanPerform(RoleAdmin, "u-1", "u-1", ActionDeactivateUser)).To(gomega.BeFalse())
			gomega.Expect(CanPerform(RoleManager, "u-1", "u-1", ActionDeactivateUser)).To(gomega.BeFalse())
		})

		ginkgo.It("denies deleting your own account regardless of role", func() {
			gomega.Expect(CanPerform(RoleAdmin, "u-1", "u-1", ActionDeleteUser)).To(gomega.BeFalse())
		})

		ginkgo.It("denies a manager approving or rating their own plan", func() {
			gomega.Expect(CanPerform(RoleManager, "EMP_9", "EMP_9", ActionApprovePlan)).To(gomega.BeFalse())
			gomega.Expect(CanPerform(RoleManager, "EMP_9", "EMP_9", ActionRejectPlan)).To(gomega.BeFalse())
			gomega.Expect(CanPerform(RoleManager, "EMP_9", "EMP_9", ActionRatePlan)).To(gomega.BeFalse())
		})
	})

	ginkgo.Context("admin", func() {
		ginkgo.It("may perform any non-self-destructive action", func() {
			gomega.Expect(CanPerform(RoleAdmin, "u-1", "u-2", ActionDeleteUser)).To(gomega.BeTrue())
			gomega.Expect(CanPerform(RoleAdmin, "u-1", "u-2", ActionApprovePlan)).To(gomega.BeTrue())
			gomega.Expect(CanPerform(RoleAdmin, "u-1", "u-2", ActionViewPlan)).To(gomega.BeTrue())
		})
	})

	ginkgo.Context("manager", func() {
		ginkgo.It("may decide other people's plans", func() {
			gomega.Expect(CanPerform(RoleManager, "EMP_1", "EMP_2", ActionApprovePlan)).To(gomega.BeTrue())
			gomega.Expect(CanPerform(RoleManager, "EMP_1", "EMP_2", ActionRejectPlan)).To(gomega.BeTrue())
			gomega.Expect(CanPerform(RoleManager, "EMP_1", "EMP_2", ActionRatePlan)).To(gomega.BeTrue())
		})

		ginkgo.It("may only submit and report results on their own plans", func() {
			gomega.Expect(CanPerform(RoleManager, "EMP_1", "EMP_1", ActionSubmitPlan)).To(gomega.BeTrue())
			gomega.Expect(CanPerform(RoleManager, "EMP_1", "EMP_2", ActionSubmitPlan)).To(gomega.BeFalse())
		})
	})

	ginkgo.Context("employee", func() {
		ginkgo.It("may only touch their own plans", func() {
			gomega.Expect(CanPerform(RoleEmployee, "EMP_1", "EMP_1", ActionSubmitPlan)).To(gomega.BeTrue())
			gomega.Expect(CanPerform(RoleEmployee, "EMP_1", "EMP_1", ActionViewPlan)).To(gomega.BeTrue())
			gomega.Expect(CanPerform(RoleEmployee, "EMP_1", "EMP_2", ActionViewPlan)).To(gomega.BeFalse())
		})

		ginkgo.It("may never decide plan lifecycle", func() {
			gomega.Expect(CanPerform(RoleEmployee, "EMP_1", "EMP_2", ActionApprovePlan)).To(gomega.BeFalse())
			gomega.Expect(CanPerform(RoleEmployee, "EMP_1", "EMP_2", ActionRatePlan)).To(gomega.BeFalse())
		})

		ginkgo.It("may never manage accounts", func() {
			gomega.Expect(CanPerform(RoleEmployee, "u-1", "u-2", ActionCreateUser)).To(gomega.BeFalse())
			gomega.Expect(CanPerform(RoleEmployee, "u-1", "u-2", ActionDeleteUser)).To(gomega.BeFalse())
		})
	})

	ginkgo.It("denies unknown roles everything", func() {
		gomega.Expect(CanPerform("intern", "u-1", "u-2", ActionViewPlan)).To(gomega.BeFalse())
	})
})

var _ = ginkgo.Describe("ManageableRole", func() {
	ginkgo.It("lets admins manage every role", func() {
		gomega.Expect(ManageableRole(RoleAdmin, RoleAdmin)).To(gomega.BeTrue())
		gomega.Expect(ManageableRole(RoleAdmin, RoleManager)).To(gomega.BeTrue())
		gomega.Expect(ManageableRole(RoleAdmin, RoleEmployee)).To(gomega.BeTrue())
	})

	ginkgo.It("restricts managers to employee accounts", func() {
		gomega.Expect(ManageableRole(RoleManager, RoleEmployee)).To(gomega.BeTrue())
		gomega.Expect(ManageableRole(RoleManager, RoleManager)).To(gomega.BeFalse())
		gomega.Expect(ManageableRole(RoleManager, RoleAdmin)).To(gomega.BeFalse())
	})

	ginkgo.It("gives employees no management rights", func() {
		gomega.Expect(ManageableRole(RoleEmployee, RoleEmployee)).To(gomega.BeFalse())
	})
})
