package auth

// Roles known to the system.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// Action names a guarded operation. Handlers and services consult the
// policy before touching the record store, never the other way around.
type Action string

const (
	ActionSubmitPlan    Action = "plan:submit"
	ActionViewPlan      Action = "plan:view"
	ActionReportResults Action = "plan:report_results"
	ActionApprovePlan   Action = "plan:approve"
	ActionRejectPlan    Action = "plan:reject"
	ActionRatePlan      Action = "plan:rate"

	ActionCreateUser     Action = "user:create"
	ActionUpdateUser     Action = "user:update"
	ActionDeleteUser     Action = "user:delete"
	ActionDeactivateUser Action = "user:deactivate"
	ActionViewUsers      Action = "user:view"

	ActionViewReports Action = "report:view"
	ActionExportData  Action = "export:run"
)

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// selfDestructive actions may never target the actor's own account or
// plans, regardless of role.
func selfDestructive(action Action) bool {
	switch action {
	case ActionApprovePlan, ActionRejectPlan, ActionRatePlan,
		ActionDeleteUser, ActionDeactivateUser:
		return true
	}
	return false
}

// CanPerform decides whether an actor may run an action against a target
// owned by targetOwnerID. It is a pure function of its inputs.
func CanPerform(actorRole, actorID, targetOwnerID string, action Action) bool {
	if selfDestructive(action) && actorID != "" && actorID == targetOwnerID {
		return false
	}

	switch actorRole {
	case RoleAdmin:
		return true

	case RoleManager:
		switch action {
		case ActionApprovePlan, ActionRejectPlan, ActionRatePlan,
			ActionViewPlan, ActionViewReports, ActionExportData, ActionViewUsers,
			ActionCreateUser, ActionUpdateUser, ActionDeleteUser, ActionDeactivateUser:
			return true
		case ActionSubmitPlan, ActionReportResults:
			return actorID == targetOwnerID
		}
		return false

	case RoleEmployee:
		switch action {
		case ActionSubmitPlan, ActionViewPlan, ActionReportResults:
			return actorID == targetOwnerID
		case ActionViewReports:
			return true
		}
		return false
	}

	return false
}

// ManageableRole decides whether an actor role may manage accounts with
// the target role. Managers only administer employee accounts; admins
// administer everyone.
func ManageableRole(actorRole, targetRole string) bool {
	switch actorRole {
	case RoleAdmin:
		return ValidRole(targetRole)
	case RoleManager:
		return targetRole == RoleEmployee
	}
	return false
}
