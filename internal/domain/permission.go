package domain

type Resource string

const (
	ResourceCandidates Resource = "candidates"
	ResourceInterviews Resource = "interviews"
	ResourceNotes      Resource = "notes"
	ResourceReports    Resource = "reports"
	ResourceUsers      Resource = "users"
)

type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionImport Action = "import"
	ActionExport Action = "export"
)

var permissions = map[Role]map[Resource][]Action{
	RoleRecruiter: {
		ResourceCandidates: {ActionRead, ActionCreate, ActionUpdate, ActionDelete, ActionImport, ActionExport},
		ResourceInterviews: {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		ResourceNotes:      {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		ResourceReports:    {ActionRead},
		ResourceUsers:      {ActionRead, ActionUpdate},
	},
	RoleHiringManager: {
		ResourceCandidates: {ActionRead, ActionCreate, ActionUpdate, ActionImport, ActionExport},
		ResourceInterviews: {ActionRead, ActionCreate, ActionUpdate},
		ResourceNotes:      {ActionRead, ActionCreate, ActionUpdate},
		ResourceReports:    {ActionRead},
	},
	RoleInterviewer: {
		ResourceCandidates: {ActionRead, ActionCreate, ActionUpdate},
		ResourceInterviews: {ActionRead, ActionUpdate},
		ResourceNotes:      {ActionRead, ActionCreate, ActionUpdate},
		ResourceReports:    {ActionRead},
	},
	RoleViewer: {
		ResourceCandidates: {ActionRead},
		ResourceInterviews: {ActionRead},
		ResourceNotes:      {ActionRead},
		ResourceReports:    {ActionRead},
	},
}

// HasPermission reports whether role may perform action on resource.
func HasPermission(role Role, resource Resource, action Action) bool {
	for _, a := range permissions[role][resource] {
		if a == action {
			return true
		}
	}
	return false
}
