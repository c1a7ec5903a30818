package cnst

// ActionType is an operation an actor asks to perform on the catalog
type ActionType string

const (
	ActionList     ActionType = "list"
	ActionRetrieve ActionType = "retrieve"
	ActionCreate   ActionType = "create"
	ActionUpdate   ActionType = "update"
	ActionDelete   ActionType = "delete"
	ActionApprove  ActionType = "approve"
	// ActionManageUsers covers creating, editing and removing users of a business
	ActionManageUsers ActionType = "manage_users"
)

// Actions lists every known action in a stable order
var Actions = []ActionType{
	ActionList,
	ActionRetrieve,
	ActionCreate,
	ActionUpdate,
	ActionDelete,
	ActionApprove,
	ActionManageUsers,
}

func (a ActionType) String() string {
	return string(a)
}

// Valid reports whether the action is one of the known actions
func (a ActionType) Valid() bool {
	for _, known := range Actions {
		if a == known {
			return true
		}
	}
	return false
}
