package constants

const (
	StatusBidSubmitted = "Bid Submitted"
	StatusInProgress   = "In Progress"
	StatusEstimating   = "Estimating"
	StatusAccepted     = "Accepted"
	StatusComplete     = "Complete"
	StatusInvitations  = "Invitations"
	StatusLost         = "Lost"
	StatusToDo         = "To Do"
	StatusUnknown      = "Unknown"

	UnknownCustomer = "Unknown"

	// PMPrefix marks project-management labor categories.
	PMPrefix = "pm"
)

var (
	// PriorityStatuses decide which customer variant wins when one project
	// number was imported under several customers.
	PriorityStatuses = []string{StatusAccepted, StatusInProgress, StatusComplete}

	ExcludedStatuses = []string{StatusInvitations}

	// internal bookkeeping and test entries
	BlockedProjectNames = []string{
		"operations",
		"shop time",
		"test project",
		"test project - do not use",
	}

	BlockedCustomerSubstrings = []string{"sop inc"}

	BlockedNameSubstrings = []string{"sandbox", "test user"}

	BlockedProjectNumbers = []string{"000000"}

	// dashboard filter only
	ExcludedEstimators = []string{"house account"}
)
