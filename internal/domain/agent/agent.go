// Package agent defines the fixed team of agent roles as data: each role
// carries its own toolset and persona preamble, selected by a single
// dispatch function instead of open-ended branching on name strings.
package agent

// Role names. The supervisor is the router; the others are workers.
const (
	Supervisor      = "supervisor"
	Knowledge       = "knowledge_agent"
	CustomerService = "customer_service_agent"
	Secretary       = "secretary_agent"
)

// Definition describes one agent role.
type Definition struct {
	Name string
	// Instructions is the persona preamble prepended as the system prompt.
	Instructions string
	// Tools lists the registry names of the tools bound to this role.
	Tools []string
	// ForceToolUse makes every model invocation require a tool call.
	// Only the supervisor sets this: free-text answers from the supervisor
	// are a contract violation and must not terminate the turn.
	ForceToolUse bool
}

// Supervisor handoff tool names, one per worker, plus the finish tool.
const (
	ToolTransferToKnowledge       = "transfer_to_knowledge_agent"
	ToolTransferToCustomerService = "transfer_to_customer_service_agent"
	ToolTransferToSecretary       = "transfer_to_secretary_agent"
	ToolFinishExecution           = "finish_execution"
)

// HandoffTargets maps each supervisor transfer tool to its worker role.
var HandoffTargets = map[string]string{
	ToolTransferToKnowledge:       Knowledge,
	ToolTransferToCustomerService: CustomerService,
	ToolTransferToSecretary:       Secretary,
}

// Team is the fixed roster, keyed by role name.
type Team map[string]Definition

// NewTeam builds the roster with the given persona preambles. Preambles are
// external collaborators (prompt text), injected so the core stays
// replaceable-prompt agnostic.
func NewTeam(prompts map[string]string) Team {
	return Team{
		Supervisor: {
			Name:         Supervisor,
			Instructions: prompts[Supervisor],
			Tools: []string{
				ToolTransferToKnowledge,
				ToolTransferToCustomerService,
				ToolTransferToSecretary,
				ToolFinishExecution,
			},
			ForceToolUse: true,
		},
		Knowledge: {
			Name:         Knowledge,
			Instructions: prompts[Knowledge],
			Tools:        []string{"retriever_tool", "web_search_tool"},
		},
		CustomerService: {
			Name:         CustomerService,
			Instructions: prompts[CustomerService],
			Tools:        []string{"retrieve_user_info", "new_support_call"},
		},
		Secretary: {
			Name:         Secretary,
			Instructions: prompts[Secretary],
			Tools:        []string{"get_appointments", "add_appointment"},
		},
	}
}

// ByName dispatches a role name to its definition.
func (t Team) ByName(name string) (Definition, bool) {
	d, ok := t[name]
	return d, ok
}

// Workers returns the delegation targets in a stable order.
func (t Team) Workers() []string {
	return []string{Knowledge, CustomerService, Secretary}
}
