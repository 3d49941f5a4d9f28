package model

type WorkflowStatus string

const WORKFLOW_STATUS_DRAFT WorkflowStatus = "draft"
const WORKFLOW_STATUS_ACTIVE WorkflowStatus = "active"
const WORKFLOW_STATUS_PAUSED WorkflowStatus = "paused"
const WORKFLOW_STATUS_COMPLETED WorkflowStatus = "completed"
const WORKFLOW_STATUS_CANCELLED WorkflowStatus = "cancelled"

type TriggerType string

const TRIGGER_TYPE_EVENT TriggerType = "event"
const TRIGGER_TYPE_SCHEDULE TriggerType = "schedule"
const TRIGGER_TYPE_MANUAL TriggerType = "manual"
const TRIGGER_TYPE_WEBHOOK TriggerType = "webhook"
const TRIGGER_TYPE_CONDITION TriggerType = "condition"

type Operator string

const OPERATOR_EQ Operator = "eq"
const OPERATOR_NE Operator = "ne"
const OPERATOR_GT Operator = "gt"
const OPERATOR_GTE Operator = "gte"
const OPERATOR_LT Operator = "lt"
const OPERATOR_LTE Operator = "lte"
const OPERATOR_IN Operator = "in"
const OPERATOR_CONTAINS Operator = "contains"

type Combinator string

const COMBINATOR_AND Combinator = "and"
const COMBINATOR_OR Combinator = "or"

const DEFAULT_RETRY_COUNT = 3
const DEFAULT_RETRY_DELAY_SECONDS = 60

// Trigger describes how a workflow run is started. Exactly one of the
// type-specific fields is meaningful for a given trigger type.
type Trigger struct {
	Type       TriggerType `json:"type"`
	EventName  string      `json:"eventName,omitempty"`
	Schedule   string      `json:"schedule,omitempty"`
	WebhookUrl string      `json:"webhookUrl,omitempty"`
}

// Condition is a single comparison against the run's variables. Combinator
// joins it with the following condition; empty means "and".
type Condition struct {
	Field      string     `json:"field"`
	Operator   Operator   `json:"operator"`
	Value      any        `json:"value"`
	Combinator Combinator `json:"combinator,omitempty"`
}

// ActionConfig is one configured unit of work. Config is an opaque key-value
// map interpreted by the handler registered for Type.
type ActionConfig struct {
	Id                string         `json:"id"`
	Type              string         `json:"type"`
	Name              string         `json:"name"`
	Config            map[string]any `json:"config"`
	RetryCount        int            `json:"retryCount,omitempty"`
	RetryDelaySeconds int            `json:"retryDelaySeconds,omitempty"`
	TimeoutSeconds    int            `json:"timeoutSeconds,omitempty"`
	ContinueOnError   bool           `json:"continueOnError,omitempty"`
	Conditions        []Condition    `json:"conditions,omitempty"`
}

// WorkflowDefinition is the stored description of a trigger, workflow-level
// conditions and an ordered action sequence. It is authored externally and
// read-only to the engine.
type WorkflowDefinition struct {
	Id         string         `json:"id"`
	Name       string         `json:"name"`
	Version    int            `json:"version"`
	Status     WorkflowStatus `json:"status"`
	Trigger    Trigger        `json:"trigger"`
	Actions    []ActionConfig `json:"actions"`
	Conditions []Condition    `json:"conditions,omitempty"`
}

// Normalize fills retry defaults on actions that do not carry them.
func (wf *WorkflowDefinition) Normalize() {
	for i := range wf.Actions {
		if wf.Actions[i].RetryCount <= 0 {
			wf.Actions[i].RetryCount = DEFAULT_RETRY_COUNT
		}
		if wf.Actions[i].RetryDelaySeconds <= 0 {
			wf.Actions[i].RetryDelaySeconds = DEFAULT_RETRY_DELAY_SECONDS
		}
	}
}
