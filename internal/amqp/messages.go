package amqp

import (
	"encoding/json"
	"time"
)

// AnalysisRequestMessage asks the projection worker to recompute a goal's
// snapshot. GoalID 0 means every goal; the worker reads current state from the
// repository, so the message carries no projection data.
type AnalysisRequestMessage struct {
	GoalID    int64     `json:"goal_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// NewAnalysisRequestMessage creates a request stamped with the current time.
func NewAnalysisRequestMessage(goalID int64, reason string) *AnalysisRequestMessage {
	return &AnalysisRequestMessage{
		GoalID:    goalID,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

// AllGoals reports whether the request covers every goal.
func (m *AnalysisRequestMessage) AllGoals() bool {
	return m.GoalID == 0
}

// ToJSON converts the message to JSON bytes
func (m *AnalysisRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// AnalysisRequestMessageFromJSON decodes a message body.
func AnalysisRequestMessageFromJSON(data []byte) (*AnalysisRequestMessage, error) {
	var msg AnalysisRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
