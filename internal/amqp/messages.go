package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"mealbook/internal/core"
)

// MonthSettledMessage announces that a month was settled and locked. It only
// carries headline figures; consumers load the summaries from the database.
type MonthSettledMessage struct {
	Period     string    `json:"period"`
	MonthID    string    `json:"month_id"`
	TotalMeals string    `json:"total_meals"`
	TotalCost  string    `json:"total_cost"`
	MealRate   string    `json:"meal_rate"`
	Members    int       `json:"members"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewMonthSettledMessage(s core.Settlement) *MonthSettledMessage {
	return &MonthSettledMessage{
		Period:     s.Period.String(),
		MonthID:    s.MonthID,
		TotalMeals: s.TotalMeals.String(),
		TotalCost:  s.TotalCost.String(),
		MealRate:   s.MealRate.String(),
		Members:    len(s.Summaries),
		Timestamp:  time.Now().UTC(),
	}
}

func (m *MonthSettledMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MonthSettledMessageFromJSON decodes a message and checks its period.
func MonthSettledMessageFromJSON(data []byte) (*MonthSettledMessage, error) {
	var msg MonthSettledMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if _, err := core.ParsePeriod(msg.Period); err != nil {
		return nil, fmt.Errorf("month settled message: %w", err)
	}
	return &msg, nil
}

// ParsedPeriod returns the message period. Messages built by
// MonthSettledMessageFromJSON always carry a valid one.
func (m *MonthSettledMessage) ParsedPeriod() core.Period {
	p, _ := core.ParsePeriod(m.Period)
	return p
}
