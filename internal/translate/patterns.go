package translate

// DefaultPatterns returns the built-in intent patterns for the smart-home
// schema. Priority encodes specificity: status- and severity-qualified
// patterns come before the bare table patterns that would otherwise shadow
// them. Triggers carry both the Chinese vocabulary of the original console
// and English equivalents.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{
			ID:       "devices-online",
			Priority: 10,
			Triggers: [][]string{
				{"在线", "设备"},
				{"online", "device"},
			},
			Table:   "devices",
			Filters: map[string]string{"status": "online"},
		},
		{
			ID:       "devices-offline",
			Priority: 11,
			Triggers: [][]string{
				{"离线", "设备"},
				{"offline", "device"},
			},
			Table:   "devices",
			Filters: map[string]string{"status": "offline"},
		},
		{
			ID:       "events-severe",
			Priority: 20,
			Triggers: [][]string{
				{"安防", "高"},
				{"安防", "严重"},
				{"事件", "高"},
				{"事件", "严重"},
				{"security", "high"},
				{"security", "critical"},
				{"event", "high"},
				{"event", "critical"},
			},
			Table:      "security_events",
			Filters:    map[string]string{"severity": "high,critical"},
			TimeColumn: "timestamp",
			OrderBy:    "timestamp",
		},
		{
			ID:       "events-unhandled",
			Priority: 21,
			Triggers: [][]string{
				{"未处理", "事件"},
				{"未处理", "安防"},
				{"unhandled", "event"},
				{"open", "event"},
			},
			Table:      "security_events",
			Filters:    map[string]string{"handled": "0"},
			TimeColumn: "timestamp",
			OrderBy:    "timestamp",
		},
		{
			ID:       "events-all",
			Priority: 29,
			Triggers: [][]string{
				{"安防"},
				{"security"},
				{"event"},
			},
			Table:      "security_events",
			TimeColumn: "timestamp",
			OrderBy:    "timestamp",
		},
		{
			ID:       "usage-logs",
			Priority: 30,
			Triggers: [][]string{
				{"使用记录"},
				{"使用"},
				{"usage"},
				{"activity"},
			},
			Table:      "usage_logs",
			TimeColumn: "timestamp",
			OrderBy:    "timestamp",
		},
		{
			ID:       "feedback-all",
			Priority: 40,
			Triggers: [][]string{
				{"反馈"},
				{"feedback"},
			},
			Table:      "user_feedback",
			TimeColumn: "timestamp",
		},
		{
			ID:       "users-all",
			Priority: 50,
			Triggers: [][]string{
				{"用户"},
				{"user"},
			},
			Table: "users",
		},
		{
			ID:       "rooms-all",
			Priority: 51,
			Triggers: [][]string{
				{"房间"},
				{"room"},
			},
			Table: "rooms",
		},
		{
			ID:       "devices-all",
			Priority: 52,
			Triggers: [][]string{
				{"设备"},
				{"device"},
			},
			Table: "devices",
		},
	}
}
