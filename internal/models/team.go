package models

// Team represents a team entity
type Team struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	CreatedAt   int64        `json:"created_at"`
	UpdatedAt   int64        `json:"updated_at"`
	Members     []TeamMember `json:"members,omitempty"`
}

// TeamMember is the (team, user) membership row. It carries no role of its own.
type TeamMember struct {
	ID       string `json:"id"`
	TeamID   string `json:"team_id"`
	UserID   string `json:"user_id"`
	JoinedAt int64  `json:"joined_at"`
}
