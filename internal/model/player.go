package model

type Player struct {
	ID string
}

// ClientPlayer is a seat as shown to clients.
type ClientPlayer struct {
	ID    string `json:"name"`
	Color Color  `json:"color"`
}

type Players struct {
	White ClientPlayer `json:"white"`
	Black ClientPlayer `json:"black"`
}

func (p *Players) seat(color Color) *ClientPlayer {
	if color == Black {
		return &p.Black
	}
	return &p.White
}

// colorOf returns the color playerID is seated as.
func (p Players) colorOf(playerID string) (Color, bool) {
	switch {
	case playerID == "":
		return "", false
	case p.White.ID == playerID:
		return White, true
	case p.Black.ID == playerID:
		return Black, true
	}
	return "", false
}

// MatchFoundEvent tells a queued player which game they were paired into.
type MatchFoundEvent struct {
	Type   string `json:"type"`
	GameID string `json:"gameId"`
	Color  Color  `json:"color"`
}
