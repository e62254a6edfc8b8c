package wire

type CreateNightRequest struct {
	UserID          string   `json:"userId" validate:"required"`
	Date            string   `json:"date" validate:"required,datetime=2006-01-02"`
	CourtsAvailable int      `json:"courtsAvailable" validate:"gte=0,lte=64"`
	CourtLabels     []string `json:"courtLabels" validate:"omitempty,dive,max=50"`
}

type UserRequest struct {
	UserID string `json:"userId" validate:"required"`
}

type PartnershipRequestBody struct {
	RequesterID string `json:"requesterId" validate:"required"`
	RequestedID string `json:"requestedId" validate:"required,nefield=RequesterID"`
}

type RespondRequest struct {
	RequestID string `json:"requestId" validate:"required"`
	UserID    string `json:"userId" validate:"required"`
}

type SubmitScoreRequest struct {
	MatchID    string `json:"matchId" validate:"required"`
	UserID     string `json:"userId" validate:"required"`
	Team1Score *int   `json:"team1Score" validate:"required,gte=0"`
	Team2Score *int   `json:"team2Score" validate:"required,gte=0"`
}

type ScoreActionRequest struct {
	MatchID string `json:"matchId" validate:"required"`
	UserID  string `json:"userId" validate:"required"`
}

type OverrideScoreRequest struct {
	UserID     string `json:"userId" validate:"required"`
	Team1Score *int   `json:"team1Score" validate:"required,gte=0"`
	Team2Score *int   `json:"team2Score" validate:"required,gte=0"`
}
