package event

type Name string

const (
	NameCheckIn            Name = "CHECKIN"
	NamePartnershipRequest Name = "PARTNERSHIP_REQUEST"
	NamePartnership        Name = "PARTNERSHIP"
	NameMatch              Name = "MATCH"
	NameNight              Name = "NIGHT"
)

type Type string

const (
	TypeCreate Type = "create"
	TypeUpdate Type = "update"
	TypeDelete Type = "delete"
)

// Message is a committed mutation addressed to everyone watching a night.
// Payload holds a domain entity.
type Message struct {
	NightID string
	Event   Name
	Type    Type
	Payload any
}
