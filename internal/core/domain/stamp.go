package domain

import "errors"

// StampType identifies one of the decorative stamp variants.
type StampType string

const (
	StampGold    StampType = "gold"
	StampSilver  StampType = "silver"
	StampBronze  StampType = "bronze"
	StampDiamond StampType = "diamond"
)

// StampTypes lists every valid stamp variant.
var StampTypes = []StampType{StampGold, StampSilver, StampBronze, StampDiamond}

// Valid reports whether t is a known stamp variant.
func (t StampType) Valid() bool {
	for _, known := range StampTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Identity is the self-declared role tag a visitor can attach to a stamp.
// It is display-only and carries no authorization meaning.
type Identity string

const (
	IdentityPM         Identity = "PM"
	IdentityEngineer   Identity = "Engineer"
	IdentityLeadership Identity = "Leadership"
	IdentityRecruiter  Identity = "Recruiter"
	IdentityCat        Identity = "Cat"
	IdentityDesigner   Identity = "Designer"
)

var ErrStampQuotaExceeded = errors.New("per-user stamp limit reached")
var ErrBoardFull = errors.New("board stamp limit reached")
var ErrUserRequired = errors.New("user is required")
var ErrInvalidCoordinates = errors.New("coordinates must be percentage values")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUnauthenticated = errors.New("missing or invalid session")
var ErrUnauthorized = errors.New("unauthorized")

// Stamp is a single point annotation on the shared board.
//
// Coordinates are percentage-of-container strings (e.g. "42.7%") so the board
// renders identically across viewport sizes. User is an opaque, client-chosen
// token used only for quota accounting and "clear mine" filtering — it is not
// an authenticated identity. Stamps are append-only: once placed they are
// never mutated, only bulk-removed.
type Stamp struct {
	ID           string    `json:"id" bson:"id"`
	Type         StampType `json:"type" bson:"type"`
	X            string    `json:"x" bson:"x"`
	Y            string    `json:"y" bson:"y"`
	Rotation     float64   `json:"rotation" bson:"rotation"`
	User         string    `json:"user" bson:"user"`
	UserIdentity Identity  `json:"userIdentity,omitempty" bson:"user_identity,omitempty"`
	Timestamp    string    `json:"timestamp,omitempty" bson:"timestamp,omitempty"`
}

// CountForUser returns how many stamps in the slice belong to user.
func CountForUser(stamps []Stamp, user string) int {
	n := 0
	for _, s := range stamps {
		if s.User == user {
			n++
		}
	}
	return n
}
