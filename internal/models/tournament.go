package models

// TournamentStatus tracks the lifecycle of a tournament.
type TournamentStatus string

const (
	TournamentActive    TournamentStatus = "active"
	TournamentCompleted TournamentStatus = "completed"
	TournamentCancelled TournamentStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s TournamentStatus) Valid() bool {
	switch s {
	case TournamentActive, TournamentCompleted, TournamentCancelled:
		return true
	}
	return false
}

// Course is a golf course with an ordered sequence of holes.
type Course struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Location  string `json:"location"`
	Holes     []Hole `json:"holes"`
	CreatedAt int64  `json:"created_at"`
}

// Hole is one hole of a course. HoleNumber starts at 1.
type Hole struct {
	HoleNumber int `json:"hole_number"`
	Par        int `json:"par"`
}

// Tournament is one event played on a course.
type Tournament struct {
	// ID is the internal identifier (UUID format).
	ID string `json:"id"`

	// Number is the internal sequential tournament number. It is never
	// exposed; Key is its public encoding.
	Number int64 `json:"-"`

	// Key is the public tournament key derived from Number.
	Key string `json:"tournament_key"`

	Name     string           `json:"name"`
	CourseID string           `json:"golf_course_id"`
	Status   TournamentStatus `json:"status"`

	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// ParFor returns the par of holeNumber, or false if the course has no such hole.
func ParFor(holes []Hole, holeNumber int) (int, bool) {
	for _, h := range holes {
		if h.HoleNumber == holeNumber {
			return h.Par, true
		}
	}
	return 0, false
}
