package battle

import "time"

// Photo is one ranked contestant in a battle session.
type Photo struct {
	// ID is stable and unique within a session while the photo is live.
	ID string `json:"id"`

	// URL and StoragePath are opaque references into the blob store. The
	// ranking core never interprets them.
	URL         string `json:"url"`
	StoragePath string `json:"storage_path"`

	// LibraryID is an optional back-reference to the owner's personal
	// gallery record. Used only for cleanup after deletion or merge.
	LibraryID string `json:"library_id,omitempty"`

	// Rating is the Elo-style score. Every photo starts at rating.Initial,
	// including photos added after other votes already exist.
	Rating int `json:"rating"`

	Wins       int `json:"wins"`
	Losses     int `json:"losses"`
	TotalVotes int `json:"total_votes"`
}

// Session is one ranking arena. One session per owner.
type Session struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`

	// Photos are the live contestants, unique by ID. A photo removed from
	// this set is permanently retired from ranking.
	Photos []Photo `json:"photos"`

	// Aliases maps a merged-away photo id to the id it was merged into.
	// Chains are possible (A merged into B, then B into C) and are resolved
	// transitively. An id that appears as a key here is never also a live
	// Photo.ID.
	Aliases map[string]string `json:"photo_aliases"`

	// SecretKey gates read access to results. LinkHistory holds previously
	// rotated keys; they no longer grant access.
	SecretKey     string    `json:"secret_key"`
	LinkExpiresAt time.Time `json:"link_expires_at"`
	LinkHistory   []string  `json:"link_history"`

	// Rev is the optimistic-concurrency version token. Every committed
	// mutation increments it; a writer whose read Rev no longer matches the
	// stored one must abort and retry.
	Rev int64 `json:"rev"`

	// UpdatedAt advances monotonically with Rev, even under clock skew.
	UpdatedAt time.Time `json:"updated_at"`
}

// HistoryEntry is one immutable voting event. It stores the ids exactly as
// cast at vote time, NOT pre-resolved through aliases - this is what makes
// replay possible after the participants are merged or deleted.
type HistoryEntry struct {
	ID        string    `json:"id"`
	WinnerID  string    `json:"winner_id"`
	LoserID   string    `json:"loser_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Photo returns the live photo with the given id, or false.
func (s *Session) Photo(id string) (Photo, bool) {
	for _, p := range s.Photos {
		if p.ID == id {
			return p, true
		}
	}
	return Photo{}, false
}

// HasPhoto reports whether id is a live contestant.
func (s *Session) HasPhoto(id string) bool {
	_, ok := s.Photo(id)
	return ok
}
