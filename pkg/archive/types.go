package archive

import (
	"time"

	"github.com/coolbeans/seevgen/pkg/extract"
)

// Manifest is the on-disk index of every document the archive holds.
type Manifest struct {
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Entries   []*Entry  `json:"entries"`
}

// Entry records one generated document.
type Entry struct {
	ID          string              `json:"id"`
	File        string              `json:"file"`
	Source      string              `json:"source,omitempty"`
	SourceHash  string              `json:"source_sha256,omitempty"`
	Company     string              `json:"company"`
	ISIN        string              `json:"isin,omitempty"`
	MeetingType extract.MeetingType `json:"meeting_type"`
	MeetingDate string              `json:"meeting_date,omitempty"`
	Resolutions int                 `json:"resolutions"`
	CreatedAt   time.Time           `json:"created_at"`
}

// SaveOptions describes the notice a document was generated from.
type SaveOptions struct {
	// Source is the notice path, recorded as given.
	Source string
	// SourceText is hashed so repeated notices can be recognised.
	SourceText []byte
	Record     *extract.Record
	// Now overrides the timestamp used for the file name and entry.
	Now time.Time
}

// Stats summarises the archive contents.
type Stats struct {
	Total         int            `json:"total"`
	ByMeetingType map[string]int `json:"by_meeting_type"`
	Resolutions   int            `json:"resolutions"`
}
