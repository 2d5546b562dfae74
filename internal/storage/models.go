package storage

import "time"

// Project is a single top-level directory beneath the workspace root.
type Project struct {
	ID        int64
	Name      string
	Path      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Document is a single indexed markdown file.
type Document struct {
	ID          int64
	ProjectID   int64
	Path        string // project/folder/filename, unique
	Folder      string
	Filename    string
	Type        string
	Status      string
	Owner       string
	Feature     string
	Tags        []string
	ContentHash string
	Mtime       float64
	Updated     string
	IndexedAt   time.Time
}

// Chunk is a single ordered slice of a document's body.
type Chunk struct {
	ID                int64
	DocumentID        int64
	Heading           string
	HeadingLevel      int
	Content           string
	ChunkOrder        int
	CharOffset        int
	IsPriorityHeading bool
}

// ProjectSummary is the per-project view returned by ListProjectSummaries.
type ProjectSummary struct {
	Name          string
	LastUpdated   time.Time
	OpenTaskCount int
	LastSessionAt *time.Time
	FolderCounts  map[string]int
}

// ProjectDetail extends Project with per-folder file counts and a
// task-status breakdown.
type ProjectDetail struct {
	Project
	FolderCounts map[string]int
	StatusCounts map[string]int
}

// SearchResult is a single ranked hit returned by the search engine.
type SearchResult struct {
	ChunkID      int64
	DocumentID   int64
	ProjectName  string
	DocumentPath string
	Folder       string
	Heading      string
	Content      string
	Snippet      string
	BM25Score    float64
	TypeBoost    float64
	RecencyBoost float64
	HeadingBoost float64
	StatusBoost  float64
	FinalScore   float64
	IndexedAt    time.Time
}

// WebhookSubscription is a registered delivery target for workspace events.
type WebhookSubscription struct {
	ID          string
	ProjectID   *int64
	URL         string
	Secret      string
	EventTypes  []string
	Active      bool
	Description string
	CreatedAt   time.Time
}

// WebhookLog records a single delivery attempt, successful or not.
type WebhookLog struct {
	ID             int64
	SubscriptionID string
	EventID        string
	EventType      string
	Payload        string
	StatusCode     *int
	Success        bool
	ErrorMessage   string
	DeliveredAt    time.Time
}
