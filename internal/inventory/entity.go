package inventory

// Entity describes one record collection.
type Entity struct {
	Name     string
	Writable bool
	// Validate runs on create candidates and merged updates of writable entities.
	Validate func(Record) error
}

const (
	EntityAssessments = "assessments"
	EntityRFIs        = "rfis"
)

// Entities lists every collection the service knows about.
var Entities = map[string]Entity{
	EntityAssessments: {Name: EntityAssessments, Writable: true, Validate: ValidateAssessment},
	EntityRFIs:        {Name: EntityRFIs},
}

// Lookup returns the entity named name.
func Lookup(name string) (Entity, bool) {
	e, ok := Entities[name]
	return e, ok
}
