package symptom

// Symptom is a single observable condition a carer can tick during a visit.
type Symptom struct {
	ID     string `yaml:"id" json:"id"`
	Label  string `yaml:"label" json:"label"`
	Points int    `yaml:"points" json:"points"`
}

// Category groups symptoms for presentation. Order has no effect on scoring.
type Category struct {
	ID       string    `yaml:"id" json:"id"`
	Name     string    `yaml:"name" json:"name"`
	Symptoms []Symptom `yaml:"symptoms" json:"symptoms"`
}

// Lookuper resolves a symptom by id. A miss is reported through the bool,
// never as an error.
type Lookuper interface {
	Lookup(id string) (Symptom, bool)
}
