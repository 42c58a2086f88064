package inventory

// Vaccine is a named dose counter. Doses never go negative.
type Vaccine struct {
	Name  string
	Doses int
}
