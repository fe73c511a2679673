package models

// Sort keys accepted by the alumni directory
const (
	SortFirstName         = "firstName"
	SortLastName          = "lastName"
	SortGraduationYear    = "graduationYear"
	SortYearsOfExperience = "yearsOfExperience"
	SortCurrentCompany    = "currentCompany"
	SortCreatedAt         = "createdAt"
)

// AlumniSortKeys lists every accepted sortBy value
var AlumniSortKeys = []string{
	SortFirstName,
	SortLastName,
	SortGraduationYear,
	SortYearsOfExperience,
	SortCurrentCompany,
	SortCreatedAt,
}

// IsAlumniSortKey reports whether key is an accepted sortBy value
func IsAlumniSortKey(key string) bool {
	for _, k := range AlumniSortKeys {
		if k == key {
			return true
		}
	}
	return false
}

// AlumniFilter holds the AND-ed directory search criteria. Empty fields do not filter.
type AlumniFilter struct {
	Company  string
	Position string
	// Location matches location, city or country
	Location string
	Industry string
	// Skills matches when any listed skill is a substring of any profile skill
	Skills               []string
	MinYearsOfExperience *int
	GraduationYear       *int
	SortBy               string
	Descending           bool
}
