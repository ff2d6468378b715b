package schema

// Option is a code/label pair. The code is what the API stores.
type Option struct {
	Code    string `json:"code"`
	Label   string `json:"label"`
	Unknown bool   `json:"-"`
}

// Catalog is an ordered list of options for select and multi-select fields.
type Catalog []Option

// Catalogs maps catalog names to their options.
type Catalogs map[string]Catalog

// Label returns the label for code, or the code itself when the catalog
// does not know it.
func (c Catalog) Label(code string) string {
	for _, opt := range c {
		if opt.Code == code {
			return opt.Label
		}
	}
	return code
}

// Has reports whether code is part of the catalog.
func (c Catalog) Has(code string) bool {
	for _, opt := range c {
		if opt.Code == code {
			return true
		}
	}
	return false
}

// Selected filters the catalog against stored codes, in catalog order.
// Codes the catalog does not know are appended as Unknown options so they
// survive a round trip through the form.
func (c Catalog) Selected(codes []string) []Option {
	want := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		want[code] = struct{}{}
	}

	out := make([]Option, 0, len(codes))
	for _, opt := range c {
		if _, ok := want[opt.Code]; ok {
			out = append(out, opt)
			delete(want, opt.Code)
		}
	}
	for _, code := range codes {
		if _, ok := want[code]; !ok {
			continue
		}
		out = append(out, Option{Code: code, Label: code, Unknown: true})
		delete(want, code)
	}
	return out
}

// Unknown returns the codes the catalog does not contain.
func (c Catalog) Unknown(codes []string) []string {
	var out []string
	for _, code := range codes {
		if !c.Has(code) {
			out = append(out, code)
		}
	}
	return out
}

// Get returns the named catalog; unknown names yield an empty catalog.
func (c Catalogs) Get(name string) Catalog {
	if c == nil {
		return nil
	}
	return c[name]
}

// Merge returns a copy of c with every catalog in overrides replacing the
// catalog of the same name.
func (c Catalogs) Merge(overrides Catalogs) Catalogs {
	out := make(Catalogs, len(c)+len(overrides))
	for name, catalog := range c {
		out[name] = catalog
	}
	for name, catalog := range overrides {
		if len(catalog) == 0 {
			continue
		}
		out[name] = catalog
	}
	return out
}

const (
	CatalogSkills            = "skills"
	CatalogBenefits          = "benefits"
	CatalogJobLevels         = "job_levels"
	CatalogGenders           = "genders"
	CatalogPositions         = "positions"
	CatalogCandidateStatuses = "candidate_statuses"
	CatalogEducations        = "educations"
	CatalogContractTypes     = "contract_types"
	CatalogOfferLevels       = "offer_levels"
	CatalogOfferStatuses     = "offer_statuses"
	CatalogDepartments       = "departments"
	CatalogUserRoles         = "user_roles"
	CatalogUserDepartments   = "user_departments"
)

// DefaultCatalogs returns the built-in option catalogs.
func DefaultCatalogs() Catalogs {
	return Catalogs{
		CatalogSkills: {
			{Code: "java", Label: "Java"},
			{Code: "flutter", Label: "Flutter"},
			{Code: "nodejs", Label: "NodeJS"},
			{Code: "system design", Label: "System design"},
			{Code: "react", Label: "React"},
			{Code: "angular", Label: "Angular"},
			{Code: "python", Label: "Python"},
			{Code: "c++", Label: "C++"},
			{Code: "c#", Label: "C#"},
			{Code: "php", Label: "PHP"},
			{Code: "javaScript", Label: "JavaScript"},
			{Code: "typeScript", Label: "TypeScript"},
		},
		CatalogBenefits: {
			{Code: "health", Label: "Health"},
			{Code: "dental", Label: "Dental"},
			{Code: "vision", Label: "Vision"},
			{Code: "insurance", Label: "Insurance"},
			{Code: "retirement", Label: "Retirement"},
			{Code: "pension", Label: "Pension"},
			{Code: "other", Label: "Other"},
		},
		CatalogJobLevels: {
			{Code: "entry", Label: "Entry"},
			{Code: "mid", Label: "Mid"},
			{Code: "senior", Label: "Senior"},
		},
		CatalogGenders: {
			{Code: "male", Label: "Male"},
			{Code: "female", Label: "Female"},
			{Code: "other", Label: "Other"},
		},
		CatalogPositions: {
			{Code: "backend", Label: "Backend Developer"},
			{Code: "frontend", Label: "Frontend Developer"},
			{Code: "fullstack", Label: "Fullstack Developer"},
			{Code: "mobile", Label: "Mobile Developer"},
		},
		CatalogCandidateStatuses: {
			{Code: "new", Label: "New"},
			{Code: "reviewing", Label: "Reviewing"},
			{Code: "shortlisted", Label: "Shortlisted"},
			{Code: "rejected", Label: "Rejected"},
		},
		CatalogEducations: {
			{Code: "high-school", Label: "High School"},
			{Code: "bachelor", Label: "Bachelor's Degree"},
			{Code: "master", Label: "Master's Degree"},
			{Code: "phd", Label: "Ph.D."},
		},
		CatalogContractTypes: {
			{Code: "permanent", Label: "Permanent"},
			{Code: "fixed-term", Label: "Fixed-term"},
		},
		CatalogOfferLevels: {
			{Code: "intern", Label: "Intern"},
			{Code: "fresher", Label: "Fresher"},
			{Code: "junior", Label: "Junior"},
			{Code: "senior", Label: "Senior"},
		},
		CatalogOfferStatuses: {
			{Code: "Pending", Label: "Pending"},
			{Code: "Approved", Label: "Approved"},
			{Code: "Rejected", Label: "Rejected"},
			{Code: "Cancelled", Label: "Cancelled"},
		},
		CatalogDepartments: {
			{Code: "it", Label: "IT"},
			{Code: "finance", Label: "Finance"},
			{Code: "marketing", Label: "Marketing"},
			{Code: "sales", Label: "Sales"},
		},
		CatalogUserRoles: {
			{Code: "backend", Label: "Backend Developer"},
			{Code: "frontend", Label: "Frontend Developer"},
			{Code: "fullstack", Label: "Fullstack Developer"},
			{Code: "manager", Label: "Manager"},
		},
		CatalogUserDepartments: {
			{Code: "engineering", Label: "Engineering"},
			{Code: "product", Label: "Product"},
			{Code: "design", Label: "Design"},
			{Code: "hr", Label: "HR"},
		},
	}
}
