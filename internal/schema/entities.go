package schema

const (
	EntityCandidate = "candidate"
	EntityJob       = "job"
	EntityInterview = "interview"
	EntityOffer     = "offer"
	EntityUser      = "user"
)

const (
	sectionPersonal     = "Personal information"
	sectionProfessional = "Professional information"
)

// DefaultRegistry returns the IMS entities in navigation order.
func DefaultRegistry() *Registry {
	reg, err := NewRegistry(Candidate(), Job(), Interview(), Offer(), User())
	if err != nil {
		panic(err)
	}
	return reg
}

func Candidate() *Entity {
	return &Entity{
		Name:       EntityCandidate,
		Title:      "Candidates",
		Path:       "candidates",
		IDField:    "candidateId",
		LabelField: "fullName",
		UpdatePath: "candidates/update/{id}",
		Caps:       CapList | CapGet | CapCreate | CapUpdate | CapDelete,
		Columns: []Column{
			{Field: "fullName", Label: "Name"},
			{Field: "email", Label: "Email"},
			{Field: "phoneNumber", Label: "Phone No"},
			{Field: "currentPosition", Label: "Current Position"},
			{Field: "userName", Label: "Owner HR"},
			{Field: "status", Label: "Status"},
		},
		Fields: []Field{
			{Name: "fullName", Label: "Full name", Kind: KindText, Required: true, Section: sectionPersonal, Placeholder: "Type a name..."},
			{Name: "email", Label: "Email", Kind: KindEmail, Required: true, Section: sectionPersonal, Placeholder: "Type an email..."},
			{Name: "dob", Label: "D.O.B", Kind: KindDate, Section: sectionPersonal},
			{Name: "address", Label: "Address", Kind: KindText, Section: sectionPersonal, Placeholder: "Type an address..."},
			{Name: "phoneNumber", Label: "Phone number", Kind: KindText, Section: sectionPersonal, Placeholder: "Type a number..."},
			{Name: "gender", Label: "Gender", Kind: KindSelect, Required: true, Catalog: CatalogGenders, Default: "male", Section: sectionPersonal},
			{Name: "cvFilePath", Label: "CV attachment", Kind: KindFile, Section: sectionProfessional},
			{Name: "note", Label: "Note", Kind: KindText, Section: sectionProfessional, Placeholder: "N/A"},
			{Name: "currentPosition", Label: "Current position", Kind: KindSelect, Required: true, Catalog: CatalogPositions, Section: sectionProfessional},
			{Name: "status", Label: "Status", Kind: KindSelect, Required: true, Catalog: CatalogCandidateStatuses, Default: "new", Section: sectionProfessional},
			{Name: "skills", Label: "Skills", Kind: KindMultiSelect, Required: true, Catalog: CatalogSkills, Section: sectionProfessional},
			{Name: "yearsOfExperience", Label: "Year of experience", Kind: KindNumber, Default: "0", Section: sectionProfessional},
			{Name: "userId", Label: "Recruiter", Kind: KindReference, Required: true, Ref: EntityUser, Section: sectionProfessional},
			{Name: "highestEducation", Label: "Highest level", Kind: KindSelect, Required: true, Catalog: CatalogEducations, Section: sectionProfessional},
		},
		StatusField:   "status",
		StatusCatalog: CatalogCandidateStatuses,
		SearchFields:  []string{"fullName", "email", "phoneNumber"},
	}
}

func Job() *Entity {
	return &Entity{
		Name:       EntityJob,
		Title:      "Jobs",
		Path:       "jobs",
		IDField:    "jobId",
		LabelField: "title",
		Caps:       CapList | CapGet | CapCreate,
		Columns: []Column{
			{Field: "title", Label: "Job Title"},
			{Field: "requiredSkills", Label: "Required Skills"},
			{Field: "startDate", Label: "Start Date"},
			{Field: "endDate", Label: "End Date"},
			{Field: "level", Label: "Level"},
			{Field: "status", Label: "Status"},
		},
		Fields: []Field{
			{Name: "title", Label: "Job title", Kind: KindText, Required: true, Placeholder: "Type a name..."},
			{Name: "requiredSkills", Label: "Skills", Kind: KindMultiSelect, Required: true, Catalog: CatalogSkills},
			{Name: "startDate", Label: "Start date", Kind: KindDate},
			{Name: "endDate", Label: "End date", Kind: KindDate},
			{Name: "salaryRangeFrom", Label: "Salary from", Kind: KindNumber, Default: "0"},
			{Name: "salaryRangeTo", Label: "Salary to", Kind: KindNumber, Default: "0"},
			{Name: "benefits", Label: "Benefits", Kind: KindMultiSelect, Required: true, Catalog: CatalogBenefits},
			{Name: "workingAddress", Label: "Working address", Kind: KindText, Required: true, Placeholder: "Type an address..."},
			{Name: "level", Label: "Level", Kind: KindMultiSelect, Required: true, Catalog: CatalogJobLevels},
			{Name: "description", Label: "Description", Kind: KindTextarea, Required: true},
		},
		StatusField:  "status",
		SearchFields: []string{"title", "workingAddress"},
	}
}

func Interview() *Entity {
	return &Entity{
		Name:       EntityInterview,
		Title:      "Interviews",
		Path:       "interviews",
		IDField:    "interviewId",
		LabelField: "title",
		Caps:       CapList | CapGet | CapCreate,
		Columns: []Column{
			{Field: "title", Label: "Title"},
			{Field: "candidateName", Label: "Candidate Name"},
			{Field: "interviewer", Label: "Interviewer"},
			{Field: "scheduleStart", Label: "Schedule"},
			{Field: "result", Label: "Result"},
			{Field: "status", Label: "Status"},
			{Field: "jobTitle", Label: "Job"},
		},
		Fields: []Field{
			{Name: "title", Label: "Schedule title", Kind: KindText, Required: true, Placeholder: "Type a name..."},
			{Name: "jobId", Label: "Job", Kind: KindReference, Required: true, Ref: EntityJob},
			{Name: "candidateId", Label: "Candidate", Kind: KindReference, Required: true, Ref: EntityCandidate},
			{Name: "userId", Label: "Recruiter", Kind: KindReference, Required: true, Ref: EntityUser},
			{Name: "scheduleStart", Label: "Schedule start", Kind: KindDateTime},
			{Name: "scheduleEnd", Label: "Schedule end", Kind: KindDateTime},
			{Name: "location", Label: "Location", Kind: KindText},
			{Name: "meetingLink", Label: "Meeting link", Kind: KindText, Required: true},
			{Name: "notes", Label: "Notes", Kind: KindTextarea, Required: true},
		},
		StatusField:  "status",
		SearchFields: []string{"title", "candidateName", "interviewer", "jobTitle"},
	}
}

func Offer() *Entity {
	return &Entity{
		Name:       EntityOffer,
		Title:      "Offers",
		Path:       "offers",
		IDField:    "offerId",
		LabelField: "offerId",
		Caps:       CapGet | CapCreate,
		Fields: []Field{
			{Name: "candidateId", Label: "Candidate", Kind: KindReference, Required: true, Ref: EntityCandidate},
			{Name: "contractType", Label: "Contract type", Kind: KindSelect, Required: true, Catalog: CatalogContractTypes},
			{Name: "position", Label: "Position", Kind: KindSelect, Required: true, Catalog: CatalogPositions},
			{Name: "level", Label: "Level", Kind: KindSelect, Required: true, Catalog: CatalogOfferLevels},
			{Name: "userId", Label: "Approver", Kind: KindReference, Required: true, Ref: EntityUser},
			{Name: "department", Label: "Department", Kind: KindSelect, Required: true, Catalog: CatalogDepartments},
			{Name: "interviewId", Label: "Interview info", Kind: KindReference, Required: true, Ref: EntityInterview},
			{Name: "contractPeriodStart", Label: "Contract from", Kind: KindDate, Required: true},
			{Name: "contractPeriodEnd", Label: "Contract to", Kind: KindDate, Required: true},
			{Name: "dueDate", Label: "Due date", Kind: KindDate, Required: true},
			{Name: "baseSalary", Label: "Base salary", Kind: KindNumber, Default: "0"},
			{Name: "status", Label: "Status", Kind: KindSelect, Catalog: CatalogOfferStatuses, Default: "Pending"},
			{Name: "notes", Label: "Notes", Kind: KindTextarea, Required: true},
		},
		StatusField:   "status",
		StatusCatalog: CatalogOfferStatuses,
	}
}

func User() *Entity {
	return &Entity{
		Name:       EntityUser,
		Title:      "Users",
		Path:       "users",
		IDField:    "userId",
		LabelField: "userName",
		Caps:       CapList | CapGet | CapCreate,
		Columns: []Column{
			{Field: "userName", Label: "Username"},
			{Field: "email", Label: "Email"},
			{Field: "phone", Label: "Phone No"},
			{Field: "role", Label: "Role"},
			{Field: "status", Label: "Status"},
		},
		Fields: []Field{
			{Name: "userName", Label: "Username", Kind: KindText, Required: true},
			{Name: "fullName", Label: "Full name", Kind: KindText, Required: true, Placeholder: "Type a name..."},
			{Name: "email", Label: "Email", Kind: KindEmail, Required: true, Placeholder: "Type an email..."},
			{Name: "dob", Label: "D.O.B", Kind: KindDate},
			{Name: "phone", Label: "Phone number", Kind: KindText, Placeholder: "Type a number..."},
			{Name: "address", Label: "Address", Kind: KindText, Placeholder: "Type an address..."},
			{Name: "gender", Label: "Gender", Kind: KindSelect, Required: true, Catalog: CatalogGenders},
			{Name: "role", Label: "Roles", Kind: KindSelect, Required: true, Catalog: CatalogUserRoles},
			{Name: "department", Label: "Department", Kind: KindSelect, Required: true, Catalog: CatalogUserDepartments},
			{Name: "status", Label: "Status", Kind: KindBool, Default: "true", TrueLabel: "Active", FalseLabel: "Deactivated"},
			{Name: "note", Label: "Note", Kind: KindText},
		},
		StatusField:  "status",
		SearchFields: []string{"userName", "email", "phone"},
	}
}
