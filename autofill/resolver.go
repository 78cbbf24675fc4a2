package autofill

import (
	"strings"

	"jobfill/models"
)

const (
	defaultCountry           = "United States"
	defaultYearsOfExperience = "4"
	defaultNoticePeriod      = "2 weeks"
	defaultStartDate         = "Immediately"
)

// Resolution is the value chosen for a field.
type Resolution struct {
	Category Category
	// Value is the profile value, or the canonical answer token.
	Value string
	// Alternates are other spellings of Value a choice list may use,
	// e.g. the state abbreviation next to the full name.
	Alternates []string
	// Answer is set for policy-answered categories.
	Answer Answer
}

// Text is what gets typed into a free-text control.
func (r Resolution) Text() string {
	if r.Answer != "" {
		return r.Answer.Display()
	}
	return r.Value
}

// Candidates lists Value followed by its alternates, for option matching.
func (r Resolution) Candidates() []string {
	if r.Answer != "" {
		return []string{r.Answer.Display(), string(r.Answer)}
	}
	return append([]string{r.Value}, r.Alternates...)
}

// Resolver maps fields to values using a catalog and an answer policy.
type Resolver struct {
	catalog *Catalog
	policy  AnswerPolicy
}

// NewResolver returns a resolver; nil arguments select the defaults.
func NewResolver(catalog *Catalog, policy AnswerPolicy) *Resolver {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if policy == nil {
		policy = DefaultAnswerPolicy
	}
	return &Resolver{catalog: catalog, policy: policy}
}

// Classify returns the category of a field. A recognised autocomplete
// attribute is authoritative; otherwise the catalog decides.
func (r *Resolver) Classify(f *Field) (Category, bool) {
	if cat, ok := CategoryForAutocomplete(f.Autocomplete); ok {
		return cat, true
	}
	return r.catalog.CategoryFor(f.Text)
}

// Resolve returns the value for f drawn from p. It reports false when the
// field is unrecognised, the profile has nothing for it, or p is nil.
func (r *Resolver) Resolve(f *Field, p *models.Profile) (Resolution, bool) {
	if f == nil || p == nil {
		return Resolution{}, false
	}
	cat, ok := r.Classify(f)
	if !ok {
		return Resolution{}, false
	}
	return r.resolveCategory(cat, f, p)
}

// ResolveChoice classifies question text against the compliance and
// demographic rules only, and returns the policy answer.
func (r *Resolver) ResolveChoice(text string) (Resolution, bool) {
	cat, ok := r.catalog.ChoiceCategoryFor(combine(text))
	if !ok {
		return Resolution{}, false
	}
	a, ok := r.policy(cat)
	if !ok {
		return Resolution{}, false
	}
	return Resolution{Category: cat, Value: string(a), Answer: a}, true
}

func (r *Resolver) resolveCategory(cat Category, f *Field, p *models.Profile) (Resolution, bool) {
	if a, ok := r.policy(cat); ok {
		return Resolution{Category: cat, Value: string(a), Answer: a}, true
	}
	value, alternates := extract(cat, f, p)
	value = strings.TrimSpace(value)
	if value == "" {
		return Resolution{}, false
	}
	return Resolution{Category: cat, Value: value, Alternates: alternates}, true
}

// extract pulls the value for a profile-backed category. Unknown categories
// and empty profile fields yield "".
func extract(cat Category, f *Field, p *models.Profile) (string, []string) {
	info := p.PersonalInfo
	names := strings.Fields(info.FullName)
	job, _ := p.CurrentJob()
	edu, _ := p.LatestEducation()

	switch cat {
	case CatFullName:
		return strings.Join(names, " "), nil
	case CatFirstName:
		if len(names) > 0 {
			return names[0], nil
		}
	case CatLastName:
		if len(names) > 1 {
			return strings.Join(names[1:], " "), nil
		}
	case CatMiddleName:
		if len(names) > 2 {
			return strings.Join(names[1:len(names)-1], " "), nil
		}
	case CatPreferredName:
		if info.PreferredName != "" {
			return info.PreferredName, nil
		}
		if len(names) > 0 {
			return names[0], nil
		}

	case CatEmail:
		return info.Email, nil
	case CatPhone:
		return info.Phone, nil
	case CatLinkedIn:
		return info.Linkedin, nil
	case CatGithub:
		return info.Github, nil
	case CatWebsite:
		return firstNonEmpty(info.Website, info.Portfolio), nil

	case CatStreetAddress:
		return info.StreetAddress, nil
	case CatAddressLine2:
		return info.AddressLine2, nil
	case CatCity:
		return info.City, nil
	case CatZipCode:
		return info.ZipCode, nil
	case CatState:
		return stateFor(f, info)
	case CatCountry:
		country := firstNonEmpty(info.Country, defaultCountry)
		if info.CountryCode != "" && f.IsSelect() {
			return country, []string{info.CountryCode}
		}
		return country, nil
	case CatLocation:
		if info.Location != "" {
			return info.Location, nil
		}
		return joinNonEmpty(", ", info.City, firstNonEmpty(info.State, info.StateFull)), nil

	case CatCompany:
		return job.Company, nil
	case CatTitle:
		return job.Title, nil
	case CatYearsExperience:
		return firstNonEmpty(p.Preferences.YearsOfExperience, defaultYearsOfExperience), nil
	case CatSalary:
		return p.Preferences.SalaryExpectation, nil
	case CatNoticePeriod:
		return firstNonEmpty(p.Preferences.NoticePeriod, defaultNoticePeriod), nil
	case CatStartDate:
		return firstNonEmpty(p.Preferences.StartDate, defaultStartDate), nil

	case CatInstitution:
		return edu.Institution, nil
	case CatDegree:
		return edu.Degree, nil
	case CatMajor:
		return edu.Field, nil
	case CatGPA:
		return edu.GPA, nil
	}
	return "", nil
}

// stateFor picks the state spelling a control expects. Inputs limited to
// three characters get the abbreviation; selects and long-form inputs get
// the full name, and selects also accept the abbreviation.
func stateFor(f *Field, info models.PersonalInfo) (string, []string) {
	if f.MaxLength > 0 && f.MaxLength <= 3 && !f.IsSelect() {
		return firstNonEmpty(info.State, info.StateFull), nil
	}
	full := firstNonEmpty(info.StateFull, info.State)
	if f.IsSelect() && info.State != "" && info.State != full {
		return full, []string{info.State}
	}
	return full, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func joinNonEmpty(sep string, values ...string) string {
	var parts []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, sep)
}
