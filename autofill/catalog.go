package autofill

import (
	"regexp"
	"strings"
)

// Category is the semantic meaning of a form field.
type Category string

const (
	CatWorkAuth        Category = "workAuth"
	CatSponsorship     Category = "sponsorship"
	CatSMSConsent      Category = "smsConsent"
	CatRelocation      Category = "relocation"
	CatRemoteWork      Category = "remoteWork"
	CatBackgroundCheck Category = "backgroundCheck"
	CatDrugTest        Category = "drugTest"
	CatNonCompete      Category = "nonCompete"
	CatOver18          Category = "over18"

	CatGender     Category = "gender"
	CatVeteran    Category = "veteran"
	CatDisability Category = "disability"
	CatRace       Category = "race"
	CatLGBTQ      Category = "lgbtq"

	CatPreferredName Category = "preferredName"
	CatMiddleName    Category = "middleName"
	CatFirstName     Category = "firstName"
	CatLastName      Category = "lastName"
	CatFullName      Category = "fullName"

	CatEmail    Category = "email"
	CatPhone    Category = "phone"
	CatLinkedIn Category = "linkedin"
	CatGithub   Category = "github"
	CatWebsite  Category = "website"

	CatAddressLine2  Category = "addressLine2"
	CatStreetAddress Category = "streetAddress"
	CatZipCode       Category = "zipCode"
	CatCity          Category = "city"
	CatState         Category = "state"
	CatCountry       Category = "country"
	CatLocation      Category = "location"

	CatYearsExperience Category = "yearsExperience"
	CatSalary          Category = "salary"
	CatNoticePeriod    Category = "noticePeriod"
	CatStartDate       Category = "startDate"
	CatCompany         Category = "company"
	CatTitle           Category = "title"

	CatGPA         Category = "gpa"
	CatMajor       Category = "major"
	CatDegree      Category = "degree"
	CatInstitution Category = "institution"
)

var complianceCategories = map[Category]bool{
	CatWorkAuth: true, CatSponsorship: true, CatSMSConsent: true, CatRelocation: true,
	CatRemoteWork: true, CatBackgroundCheck: true, CatDrugTest: true, CatNonCompete: true, CatOver18: true,
}

var demographicCategories = map[Category]bool{
	CatGender: true, CatVeteran: true, CatDisability: true, CatRace: true, CatLGBTQ: true,
}

// IsCompliance reports whether c is a yes/no eligibility question.
func IsCompliance(c Category) bool { return complianceCategories[c] }

// IsDemographic reports whether c is a voluntary self-identification question.
func IsDemographic(c Category) bool { return demographicCategories[c] }

// Rule pairs a category with the pattern that detects it in combined text.
type Rule struct {
	Category Category
	Pattern  *regexp.Regexp
}

// sep matches the separators identifiers use between words.
const sep = `[\s_\-]*`

func rule(c Category, expr string) Rule {
	return Rule{Category: c, Pattern: regexp.MustCompile(strings.ReplaceAll(expr, "~", sep))}
}

// defaultRules is the canonical test order: compliance, demographic, name
// parts before full name, contact, address before location, employment,
// education, then a bare "name" as the last resort. Within a group the more
// specific pattern comes first. A category may appear more than once.
var defaultRules = []Rule{
	rule(CatSponsorship, `sponsor|\bvisa\b|h~1~b`),
	rule(CatWorkAuth, `work~auth|authori[sz]ed~to~work|legally~(authori[sz]ed|eligible|able|permitted)|eligib(le|ility)~(to|for)~(work|employment)|right~to~work|employment~eligibility`),
	rule(CatSMSConsent, `text~messag|\bsms\b|receive~texts?|texting|text~alerts?`),
	rule(CatRelocation, `relocat`),
	rule(CatRemoteWork, `\bremote\b|work~from~home|\bwfh\b|hybrid`),
	rule(CatBackgroundCheck, `background~(check|screen|investigation)`),
	rule(CatDrugTest, `drug~(test|screen)`),
	rule(CatNonCompete, `non~compete|non~solicit|restrictive~covenant`),
	rule(CatOver18, `(18|eighteen)~(years|yrs)|over~(the~age~of~)?18|at~least~18|legal~(working~)?age`),

	rule(CatLGBTQ, `lgbt|sexual~orientation|transgender|gender~identity`),
	rule(CatGender, `gender|\bsex\b`),
	rule(CatVeteran, `veteran|military|armed~forces|protected~vet`),
	rule(CatDisability, `disabilit|disabled|handicap`),
	rule(CatRace, `\brace\b|ethnic|hispanic|latino`),

	rule(CatPreferredName, `preferred~(first~)?name|nick~name|goes~by`),
	rule(CatMiddleName, `middle~(name|initial)`),
	rule(CatFirstName, `first~name|\bfname\b|given~name|fore~name`),
	rule(CatLastName, `last~name|\blname\b|sur~name|family~name`),
	rule(CatFullName, `full~name|legal~name|applicant~name|candidate~name|your~name`),

	rule(CatEmail, `e~mail`),
	rule(CatPhone, `phone|\btel\b|telephone|mobile|\bcell\b|contact~number`),
	rule(CatLinkedIn, `linked~in`),
	rule(CatGithub, `git~hub`),
	rule(CatWebsite, `website|portfolio|personal~(site|url|page)|\burl\b|\bblog\b`),

	rule(CatAddressLine2, `address~line~2|address~2|\bapt\b|apartment|\bsuite\b|\bunit\b`),
	rule(CatStreetAddress, `street|address`),
	rule(CatZipCode, `\bzip|postal|post~code`),
	rule(CatCity, `\bcity\b|\btown\b|municipality`),
	rule(CatState, `\bstate\b|province|\bregion\b`),
	rule(CatCountry, `country`),
	rule(CatLocation, `location|where~(are|do)~you~(located|live|based)|based~in|current~residence`),

	rule(CatYearsExperience, `years~(of~)?(professional~|relevant~|work~|total~)?experience|experience~\(?years|\byoe\b|how~many~years`),
	rule(CatSalary, `salary|compensation|\bpay\b|desired~pay|expected~pay`),
	rule(CatNoticePeriod, `notice~period|\bnotice\b`),
	rule(CatStartDate, `start~date|available~to~start|availability|when~can~you~start|earliest~start`),
	rule(CatCompany, `(current|present|most~recent)~(company|employer)|company~name|employer~name`),
	rule(CatTitle, `job~title|(current|present|most~recent)~(job~)?(title|role|position)`),

	rule(CatGPA, `\bgpa\b|grade~point|\bcgpa\b`),
	rule(CatMajor, `\bmajor\b|field~of~study|discipline|concentration|area~of~study`),
	rule(CatDegree, `degree|qualification`),
	rule(CatInstitution, `school|university|college|institution|alma~mater`),

	rule(CatFullName, `(^|\s)name(\s|$|\*|:)`),
}

// autocompleteCategories maps HTML autocomplete tokens to categories.
var autocompleteCategories = map[string]Category{
	"name":               CatFullName,
	"given-name":         CatFirstName,
	"family-name":        CatLastName,
	"additional-name":    CatMiddleName,
	"nickname":           CatPreferredName,
	"email":              CatEmail,
	"tel":                CatPhone,
	"tel-national":       CatPhone,
	"street-address":     CatStreetAddress,
	"address-line1":      CatStreetAddress,
	"address-line2":      CatAddressLine2,
	"address-level1":     CatState,
	"address-level2":     CatCity,
	"postal-code":        CatZipCode,
	"country":            CatCountry,
	"country-name":       CatCountry,
	"organization":       CatCompany,
	"organization-title": CatTitle,
	"url":                CatWebsite,
}

// Catalog is an ordered rule table. It is immutable once built.
type Catalog struct {
	rules []Rule
}

// NewCatalog builds a catalog that tests rules in the given order.
func NewCatalog(rules []Rule) *Catalog {
	c := &Catalog{rules: make([]Rule, len(rules))}
	copy(c.rules, rules)
	return c
}

var defaultCatalog = NewCatalog(defaultRules)

func DefaultCatalog() *Catalog { return defaultCatalog }

// Rules returns a copy of the rule table in test order.
func (c *Catalog) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// CategoryFor returns the category of the first rule matching text.
func (c *Catalog) CategoryFor(text string) (Category, bool) {
	for _, r := range c.rules {
		if r.Pattern.MatchString(text) {
			return r.Category, true
		}
	}
	return "", false
}

// ChoiceCategoryFor considers only compliance and demographic rules, in
// that order. Radio and checkbox groups are classified with it.
func (c *Catalog) ChoiceCategoryFor(text string) (Category, bool) {
	for _, group := range []func(Category) bool{IsCompliance, IsDemographic} {
		for _, r := range c.rules {
			if group(r.Category) && r.Pattern.MatchString(text) {
				return r.Category, true
			}
		}
	}
	return "", false
}

// CategoryForAutocomplete maps an autocomplete attribute to a category.
// Section and shipping/billing prefixes are ignored.
func CategoryForAutocomplete(attr string) (Category, bool) {
	tokens := strings.Fields(strings.ToLower(attr))
	if len(tokens) == 0 {
		return "", false
	}
	cat, ok := autocompleteCategories[tokens[len(tokens)-1]]
	return cat, ok
}

// Answer is the canonical response to a yes/no or self-identification
// question.
type Answer string

const (
	AnswerYes     Answer = "yes"
	AnswerNo      Answer = "no"
	AnswerDecline Answer = "decline"
)

// Display is the text typed into free-text controls.
func (a Answer) Display() string {
	switch a {
	case AnswerYes:
		return "Yes"
	case AnswerNo:
		return "No"
	case AnswerDecline:
		return "Prefer not to answer"
	}
	return string(a)
}

// AnswerPolicy decides the fixed answer for a category. Categories it
// declines are resolved from the profile instead.
type AnswerPolicy func(Category) (Answer, bool)

var defaultAnswers = map[Category]Answer{
	CatWorkAuth:        AnswerYes,
	CatSponsorship:     AnswerNo,
	CatSMSConsent:      AnswerYes,
	CatRelocation:      AnswerYes,
	CatRemoteWork:      AnswerYes,
	CatBackgroundCheck: AnswerYes,
	CatDrugTest:        AnswerYes,
	CatNonCompete:      AnswerNo,
	CatOver18:          AnswerYes,
	CatGender:          AnswerDecline,
	CatVeteran:         AnswerDecline,
	CatDisability:      AnswerDecline,
	CatRace:            AnswerDecline,
	CatLGBTQ:           AnswerDecline,
}

// DefaultAnswerPolicy asserts a fixed stance on compliance questions and
// declines every demographic question.
func DefaultAnswerPolicy(c Category) (Answer, bool) {
	a, ok := defaultAnswers[c]
	return a, ok
}
