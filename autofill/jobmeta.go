package autofill

import "jobfill/dom"

const (
	maxJobTitleLength = 100
	maxCompanyLength  = 50
)

var (
	jobTitleSelectors = []string{
		`h1.job-title`,
		`h1[class*="title"]`,
		`.job-details h1`,
		`[data-test="job-title"]`,
		`.jobs-unified-top-card h1`,
		`h1`,
	}
	companySelectors = []string{
		`[class*="company-name"]`,
		`.company-name`,
		`[data-test="company-name"]`,
		`.jobs-unified-top-card__company-name`,
		`[class*="employer"]`,
	}
)

// ExtractJobTitle reads the posting's title from the usual heading spots.
func ExtractJobTitle(doc *dom.Document) string {
	return firstText(doc, jobTitleSelectors, maxJobTitleLength)
}

// ExtractCompany reads the hiring company's name.
func ExtractCompany(doc *dom.Document) string {
	return firstText(doc, companySelectors, maxCompanyLength)
}

// firstText returns the text of the first element matched by the first
// selector that matches anything, cut to limit runes.
func firstText(doc *dom.Document, selectors []string, limit int) string {
	for _, css := range selectors {
		els := doc.Select(css)
		if len(els) == 0 {
			continue
		}
		if t := els[0].Text(); t != "" {
			return truncate(t, limit)
		}
	}
	return ""
}
