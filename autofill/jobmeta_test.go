package autofill

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobfill/dom"
)

func TestDetectPlatform(t *testing.T) {
	tests := map[string]string{
		"https://www.linkedin.com/jobs/view/1":          "LinkedIn",
		"https://boards.greenhouse.io/acme/jobs/1":      "Greenhouse",
		"https://jobs.lever.co/acme/1":                  "Lever",
		"https://acme.wd5.myworkdayjobs.com/en-US/jobs": "Workday",
		"https://www.workatastartup.com/jobs/1":         "Y Combinator",
		"https://angel.co/company/acme":                 "Wellfound",
		"https://startups.gallery/acme":                 "Startups.Gallery",
		"https://jobs.ashbyhq.com/acme":                 "Ashby HQ",
		"https://example.com/careers":                   "Other",
		"jobs.dice.com":                                 "Dice",
	}
	for url, want := range tests {
		assert.Equal(t, want, DetectPlatform(url), url)
	}
}

func TestDetectPlatform_HostOnly(t *testing.T) {
	// the path mentions a board but the host does not
	assert.Equal(t, "Other", DetectPlatform("https://example.com/from/linkedin"))
}

func TestExtractJobMeta(t *testing.T) {
	doc, err := dom.ParseString(`<html><body>
<h1>Careers</h1>
<div class="job-details"><h1 class="posting-title">Senior Backend Engineer</h1></div>
<span class="employer-label">Acme Corp</span>
</body></html>`, "https://x.test")
	require.NoError(t, err)

	assert.Equal(t, "Senior Backend Engineer", ExtractJobTitle(doc))
	assert.Equal(t, "Acme Corp", ExtractCompany(doc))
}

func TestExtractJobMeta_TruncatesAndDefaults(t *testing.T) {
	long := strings.Repeat("x", 80)
	doc, err := dom.ParseString(`<html><body><h1>`+long+long+`</h1><div class="company-name">`+long+`</div></body></html>`, "https://x.test")
	require.NoError(t, err)

	assert.Len(t, ExtractJobTitle(doc), maxJobTitleLength)
	assert.Len(t, ExtractCompany(doc), maxCompanyLength)

	empty, err := dom.ParseString(`<html><body><p>nothing</p></body></html>`, "https://x.test")
	require.NoError(t, err)
	assert.Equal(t, "", ExtractJobTitle(empty))
	assert.Equal(t, "", ExtractCompany(empty))
}
