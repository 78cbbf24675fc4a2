package autofill

import (
	"net/url"
	"strings"
)

const PlatformOther = "Other"

var platforms = []struct {
	hosts []string
	name  string
}{
	{[]string{"linkedin"}, "LinkedIn"},
	{[]string{"indeed"}, "Indeed"},
	{[]string{"greenhouse"}, "Greenhouse"},
	{[]string{"lever"}, "Lever"},
	{[]string{"workday"}, "Workday"},
	{[]string{"glassdoor"}, "Glassdoor"},
	{[]string{"ziprecruiter"}, "ZipRecruiter"},
	{[]string{"dice"}, "Dice"},
	{[]string{"monster"}, "Monster"},
	{[]string{"ycombinator", "workatastartup"}, "Y Combinator"},
	{[]string{"wellfound", "angel.co"}, "Wellfound"},
	{[]string{"startups.gallery"}, "Startups.Gallery"},
	{[]string{"ashbyhq"}, "Ashby HQ"},
	{[]string{"simplyhired"}, "SimplyHired"},
	{[]string{"careerbuilder"}, "CareerBuilder"},
}

// DetectPlatform names the job board serving rawURL from its hostname.
// Entries are tried in order; unknown hosts are "Other".
func DetectPlatform(rawURL string) string {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Hostname()
	}
	host = strings.ToLower(host)
	for _, p := range platforms {
		for _, h := range p.hosts {
			if strings.Contains(host, h) {
				return p.name
			}
		}
	}
	return PlatformOther
}
