package fetch

import (
	"net/url"
	"strings"
)

// Platform is a job board whose posting pages have a known layout.
type Platform string

const (
	PlatformGreenhouse      Platform = "greenhouse"
	PlatformLever           Platform = "lever"
	PlatformWorkday         Platform = "workday"
	PlatformAshby           Platform = "ashby"
	PlatformSmartRecruiters Platform = "smartrecruiters"
	PlatformUnknown         Platform = "unknown"
)

// board describes where a platform puts the posting text and what to strip.
type board struct {
	platform Platform
	hosts    []string
	content  []string
	noise    []string
}

// boards is checked in order; a host matches itself and its subdomains.
var boards = []board{
	{
		platform: PlatformGreenhouse,
		hosts:    []string{"greenhouse.io"},
		content:  []string{".job__description.body", ".job__description", "#content"},
		noise:    []string{".voluntary-self-id", "#usa_self_id_section"},
	},
	{
		platform: PlatformLever,
		hosts:    []string{"lever.co"},
		content:  []string{".posting-page", ".posting-description", ".content"},
		noise:    []string{".posting-apply", ".apply-section"},
	},
	{
		platform: PlatformWorkday,
		hosts:    []string{"myworkdayjobs.com", "workday.com"},
		content:  []string{"[data-automation-id='jobDescription']", ".job-description"},
		noise:    []string{"[data-automation-id='applyButton']"},
	},
	{
		platform: PlatformAshby,
		hosts:    []string{"ashbyhq.com"},
		content:  []string{"[class*='_descriptionText']", "[class*='_description']"},
		noise:    []string{"[class*='_applicationForm']"},
	},
	{
		platform: PlatformSmartRecruiters,
		hosts:    []string{"smartrecruiters.com"},
		content:  []string{".job-sections", "[itemprop='description']"},
		noise:    []string{".job-ad-footer", "oc-apply-button"},
	},
}

// commonNoise is application and legal boilerplate found on every board. EEO
// statements mention years and skills that must not leak into the job description.
var commonNoise = []string{
	"form",
	".application-form",
	"#application-form",
	".eeo-statement",
	".voluntary-disclosure",
	".social-share",
	".cookie-consent",
}

func lookupBoard(platform Platform) (board, bool) {
	for _, b := range boards {
		if b.platform == platform {
			return b, true
		}
	}
	return board{}, false
}

// DetectPlatform identifies the job board from a posting URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Hostname())
	for _, b := range boards {
		for _, h := range b.hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return b.platform
			}
		}
	}
	return PlatformUnknown
}

// PlatformContentSelectors returns the posting selectors for a platform, falling
// back to the generic job posting selectors.
func PlatformContentSelectors(platform Platform) []string {
	if b, ok := lookupBoard(platform); ok {
		return append(append([]string(nil), b.content...), JobPostingSelectors()...)
	}
	return JobPostingSelectors()
}

// PlatformNoiseSelectors returns the elements to strip before extracting a posting.
func PlatformNoiseSelectors(platform Platform) []string {
	noise := append([]string(nil), commonNoise...)
	if b, ok := lookupBoard(platform); ok {
		noise = append(noise, b.noise...)
	}
	return noise
}
