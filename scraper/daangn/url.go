package daangn

import (
	"net/url"
	"strconv"
	"strings"
)

const searchBaseURL = "https://www.daangn.com/kr/buy-sell/"

// SearchURL builds the marketplace search URL for a keyword and an optional
// price window. A zero bound leaves that side of the window open; with both
// bounds zero the price parameter is omitted entirely.
func SearchURL(keyword string, minPrice, maxPrice int64) string {
	u := searchBaseURL + "?search=" + url.QueryEscape(strings.TrimSpace(keyword))

	if minPrice > 0 || maxPrice > 0 {
		lower, upper := "", ""
		if minPrice > 0 {
			lower = strconv.FormatInt(minPrice, 10)
		}
		if maxPrice > 0 {
			upper = strconv.FormatInt(maxPrice, 10)
		}
		u += "&price=" + lower + "__" + upper
	}

	return u
}
